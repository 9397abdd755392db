package models

// Item is the minimal slice of a marketplace listing the chat core needs:
// resolving the seller a prospective buyer wants to message. Listing CRUD
// lives in a separate service and owns the rest of the row.
type Item struct {
	ID       string `gorm:"primaryKey" json:"id"`
	SellerID string `gorm:"index;not null" json:"sellerId"`
}
