package storage

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"marketchat/backend/internal/models"
)

// GetItemSellerID resolves the seller of a listing. The listing itself is
// owned by the marketplace CRUD service; only the seller lookup lives here.
func (s *Service) GetItemSellerID(itemID string) (string, error) {
	var item models.Item
	err := s.DB.Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrItemNotFound
	}
	if err != nil {
		return "", err
	}
	return item.SellerID, nil
}

// ResolveConversation finds the conversation for an unordered participant
// pair, creating it when absent. The unique index on pair_key makes the
// find-or-create safe under concurrent duplicate creation: the loser of the
// race re-reads the winner's row.
func (s *Service) ResolveConversation(buyerID, sellerID string) (*models.Conversation, error) {
	pairKey := models.PairKey(buyerID, sellerID)

	var conv models.Conversation
	err := s.DB.Where("pair_key = ?", pairKey).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = models.Conversation{
		Participants: pq.StringArray{buyerID, sellerID},
		PairKey:      pairKey,
		LastUpdated:  time.Now(),
	}
	if createErr := s.DB.Create(&conv).Error; createErr != nil {
		if err := s.DB.Where("pair_key = ?", pairKey).First(&conv).Error; err != nil {
			return nil, createErr
		}
	}
	return &conv, nil
}

// GetConversationByID loads a conversation by its opaque id.
func (s *Service) GetConversationByID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListUserConversations returns every conversation the user participates in,
// most recently active first.
func (s *Service) ListUserConversations(userID string) ([]models.Conversation, error) {
	conversations := []models.Conversation{}
	err := s.DB.Where("? = ANY(participants)", userID).
		Order("last_updated desc").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// TouchConversation bumps last_updated; the only mutation a conversation
// row ever sees after creation.
func (s *Service) TouchConversation(id string) error {
	return s.DB.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_updated", time.Now()).Error
}
