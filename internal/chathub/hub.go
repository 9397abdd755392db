package chathub

import (
	"encoding/json"
	"errors"
	"log/slog"

	"marketchat/backend/internal/models"
)

// Store is the narrow slice of the data layer the hub depends on: message
// persistence and the room broadcast primitive. Both are externally
// synchronized; the hub itself runs a single event loop.
type Store interface {
	AppendMessage(conversationID string, msg models.ChatMessage) error
	TouchConversation(id string) error
	PublishRoom(room string, ev models.RoomEvent) error
	SubscribeRooms() (<-chan models.RoomEvent, error)
}

// Hub owns every live connection and routes room events to them. All state
// is confined to the Run goroutine; registration, teardown and inbound
// messages arrive over channels.
type Hub struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan models.RoomEvent

	rooms map[string]map[string]Client

	store Store
	log   *slog.Logger
}

// NewHub creates a hub over the given store; logger may be nil.
func NewHub(store Store, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan models.RoomEvent),
		rooms:        make(map[string]map[string]Client),
		store:        store,
		log:          logger,
	}
}

// Run subscribes to the room broadcast feed and processes hub events until
// the subscription dies. Call it on its own goroutine.
func (h *Hub) Run() error {
	events, err := h.store.SubscribeRooms()
	if err != nil {
		return err
	}

	for {
		select {
		case client := <-h.RegisterCh:
			h.register(client)
		case client := <-h.UnregisterCh:
			h.unregister(client)
		case ev := <-h.IncomingCh:
			h.handleIncoming(ev)
		case ev, ok := <-events:
			if !ok {
				return errors.New("room subscription closed")
			}
			h.deliver(ev)
		}
	}
}

// RoomSize reports the number of connections subscribed to a room. Intended
// for tests and diagnostics.
func (h *Hub) RoomSize(room string) int {
	return len(h.rooms[room])
}

func (h *Hub) register(client Client) {
	room := client.GetRoomID()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]Client)
	}
	h.rooms[room][client.GetConnID()] = client
	h.log.Info("client joined room", "room", room, "user_id", client.GetUserID())

	h.publishNotice(client, "User joined the chat")
}

func (h *Hub) unregister(client Client) {
	room := client.GetRoomID()
	connID := client.GetConnID()
	if _, ok := h.rooms[room][connID]; !ok {
		return
	}
	delete(h.rooms[room], connID)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	client.Close()
	h.log.Info("client left room", "room", room, "user_id", client.GetUserID())

	h.publishNotice(client, "User left the chat")
}

// publishNotice broadcasts a synthetic server message to the client's room.
// Notices are not persisted.
func (h *Hub) publishNotice(client Client, content string) {
	ev := models.RoomEvent{
		Room:           client.GetRoomID(),
		ConversationID: client.GetConversationID(),
		ConnID:         client.GetConnID(),
		Message:        models.NewChatMessage(models.SystemSenderID, client.GetPeerID(), content),
	}
	if err := h.store.PublishRoom(ev.Room, ev); err != nil {
		h.log.Warn("failed to publish room notice", "room", ev.Room, "error", err)
	}
}

// handleIncoming persists an inbound message best-effort and publishes it to
// the room. Live delivery takes priority over durability: a store failure is
// logged and fan-out proceeds.
func (h *Hub) handleIncoming(ev models.RoomEvent) {
	if err := h.store.AppendMessage(ev.ConversationID, ev.Message); err != nil {
		h.log.Warn("failed to persist message", "conversation_id", ev.ConversationID, "error", err)
	}
	if err := h.store.TouchConversation(ev.ConversationID); err != nil {
		h.log.Warn("failed to touch conversation", "conversation_id", ev.ConversationID, "error", err)
	}

	if err := h.store.PublishRoom(ev.Room, ev); err != nil {
		h.log.Error("failed to publish message", "room", ev.Room, "error", err)
		h.sendErrorFrame(ev.Room, ev.ConnID, "An error occurred while processing your message.")
	}
}

// deliver fans a published event out to every connection in the room except
// the one that produced it. The write is non-blocking; a connection that
// cannot keep up is dropped.
func (h *Hub) deliver(ev models.RoomEvent) {
	payload, err := json.Marshal(ev.Message)
	if err != nil {
		h.log.Error("failed to encode message", "room", ev.Room, "error", err)
		return
	}

	var slow []Client
	for connID, client := range h.rooms[ev.Room] {
		if connID == ev.ConnID {
			continue
		}
		select {
		case client.GetSendChannel() <- payload:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.log.Warn("dropping slow client", "room", ev.Room, "user_id", client.GetUserID())
		h.unregister(client)
	}
}

// sendErrorFrame reports a processing failure to a single connection without
// fanning anything out.
func (h *Hub) sendErrorFrame(room, connID, message string) {
	client, ok := h.rooms[room][connID]
	if !ok {
		return
	}
	payload, err := json.Marshal(models.ErrorFrame{Error: message})
	if err != nil {
		return
	}
	select {
	case client.GetSendChannel() <- payload:
	default:
	}
}
