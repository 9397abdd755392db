package storage

import (
	"encoding/json"

	"marketchat/backend/internal/models"
)

const messageKeyPrefix = "messages:"

func messageKey(conversationID, timestamp string) string {
	return messageKeyPrefix + conversationID + ":" + timestamp
}

// AppendMessage writes one message under its conversation+timestamp key with
// the retention TTL. Two messages in the same nanosecond share a key and the
// later write wins; accepted as a known limitation.
func (s *Service) AppendMessage(conversationID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Set(s.Ctx, messageKey(conversationID, msg.Timestamp), data, s.MessageTTL).Err()
}

// ListMessages returns all non-expired messages of a conversation sorted
// ascending by parsed timestamp. Keys that expire between enumeration and
// fetch come back nil and are skipped, not treated as errors.
func (s *Service) ListMessages(conversationID string) ([]models.ChatMessage, error) {
	pattern := messageKeyPrefix + conversationID + ":*"

	var keys []string
	iter := s.Redis.Scan(s.Ctx, 0, pattern, 100).Iterator()
	for iter.Next(s.Ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	messages := []models.ChatMessage{}
	if len(keys) == 0 {
		return messages, nil
	}

	values, err := s.Redis.MGet(s.Ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // already gone
		}
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.log.Warn("skipping undecodable message", "conversation_id", conversationID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}

	models.SortMessagesByTimestamp(messages)
	return messages, nil
}

// PublishRoom broadcasts a room event over Redis Pub/Sub. Every hub
// subscribed to the room pattern receives it as a single publish.
func (s *Service) PublishRoom(room string, ev models.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, room, payload).Err()
}

// SubscribeRooms subscribes to every conversation room and returns a channel
// of decoded events. The subscription lives for the life of the process.
func (s *Service) SubscribeRooms() (<-chan models.RoomEvent, error) {
	pubsub := s.Redis.PSubscribe(s.Ctx, models.RoomPrefix+"*")
	if _, err := pubsub.Receive(s.Ctx); err != nil {
		return nil, err
	}

	events := make(chan models.RoomEvent, 64)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("skipping undecodable room event", "channel", msg.Channel, "error", err)
				continue
			}
			if ev.Room == "" {
				ev.Room = msg.Channel
			}
			events <- ev
		}
	}()
	return events, nil
}
