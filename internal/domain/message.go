package domain

import (
	"errors"
	"time"
)

const (
	MinMessageLen = 1
	MaxMessageLen = 150
)

var ErrMessageLength = errors.New("message must be 1-150 characters")

type MessageID string

// Message is scoped by RoomID but kept out of the Room aggregate so the
// room document does not grow without bound.
type Message struct {
	ID        MessageID `bson:"_id" json:"id"`
	RoomID    RoomID    `bson:"roomId" json:"roomId"`
	OwnerID   UserID    `bson:"ownerId" json:"ownerId"`
	Owner     string    `bson:"owner" json:"owner"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func NewMessage(roomID RoomID, owner *User, text string) (*Message, error) {
	if err := ValidateMessage(text); err != nil {
		return nil, err
	}
	return &Message{
		ID:        MessageID(NewID()),
		RoomID:    roomID,
		OwnerID:   owner.ID,
		Owner:     owner.Username,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func ValidateMessage(text string) error {
	if len(text) < MinMessageLen || len(text) > MaxMessageLen {
		return ErrMessageLength
	}
	return nil
}
