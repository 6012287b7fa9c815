package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

// messageWindow bounds how far back the message feed reaches.
const messageWindow = 12 * time.Hour

type MessageService struct {
	messages core.MessageStore
	bus      core.EventBus
}

func NewMessageService(messages core.MessageStore, bus core.EventBus) *MessageService {
	return &MessageService{messages: messages, bus: bus}
}

func (s *MessageService) Send(ctx context.Context, caller *domain.User, roomID domain.RoomID, text string) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := validateIDs(string(roomID)); err != nil {
		return err
	}
	m, err := domain.NewMessage(roomID, caller, text)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}
	if err := s.messages.InsertMessage(ctx, m); err != nil {
		return err
	}
	log.Info().Str("module", "app.messages").Str("room", string(roomID)).Str("owner", string(caller.ID)).Msg("message sent")
	s.bus.Publish(core.MessagesTopic(roomID), string(roomID))
	return nil
}

// Subscribe streams the room's recent messages: current window on open,
// re-read on every send to that room.
func (s *MessageService) Subscribe(ctx context.Context, caller *domain.User, roomID domain.RoomID) (*core.Subscription[[]domain.Message], error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateIDs(string(roomID)); err != nil {
		return nil, err
	}

	read := func(ctx context.Context) ([]domain.Message, error) {
		return s.messages.MessagesSince(ctx, roomID, time.Now().Add(-messageWindow))
	}
	return core.OpenSubscription(ctx, s.bus, core.MessagesTopic(roomID), read)
}
