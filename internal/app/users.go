package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

type UserService struct {
	users     core.UserStore
	questions core.QuestionStore
	messages  core.MessageStore
}

func NewUserService(users core.UserStore, questions core.QuestionStore, messages core.MessageStore) *UserService {
	return &UserService{users: users, questions: questions, messages: messages}
}

// UpdateUsername renames the caller and rewrites the denormalized owner
// field on their questions and messages. Participant snapshots inside
// rooms are refreshed on the next enter.
func (s *UserService) UpdateUsername(ctx context.Context, caller *domain.User, username string) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := domain.ValidateUsername(username); err != nil {
		return fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	if err := s.users.UpdateUsername(ctx, caller.ID, username); err != nil {
		return err
	}
	if err := s.questions.RenameQuestionOwner(ctx, caller.ID, username); err != nil {
		return err
	}
	if err := s.messages.RenameMessageOwner(ctx, caller.ID, username); err != nil {
		return err
	}
	log.Info().Str("module", "app.users").Str("user", string(caller.ID)).Str("username", username).Msg("username updated")
	return nil
}

// GetUsername resolves a user id into its current username.
func (s *UserService) GetUsername(ctx context.Context, caller *domain.User, userID domain.UserID) (string, error) {
	if err := requireUser(caller); err != nil {
		return "", err
	}
	if err := validateIDs(string(userID)); err != nil {
		return "", err
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
