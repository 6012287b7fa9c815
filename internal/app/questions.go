package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

type QuestionService struct {
	questions core.QuestionStore
}

func NewQuestionService(questions core.QuestionStore) *QuestionService {
	return &QuestionService{questions: questions}
}

func (s *QuestionService) Create(ctx context.Context, caller *domain.User, text string, answers []string, correct int) (*domain.Question, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	q, err := domain.NewQuestion(caller, text, answers, correct)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.questions").Str("question", string(q.ID)).Str("owner", string(caller.ID)).Msg("question created")
	return q, nil
}

// Mine lists the caller's question bank.
func (s *QuestionService) Mine(ctx context.Context, caller *domain.User) ([]domain.Question, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	return s.questions.QuestionsByOwner(ctx, caller.ID)
}
