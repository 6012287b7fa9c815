package domain

import "errors"

const (
	MinQuestionLen = 3
	MaxQuestionLen = 200
	MinAnswerLen   = 3
	MaxAnswerLen   = 50
	AnswerCount    = 4
)

var (
	ErrQuestionLength = errors.New("question must be 3-200 characters")
	ErrAnswerCount    = errors.New("a question needs exactly 4 answers")
	ErrAnswerLength   = errors.New("answers must be 3-50 characters")
	ErrAnswerIndex    = errors.New("correct answer index must be 0-3")
)

type QuestionID string

// Question lives in its own collection; rooms reference it by id through
// GameSettings.Questions. Owner is a denormalized username.
type Question struct {
	ID                 QuestionID `bson:"_id" json:"id"`
	OwnerID            UserID     `bson:"ownerId" json:"ownerId"`
	Owner              string     `bson:"owner" json:"owner"`
	Question           string     `bson:"question" json:"question"`
	Answers            []string   `bson:"answers" json:"answers"`
	CorrectAnswerIndex int        `bson:"correctAnswerIndex" json:"correctAnswerIndex"`
}

func NewQuestion(owner *User, text string, answers []string, correct int) (*Question, error) {
	if err := ValidateQuestion(text, answers, correct); err != nil {
		return nil, err
	}
	return &Question{
		ID:                 QuestionID(NewID()),
		OwnerID:            owner.ID,
		Owner:              owner.Username,
		Question:           text,
		Answers:            answers,
		CorrectAnswerIndex: correct,
	}, nil
}

func ValidateQuestion(text string, answers []string, correct int) error {
	if len(text) < MinQuestionLen || len(text) > MaxQuestionLen {
		return ErrQuestionLength
	}
	if len(answers) != AnswerCount {
		return ErrAnswerCount
	}
	for _, a := range answers {
		if len(a) < MinAnswerLen || len(a) > MaxAnswerLen {
			return ErrAnswerLength
		}
	}
	if correct < 0 || correct >= AnswerCount {
		return ErrAnswerIndex
	}
	return nil
}
