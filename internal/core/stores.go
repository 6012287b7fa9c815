package core

import (
	"context"
	"time"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

// RoomStore is the durable home of the Room aggregate. Admin-gated
// mutations are single conditional updates matching on room id and
// current admin together; they report matched=false instead of an error
// when the condition does not hold, and the caller collapses that into
// ErrNotFound.
type RoomStore interface {
	FindRoomByName(ctx context.Context, roomName string) (*domain.Room, error)
	FindRoomByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)

	// CreateRoom returns ErrConflict when the room name is already taken.
	CreateRoom(ctx context.Context, room *domain.Room) error

	// DetachParticipant pulls the user from participants and readyChecks,
	// and from the contributed question refs when pruneQuestions is set.
	// Addressed by name because enter/leave commands carry the room name.
	DetachParticipant(ctx context.Context, roomName string, userID domain.UserID, pruneQuestions bool) error
	AddParticipant(ctx context.Context, roomName string, p domain.Participant) error

	SetRoomAdmin(ctx context.Context, roomID domain.RoomID, callerID, newAdminID domain.UserID) (matched bool, err error)

	// RemoveParticipantAsAdmin pulls the target from participants,
	// readyChecks and their question refs in one conditional update.
	RemoveParticipantAsAdmin(ctx context.Context, roomID domain.RoomID, callerID, targetID domain.UserID) (matched bool, err error)

	SetGameSetting(ctx context.Context, roomID domain.RoomID, callerID domain.UserID, key domain.SettingKey, value int) (matched bool, err error)

	PullQuestionRefs(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) error
	PushQuestionRefs(ctx context.Context, roomID domain.RoomID, refs []domain.QuestionRef) (matched bool, err error)

	SetReadyCheck(ctx context.Context, roomID domain.RoomID, userID domain.UserID, ready bool) (matched bool, err error)
}

type UserStore interface {
	FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUsername(ctx context.Context, id domain.UserID, username string) error
}

type QuestionStore interface {
	CreateQuestion(ctx context.Context, q *domain.Question) error
	QuestionsByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Question, error)
	// RenameQuestionOwner rewrites the denormalized owner username on all
	// of the owner's questions.
	RenameQuestionOwner(ctx context.Context, ownerID domain.UserID, username string) error
}

type MessageStore interface {
	InsertMessage(ctx context.Context, m *domain.Message) error
	MessagesSince(ctx context.Context, roomID domain.RoomID, since time.Time) ([]domain.Message, error)
	RenameMessageOwner(ctx context.Context, ownerID domain.UserID, username string) error
}

type OtpStore interface {
	// UpsertOtp replaces any pending code for the phone number.
	UpsertOtp(ctx context.Context, otp *domain.Otp) error
	FindOtp(ctx context.Context, phoneNumber string) (*domain.Otp, error)
	DeleteOtp(ctx context.Context, phoneNumber string) error
}
