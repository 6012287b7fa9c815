package domain

import (
	"errors"
	"time"
)

const (
	MinRoomNameLen = 5
	MaxRoomNameLen = 30

	DefaultQuestionsPerUser = 5
	DefaultAnswerPeriod     = 20
)

var (
	ErrRoomNameLength = errors.New("room name must be 5-30 characters")
	ErrUnknownSetting = errors.New("unknown game setting")
	ErrSettingValue   = errors.New("game setting value not allowed")
)

type (
	RoomID    string
	RoomState string
)

const (
	StatePreGame RoomState = "pre-game"
	StateInGame  RoomState = "in-game"
)

type SettingKey string

const (
	SettingQuestionsPerUser SettingKey = "questionsPerUser"
	SettingAnswerPeriod     SettingKey = "answerPeriod"
)

// Allowed values per setting key. Defaults are members of their sets.
var (
	QuestionsPerUserValues = []int{1, 2, 3, 5, 10}
	AnswerPeriodValues     = []int{10, 20, 30, 60}
)

// Participant is a denormalized membership snapshot. Unique by UserID
// within a room; ordering carries no meaning.
type Participant struct {
	UserID   UserID `bson:"userId" json:"userId"`
	Username string `bson:"username" json:"username"`
}

// ReadyCheck marks a participant as ready. Entries must reference a
// current participant; stale ones are pruned on the next membership change.
type ReadyCheck struct {
	UserID UserID `bson:"userId" json:"userId"`
}

// QuestionRef links a contributed question to its contributor. Removed
// whenever the owner leaves or is kicked.
type QuestionRef struct {
	QuestionID QuestionID `bson:"questionId" json:"questionId"`
	OwnerID    UserID     `bson:"ownerId" json:"ownerId"`
}

type GameSettings struct {
	QuestionsPerUser int           `bson:"questionsPerUser" json:"questionsPerUser"`
	AnswerPeriod     int           `bson:"answerPeriod" json:"answerPeriod"`
	Questions        []QuestionRef `bson:"questions" json:"questions"`
}

// Room is the persisted aggregate for one trivia session.
type Room struct {
	ID           RoomID        `bson:"_id" json:"id"`
	RoomName     string        `bson:"roomName" json:"roomName"`
	CreatorID    UserID        `bson:"creatorId" json:"creatorId"`
	RoomAdmin    UserID        `bson:"roomAdmin" json:"roomAdmin"`
	State        RoomState     `bson:"state" json:"state"`
	Participants []Participant `bson:"participants" json:"participants"`
	ReadyChecks  []ReadyCheck  `bson:"readyChecks" json:"readyChecks"`
	GameSettings GameSettings  `bson:"gameSettings" json:"gameSettings"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}

// NewRoom makes the creator the sole participant and admin.
func NewRoom(roomName string, creator *User) *Room {
	return &Room{
		ID:        RoomID(NewID()),
		RoomName:  roomName,
		CreatorID: creator.ID,
		RoomAdmin: creator.ID,
		State:     StatePreGame,
		Participants: []Participant{
			{UserID: creator.ID, Username: creator.Username},
		},
		ReadyChecks: []ReadyCheck{},
		GameSettings: GameSettings{
			QuestionsPerUser: DefaultQuestionsPerUser,
			AnswerPeriod:     DefaultAnswerPeriod,
			Questions:        []QuestionRef{},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Room) HasParticipant(id UserID) bool {
	for _, p := range r.Participants {
		if p.UserID == id {
			return true
		}
	}
	return false
}

func (r *Room) IsReady(id UserID) bool {
	for _, rc := range r.ReadyChecks {
		if rc.UserID == id {
			return true
		}
	}
	return false
}

func ValidateRoomName(name string) error {
	if len(name) < MinRoomNameLen || len(name) > MaxRoomNameLen {
		return ErrRoomNameLength
	}
	return nil
}

// ValidateSetting checks both the key and the per-key value enumeration,
// before any store access happens.
func ValidateSetting(key SettingKey, value int) error {
	var allowed []int
	switch key {
	case SettingQuestionsPerUser:
		allowed = QuestionsPerUserValues
	case SettingAnswerPeriod:
		allowed = AnswerPeriodValues
	default:
		return ErrUnknownSetting
	}
	for _, v := range allowed {
		if v == value {
			return nil
		}
	}
	return ErrSettingValue
}
