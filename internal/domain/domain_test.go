package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoomName(t *testing.T) {
	cases := []struct {
		name     string
		roomName string
		wantErr  error
	}{
		{"too short", "quiz", ErrRoomNameLength},
		{"minimum length", "quizz", nil},
		{"maximum length", "trivia-night-trivia-night-12345", ErrRoomNameLength},
		{"ok", "trivia-night", nil},
		{"empty", "", ErrRoomNameLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateRoomName(tc.roomName), tc.wantErr)
		})
	}
}

func TestValidateSetting(t *testing.T) {
	cases := []struct {
		name    string
		key     SettingKey
		value   int
		wantErr error
	}{
		{"default questions per user", SettingQuestionsPerUser, DefaultQuestionsPerUser, nil},
		{"default answer period", SettingAnswerPeriod, DefaultAnswerPeriod, nil},
		{"questions per user outside enum", SettingQuestionsPerUser, 4, ErrSettingValue},
		{"answer period outside enum", SettingAnswerPeriod, 25, ErrSettingValue},
		{"unknown key", SettingKey("roundCount"), 5, ErrUnknownSetting},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSetting(tc.key, tc.value), tc.wantErr)
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber("+905551234567"))
	assert.NoError(t, ValidatePhoneNumber("5551234"))
	assert.ErrorIs(t, ValidatePhoneNumber("12345"), ErrPhoneNumber)
	assert.ErrorIs(t, ValidatePhoneNumber("+9055512345x7"), ErrPhoneNumber)
	assert.ErrorIs(t, ValidatePhoneNumber(""), ErrPhoneNumber)
}

func TestValidateQuestion(t *testing.T) {
	answers := []string{"Ankara", "Istanbul", "Izmir", "Bursa"}

	require.NoError(t, ValidateQuestion("What is the capital of Turkey?", answers, 0))
	assert.ErrorIs(t, ValidateQuestion("ab", answers, 0), ErrQuestionLength)
	assert.ErrorIs(t, ValidateQuestion("What is the capital of Turkey?", answers[:3], 0), ErrAnswerCount)
	assert.ErrorIs(t, ValidateQuestion("What is the capital of Turkey?", []string{"a", "bb", "ccc", "dddd"}, 0), ErrAnswerLength)
	assert.ErrorIs(t, ValidateQuestion("What is the capital of Turkey?", answers, 4), ErrAnswerIndex)
	assert.ErrorIs(t, ValidateQuestion("What is the capital of Turkey?", answers, -1), ErrAnswerIndex)
}

func TestNewRoomDefaults(t *testing.T) {
	creator := NewUser("+905551234567", "senpai")
	room := NewRoom("trivia-night", creator)

	require.NoError(t, ValidateID(string(room.ID)))
	assert.Equal(t, StatePreGame, room.State)
	assert.Equal(t, creator.ID, room.CreatorID)
	assert.Equal(t, creator.ID, room.RoomAdmin)
	assert.Equal(t, []Participant{{UserID: creator.ID, Username: "senpai"}}, room.Participants)
	assert.Empty(t, room.ReadyChecks)
	assert.Equal(t, DefaultQuestionsPerUser, room.GameSettings.QuestionsPerUser)
	assert.Equal(t, DefaultAnswerPeriod, room.GameSettings.AnswerPeriod)
	assert.Empty(t, room.GameSettings.Questions)
}
