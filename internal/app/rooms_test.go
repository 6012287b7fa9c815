package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/memory"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

func newRoomFixture(t *testing.T) (*RoomService, *memory.Store, *core.MemoryBus) {
	t.Helper()
	store := memory.NewStore()
	bus := core.NewMemoryBus()
	return NewRoomService(store, bus), store, bus
}

func newTestUser(t *testing.T, username string) *domain.User {
	t.Helper()
	return domain.NewUser("+905550000000", username)
}

func roomByID(t *testing.T, store *memory.Store, id domain.RoomID) *domain.Room {
	t.Helper()
	room, err := store.FindRoomByID(context.Background(), id)
	require.NoError(t, err)
	return room
}

func TestEnterRoomCreatesWhenUnknown(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)

	room := roomByID(t, store, roomID)
	assert.Equal(t, domain.StatePreGame, room.State)
	assert.Equal(t, userA.ID, room.RoomAdmin)
	assert.Equal(t, userA.ID, room.CreatorID)
	assert.Equal(t, []domain.Participant{{UserID: userA.ID, Username: "alice"}}, room.Participants)
}

func TestEnterRoomIsIdempotentPerUser(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)

	// Re-entry after an ungraceful disconnect must not duplicate the
	// participant, whatever the repeat count.
	for i := 0; i < 3; i++ {
		again, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
		require.NoError(t, err)
		assert.Equal(t, roomID, again)
	}

	room := roomByID(t, store, roomID)
	assert.Len(t, room.Participants, 1)
}

func TestLeaveThenEnterRestoresMembership(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveRoom(context.Background(), userB, "trivia-night"))
	assert.Len(t, roomByID(t, store, roomID).Participants, 1)

	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)
	assert.Len(t, roomByID(t, store, roomID).Participants, 2)
}

func TestLeaveRoomUnknownName(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	err := svc.LeaveRoom(context.Background(), newTestUser(t, "alice"), "trivia-night")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLeaveRoomPrunesContributedQuestions(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)

	qID := domain.QuestionID(domain.NewID())
	require.NoError(t, svc.SetQuestions(context.Background(), userA, roomID, []domain.QuestionID{qID}))
	require.Len(t, roomByID(t, store, roomID).GameSettings.Questions, 1)

	require.NoError(t, svc.LeaveRoom(context.Background(), userA, "trivia-night"))
	assert.Empty(t, roomByID(t, store, roomID).GameSettings.Questions)
}

func TestAssignNewAdminRequiresCurrentAdmin(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	// Non-admin caller: collapsed into NotFound, no state change.
	err = svc.AssignNewAdmin(context.Background(), userB, roomID, userB.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, userA.ID, roomByID(t, store, roomID).RoomAdmin)

	require.NoError(t, svc.AssignNewAdmin(context.Background(), userA, roomID, userB.ID))
	assert.Equal(t, userB.ID, roomByID(t, store, roomID).RoomAdmin)
}

func TestKickUserRemovesEveryTrace(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	require.NoError(t, svc.ToggleReady(context.Background(), userB, roomID))
	qID := domain.QuestionID(domain.NewID())
	require.NoError(t, svc.SetQuestions(context.Background(), userB, roomID, []domain.QuestionID{qID}))

	require.NoError(t, svc.KickUser(context.Background(), userA, roomID, userB.ID))

	room := roomByID(t, store, roomID)
	assert.False(t, room.HasParticipant(userB.ID))
	assert.False(t, room.IsReady(userB.ID))
	assert.Empty(t, room.GameSettings.Questions)
}

func TestKickUserByNonAdmin(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	err = svc.KickUser(context.Background(), userB, roomID, userA.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, roomByID(t, store, roomID).HasParticipant(userA.ID))
}

func TestChangeGameSettings(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	// Values outside the enum are rejected before the store is touched.
	err = svc.ChangeGameSettings(context.Background(), userA, roomID, domain.SettingAnswerPeriod, 25)
	assert.ErrorIs(t, err, core.ErrBadInput)
	err = svc.ChangeGameSettings(context.Background(), userA, roomID, domain.SettingKey("bogus"), 10)
	assert.ErrorIs(t, err, core.ErrBadInput)

	// Non-admin collapses into NotFound.
	err = svc.ChangeGameSettings(context.Background(), userB, roomID, domain.SettingAnswerPeriod, 30)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, domain.DefaultAnswerPeriod, roomByID(t, store, roomID).GameSettings.AnswerPeriod)

	require.NoError(t, svc.ChangeGameSettings(context.Background(), userA, roomID, domain.SettingAnswerPeriod, 30))
	require.NoError(t, svc.ChangeGameSettings(context.Background(), userA, roomID, domain.SettingQuestionsPerUser, 10))

	room := roomByID(t, store, roomID)
	assert.Equal(t, 30, room.GameSettings.AnswerPeriod)
	assert.Equal(t, 10, room.GameSettings.QuestionsPerUser)
}

func TestSetQuestionsReplacesOwnContribution(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)
	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)

	first := domain.QuestionID(domain.NewID())
	second := domain.QuestionID(domain.NewID())
	other := domain.QuestionID(domain.NewID())

	require.NoError(t, svc.SetQuestions(context.Background(), userA, roomID, []domain.QuestionID{first}))
	require.NoError(t, svc.SetQuestions(context.Background(), userB, roomID, []domain.QuestionID{other}))
	require.NoError(t, svc.SetQuestions(context.Background(), userA, roomID, []domain.QuestionID{second}))

	room := roomByID(t, store, roomID)
	assert.ElementsMatch(t, []domain.QuestionRef{
		{QuestionID: second, OwnerID: userA.ID},
		{QuestionID: other, OwnerID: userB.ID},
	}, room.GameSettings.Questions)
}

func TestSetQuestionsUnknownRoom(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	err := svc.SetQuestions(context.Background(), newTestUser(t, "alice"), domain.RoomID(domain.NewID()), nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestToggleReady(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)

	require.NoError(t, svc.ToggleReady(context.Background(), userA, roomID))
	assert.True(t, roomByID(t, store, roomID).IsReady(userA.ID))

	require.NoError(t, svc.ToggleReady(context.Background(), userA, roomID))
	assert.False(t, roomByID(t, store, roomID).IsReady(userA.ID))
}

func TestCommandsRejectMissingIdentity(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	ctx := context.Background()
	roomID := domain.RoomID(domain.NewID())
	userID := domain.UserID(domain.NewID())

	_, err := svc.EnterRoom(ctx, nil, "trivia-night")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.ErrorIs(t, svc.LeaveRoom(ctx, nil, "trivia-night"), core.ErrUnauthorized)
	assert.ErrorIs(t, svc.AssignNewAdmin(ctx, nil, roomID, userID), core.ErrUnauthorized)
	assert.ErrorIs(t, svc.KickUser(ctx, nil, roomID, userID), core.ErrUnauthorized)
	assert.ErrorIs(t, svc.ChangeGameSettings(ctx, nil, roomID, domain.SettingAnswerPeriod, 20), core.ErrUnauthorized)
	assert.ErrorIs(t, svc.SetQuestions(ctx, nil, roomID, nil), core.ErrUnauthorized)
	assert.ErrorIs(t, svc.ToggleReady(ctx, nil, roomID), core.ErrUnauthorized)
	_, err = svc.Subscribe(ctx, nil, roomID)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestEnterRoomValidatesName(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	_, err := svc.EnterRoom(context.Background(), newTestUser(t, "alice"), "quiz")
	assert.ErrorIs(t, err, core.ErrBadInput)
}

func recvRoom(t *testing.T, sub *core.Subscription[*domain.Room]) *domain.Room {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "stream closed unexpectedly")
		require.NoError(t, ev.Err)
		return ev.Value
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a push")
		return nil
	}
}

func TestSubscribeSnapshotThenOnePushPerMutation(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(context.Background(), userA, "trivia-night")
	require.NoError(t, err)

	sub, err := svc.Subscribe(context.Background(), userA, roomID)
	require.NoError(t, err)
	defer sub.Close()

	snapshot := recvRoom(t, sub)
	require.NotNil(t, snapshot)
	assert.Len(t, snapshot.Participants, 1)

	_, err = svc.EnterRoom(context.Background(), userB, "trivia-night")
	require.NoError(t, err)
	assert.Len(t, recvRoom(t, sub).Participants, 2)

	require.NoError(t, svc.AssignNewAdmin(context.Background(), userA, roomID, userB.ID))
	assert.Equal(t, userB.ID, recvRoom(t, sub).RoomAdmin)

	require.NoError(t, svc.KickUser(context.Background(), userB, roomID, userA.ID))
	assert.Len(t, recvRoom(t, sub).Participants, 1)

	// No extra pushes beyond one per mutation.
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected push: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeMissingRoomPushesNil(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	sub, err := svc.Subscribe(context.Background(), newTestUser(t, "alice"), domain.RoomID(domain.NewID()))
	require.NoError(t, err)
	defer sub.Close()

	assert.Nil(t, recvRoom(t, sub))
}

func TestTriviaNightScenario(t *testing.T) {
	svc, store, _ := newRoomFixture(t)
	ctx := context.Background()
	userA := newTestUser(t, "alice")
	userB := newTestUser(t, "bobby")

	roomID, err := svc.EnterRoom(ctx, userA, "trivia-night")
	require.NoError(t, err)
	room := roomByID(t, store, roomID)
	assert.Equal(t, domain.StatePreGame, room.State)
	assert.Equal(t, userA.ID, room.RoomAdmin)
	assert.Len(t, room.Participants, 1)

	sameID, err := svc.EnterRoom(ctx, userB, "trivia-night")
	require.NoError(t, err)
	assert.Equal(t, roomID, sameID)
	assert.Len(t, roomByID(t, store, roomID).Participants, 2)

	assert.ErrorIs(t, svc.AssignNewAdmin(ctx, userB, roomID, userB.ID), core.ErrNotFound)

	require.NoError(t, svc.AssignNewAdmin(ctx, userA, roomID, userB.ID))
	assert.Equal(t, userB.ID, roomByID(t, store, roomID).RoomAdmin)

	require.NoError(t, svc.KickUser(ctx, userB, roomID, userA.ID))
	room = roomByID(t, store, roomID)
	assert.Equal(t, []domain.Participant{{UserID: userB.ID, Username: "bobby"}}, room.Participants)
}
