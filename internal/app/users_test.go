package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/adapters/memory"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

func TestUpdateUsernameRewritesDenormalizedOwner(t *testing.T) {
	store := memory.NewStore()
	bus := core.NewMemoryBus()
	users := NewUserService(store, store, store)
	questions := NewQuestionService(store)
	messages := NewMessageService(store, bus)
	ctx := context.Background()

	caller := domain.NewUser("+905551234567", "alice")
	require.NoError(t, store.CreateUser(ctx, caller))

	q, err := questions.Create(ctx, caller, "What is the capital of Turkey?", []string{"Ankara", "Istanbul", "Izmir", "Bursa"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "alice", q.Owner)

	roomID := domain.RoomID(domain.NewID())
	require.NoError(t, messages.Send(ctx, caller, roomID, "hello"))

	require.NoError(t, users.UpdateUsername(ctx, caller, "wonderland"))

	name, err := users.GetUsername(ctx, caller, caller.ID)
	require.NoError(t, err)
	assert.Equal(t, "wonderland", name)

	mine, err := questions.Mine(ctx, caller)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "wonderland", mine[0].Owner)

	sub, err := messages.Subscribe(ctx, caller, roomID)
	require.NoError(t, err)
	defer sub.Close()
	ev := <-sub.Events()
	require.NoError(t, ev.Err)
	require.Len(t, ev.Value, 1)
	assert.Equal(t, "wonderland", ev.Value[0].Owner)
}

func TestUpdateUsernameValidates(t *testing.T) {
	store := memory.NewStore()
	users := NewUserService(store, store, store)
	caller := domain.NewUser("+905551234567", "alice")

	assert.ErrorIs(t, users.UpdateUsername(context.Background(), caller, "ab"), core.ErrBadInput)
	assert.ErrorIs(t, users.UpdateUsername(context.Background(), nil, "valid-name"), core.ErrUnauthorized)
}

func TestGetUsernameUnknownUser(t *testing.T) {
	store := memory.NewStore()
	users := NewUserService(store, store, store)
	caller := domain.NewUser("+905551234567", "alice")

	_, err := users.GetUsername(context.Background(), caller, domain.UserID(domain.NewID()))
	assert.ErrorIs(t, err, core.ErrNotFound)
}
