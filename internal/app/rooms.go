// Package app wires the core ports into command handlers: the access
// guard, the room aggregate logic and the auth/question/message/user
// services around it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

// RoomService owns the room lifecycle: membership, admin authority and
// game configuration. Every successful mutation publishes on the room's
// bus key so open subscriptions re-read.
type RoomService struct {
	rooms core.RoomStore
	bus   core.EventBus
}

func NewRoomService(rooms core.RoomStore, bus core.EventBus) *RoomService {
	return &RoomService{rooms: rooms, bus: bus}
}

// requireUser is the access guard. Admin authority is not checked here:
// it is folded into the store mutation's condition, because the guard
// only knows "is authenticated", not "is admin of room X".
func requireUser(caller *domain.User) error {
	if caller == nil {
		return core.ErrUnauthorized
	}
	return nil
}

func (s *RoomService) notify(roomID domain.RoomID) {
	s.bus.Publish(core.RoomTopic(roomID), string(roomID))
}

// EnterRoom creates the room when the name is unknown; otherwise it
// re-adds the caller. Re-entry first clears any stale trace of the
// caller (participants, ready check, contributed question refs), since
// an ungraceful disconnect skips LeaveRoom and would otherwise leave the
// caller listed twice.
func (s *RoomService) EnterRoom(ctx context.Context, caller *domain.User, roomName string) (domain.RoomID, error) {
	if err := requireUser(caller); err != nil {
		return "", err
	}
	if err := domain.ValidateRoomName(roomName); err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	room, err := s.rooms.FindRoomByName(ctx, roomName)
	switch {
	case err == nil:
		return s.reenterRoom(ctx, caller, room)
	case errors.Is(err, core.ErrNotFound):
		room := domain.NewRoom(roomName, caller)
		if err := s.rooms.CreateRoom(ctx, room); err != nil {
			if errors.Is(err, core.ErrConflict) {
				// Lost a creation race on the unique name. The room
				// exists now, take the re-entry path.
				existing, ferr := s.rooms.FindRoomByName(ctx, roomName)
				if ferr != nil {
					return "", ferr
				}
				return s.reenterRoom(ctx, caller, existing)
			}
			return "", err
		}
		log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("name", roomName).Str("creator", string(caller.ID)).Msg("room created")
		s.notify(room.ID)
		return room.ID, nil
	default:
		return "", err
	}
}

func (s *RoomService) reenterRoom(ctx context.Context, caller *domain.User, room *domain.Room) (domain.RoomID, error) {
	if err := s.rooms.DetachParticipant(ctx, room.RoomName, caller.ID, true); err != nil {
		return "", err
	}
	p := domain.Participant{UserID: caller.ID, Username: caller.Username}
	if err := s.rooms.AddParticipant(ctx, room.RoomName, p); err != nil {
		return "", err
	}
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("user", string(caller.ID)).Msg("entered room")
	s.notify(room.ID)
	return room.ID, nil
}

// LeaveRoom removes the caller's membership and ready check. Contributed
// question refs are only pruned while the room is still configuring.
func (s *RoomService) LeaveRoom(ctx context.Context, caller *domain.User, roomName string) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := domain.ValidateRoomName(roomName); err != nil {
		return fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	room, err := s.rooms.FindRoomByName(ctx, roomName)
	if err != nil {
		return err
	}
	prune := room.State == domain.StatePreGame
	if err := s.rooms.DetachParticipant(ctx, roomName, caller.ID, prune); err != nil {
		return err
	}
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("user", string(caller.ID)).Msg("left room")
	s.notify(room.ID)
	return nil
}

// AssignNewAdmin hands admin authority to another participant. The admin
// check rides inside the store's conditional update; a failed condition
// is reported as ErrNotFound whether the room is missing or the caller
// is simply not the admin.
func (s *RoomService) AssignNewAdmin(ctx context.Context, caller *domain.User, roomID domain.RoomID, newAdminID domain.UserID) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := validateIDs(string(roomID), string(newAdminID)); err != nil {
		return err
	}

	matched, err := s.rooms.SetRoomAdmin(ctx, roomID, caller.ID, newAdminID)
	if err != nil {
		return err
	}
	if !matched {
		return core.ErrNotFound
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("admin", string(newAdminID)).Msg("admin reassigned")
	s.notify(roomID)
	return nil
}

// KickUser removes the target from participants, readyChecks and their
// question refs in one admin-conditioned update, so no partial removal
// is ever observable.
func (s *RoomService) KickUser(ctx context.Context, caller *domain.User, roomID domain.RoomID, targetID domain.UserID) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := validateIDs(string(roomID), string(targetID)); err != nil {
		return err
	}

	matched, err := s.rooms.RemoveParticipantAsAdmin(ctx, roomID, caller.ID, targetID)
	if err != nil {
		return err
	}
	if !matched {
		return core.ErrNotFound
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("kicked", string(targetID)).Msg("user kicked")
	s.notify(roomID)
	return nil
}

// ChangeGameSettings updates exactly one settings field, admin-gated.
// The value is checked against the key's fixed enumeration before the
// store is touched.
func (s *RoomService) ChangeGameSettings(ctx context.Context, caller *domain.User, roomID domain.RoomID, key domain.SettingKey, value int) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := validateIDs(string(roomID)); err != nil {
		return err
	}
	if err := domain.ValidateSetting(key, value); err != nil {
		return fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	matched, err := s.rooms.SetGameSetting(ctx, roomID, caller.ID, key, value)
	if err != nil {
		return err
	}
	if !matched {
		return core.ErrNotFound
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("key", string(key)).Int("value", value).Msg("setting changed")
	s.notify(roomID)
	return nil
}

// SetQuestions replaces the caller's contributed question refs with the
// given list. Pull and push are two store calls, not one transaction: a
// kick racing into the gap can leave refs from a removed participant
// behind until the next membership change prunes them.
func (s *RoomService) SetQuestions(ctx context.Context, caller *domain.User, roomID domain.RoomID, questionIDs []domain.QuestionID) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	ids := []string{string(roomID)}
	for _, q := range questionIDs {
		ids = append(ids, string(q))
	}
	if err := validateIDs(ids...); err != nil {
		return err
	}

	if err := s.rooms.PullQuestionRefs(ctx, roomID, caller.ID); err != nil {
		return err
	}
	refs := make([]domain.QuestionRef, 0, len(questionIDs))
	for _, q := range questionIDs {
		refs = append(refs, domain.QuestionRef{QuestionID: q, OwnerID: caller.ID})
	}
	matched, err := s.rooms.PushQuestionRefs(ctx, roomID, refs)
	if err != nil {
		return err
	}
	if !matched {
		return core.ErrNotFound
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(caller.ID)).Int("count", len(refs)).Msg("questions set")
	s.notify(roomID)
	return nil
}

// ToggleReady flips the caller's ready check.
func (s *RoomService) ToggleReady(ctx context.Context, caller *domain.User, roomID domain.RoomID) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if err := validateIDs(string(roomID)); err != nil {
		return err
	}

	room, err := s.rooms.FindRoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	matched, err := s.rooms.SetReadyCheck(ctx, roomID, caller.ID, !room.IsReady(caller.ID))
	if err != nil {
		return err
	}
	if !matched {
		return core.ErrNotFound
	}
	s.notify(roomID)
	return nil
}

// Subscribe opens a live view of the room: current state first, then a
// fresh read per mutation. A room that stops resolving pushes nil.
func (s *RoomService) Subscribe(ctx context.Context, caller *domain.User, roomID domain.RoomID) (*core.Subscription[*domain.Room], error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateIDs(string(roomID)); err != nil {
		return nil, err
	}

	read := func(ctx context.Context) (*domain.Room, error) {
		room, err := s.rooms.FindRoomByID(ctx, roomID)
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return room, err
	}
	return core.OpenSubscription(ctx, s.bus, core.RoomTopic(roomID), read)
}

func validateIDs(ids ...string) error {
	for _, id := range ids {
		if err := domain.ValidateID(id); err != nil {
			return fmt.Errorf("%w: %s", core.ErrBadInput, err)
		}
	}
	return nil
}
