// Package memory implements every core store port on mutex-guarded maps.
// It mirrors the mongo adapter's conditional-update semantics, which is
// what makes it usable both as the test double and as a storeless run
// mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomID]*domain.Room
	roomNames map[string]domain.RoomID
	users     map[domain.UserID]*domain.User
	questions map[domain.QuestionID]*domain.Question
	messages  []*domain.Message
	otps      map[string]*domain.Otp
}

func NewStore() *Store {
	return &Store{
		rooms:     make(map[domain.RoomID]*domain.Room),
		roomNames: make(map[string]domain.RoomID),
		users:     make(map[domain.UserID]*domain.User),
		questions: make(map[domain.QuestionID]*domain.Question),
		otps:      make(map[string]*domain.Otp),
	}
}

// copyRoom keeps readers isolated from later mutations.
func copyRoom(r *domain.Room) *domain.Room {
	out := *r
	out.Participants = append([]domain.Participant(nil), r.Participants...)
	out.ReadyChecks = append([]domain.ReadyCheck(nil), r.ReadyChecks...)
	out.GameSettings.Questions = append([]domain.QuestionRef(nil), r.GameSettings.Questions...)
	return &out
}

func (s *Store) FindRoomByName(_ context.Context, roomName string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.roomNames[roomName]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyRoom(s.rooms[id]), nil
}

func (s *Store) FindRoomByID(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyRoom(room), nil
}

func (s *Store) CreateRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.roomNames[room.RoomName]; taken {
		return core.ErrConflict
	}
	s.rooms[room.ID] = copyRoom(room)
	s.roomNames[room.RoomName] = room.ID
	return nil
}

func detach(room *domain.Room, userID domain.UserID, pruneQuestions bool) {
	parts := room.Participants[:0]
	for _, p := range room.Participants {
		if p.UserID != userID {
			parts = append(parts, p)
		}
	}
	room.Participants = parts

	ready := room.ReadyChecks[:0]
	for _, rc := range room.ReadyChecks {
		if rc.UserID != userID {
			ready = append(ready, rc)
		}
	}
	room.ReadyChecks = ready

	if pruneQuestions {
		refs := room.GameSettings.Questions[:0]
		for _, ref := range room.GameSettings.Questions {
			if ref.OwnerID != userID {
				refs = append(refs, ref)
			}
		}
		room.GameSettings.Questions = refs
	}
}

func (s *Store) DetachParticipant(_ context.Context, roomName string, userID domain.UserID, pruneQuestions bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.roomNames[roomName]
	if !ok {
		return core.ErrNotFound
	}
	detach(s.rooms[id], userID, pruneQuestions)
	return nil
}

func (s *Store) AddParticipant(_ context.Context, roomName string, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.roomNames[roomName]
	if !ok {
		return core.ErrNotFound
	}
	room := s.rooms[id]
	room.Participants = append(room.Participants, p)
	return nil
}

func (s *Store) SetRoomAdmin(_ context.Context, roomID domain.RoomID, callerID, newAdminID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok || room.RoomAdmin != callerID {
		return false, nil
	}
	room.RoomAdmin = newAdminID
	return true, nil
}

func (s *Store) RemoveParticipantAsAdmin(_ context.Context, roomID domain.RoomID, callerID, targetID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok || room.RoomAdmin != callerID {
		return false, nil
	}
	detach(room, targetID, true)
	return true, nil
}

func (s *Store) SetGameSetting(_ context.Context, roomID domain.RoomID, callerID domain.UserID, key domain.SettingKey, value int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok || room.RoomAdmin != callerID {
		return false, nil
	}
	switch key {
	case domain.SettingQuestionsPerUser:
		room.GameSettings.QuestionsPerUser = value
	case domain.SettingAnswerPeriod:
		room.GameSettings.AnswerPeriod = value
	default:
		return false, domain.ErrUnknownSetting
	}
	return true, nil
}

func (s *Store) PullQuestionRefs(_ context.Context, roomID domain.RoomID, ownerID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	refs := room.GameSettings.Questions[:0]
	for _, ref := range room.GameSettings.Questions {
		if ref.OwnerID != ownerID {
			refs = append(refs, ref)
		}
	}
	room.GameSettings.Questions = refs
	return nil
}

func (s *Store) PushQuestionRefs(_ context.Context, roomID domain.RoomID, refs []domain.QuestionRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false, nil
	}
	room.GameSettings.Questions = append(room.GameSettings.Questions, refs...)
	return true, nil
}

func (s *Store) SetReadyCheck(_ context.Context, roomID domain.RoomID, userID domain.UserID, ready bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false, nil
	}
	checks := room.ReadyChecks[:0]
	for _, rc := range room.ReadyChecks {
		if rc.UserID != userID {
			checks = append(checks, rc)
		}
	}
	if ready {
		checks = append(checks, domain.ReadyCheck{UserID: userID})
	}
	room.ReadyChecks = checks
	return true, nil
}

func (s *Store) FindUserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (s *Store) FindUserByPhone(_ context.Context, phoneNumber string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.PhoneNumber == phoneNumber {
			out := *user
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *user
	s.users[user.ID] = &out
	return nil
}

func (s *Store) UpdateUsername(_ context.Context, id domain.UserID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	user.Username = username
	return nil
}

func (s *Store) CreateQuestion(_ context.Context, q *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *q
	out.Answers = append([]string(nil), q.Answers...)
	s.questions[q.ID] = &out
	return nil
}

func (s *Store) QuestionsByOwner(_ context.Context, ownerID domain.UserID) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Question{}
	for _, q := range s.questions {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *Store) RenameQuestionOwner(_ context.Context, ownerID domain.UserID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.questions {
		if q.OwnerID == ownerID {
			q.Owner = username
		}
	}
	return nil
}

func (s *Store) InsertMessage(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *m
	s.messages = append(s.messages, &out)
	return nil
}

func (s *Store) MessagesSince(_ context.Context, roomID domain.RoomID, since time.Time) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Message{}
	for _, m := range s.messages {
		if m.RoomID == roomID && !m.CreatedAt.Before(since) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *Store) RenameMessageOwner(_ context.Context, ownerID domain.UserID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.OwnerID == ownerID {
			m.Owner = username
		}
	}
	return nil
}

func (s *Store) UpsertOtp(_ context.Context, otp *domain.Otp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *otp
	s.otps[otp.PhoneNumber] = &out
	return nil
}

func (s *Store) FindOtp(_ context.Context, phoneNumber string) (*domain.Otp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	otp, ok := s.otps[phoneNumber]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *otp
	return &out, nil
}

func (s *Store) DeleteOtp(_ context.Context, phoneNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, phoneNumber)
	return nil
}

// BackdateOtp shifts a pending code's creation time. Test hook for
// expiry paths.
func (s *Store) BackdateOtp(phoneNumber string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if otp, ok := s.otps[phoneNumber]; ok {
		otp.CreatedAt = otp.CreatedAt.Add(-d)
	}
}
