package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

func (s *Store) FindRoomByName(ctx context.Context, roomName string) (*domain.Room, error) {
	return s.findRoom(ctx, bson.M{"roomName": roomName})
}

func (s *Store) FindRoomByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	return s.findRoom(ctx, bson.M{"_id": id})
}

func (s *Store) findRoom(ctx context.Context, filter bson.M) (*domain.Room, error) {
	var room domain.Room
	err := s.coll(collRooms).FindOne(ctx, filter).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) error {
	_, err := s.coll(collRooms).InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) DetachParticipant(ctx context.Context, roomName string, userID domain.UserID, pruneQuestions bool) error {
	pull := bson.M{
		"participants": bson.M{"userId": userID},
		"readyChecks":  bson.M{"userId": userID},
	}
	if pruneQuestions {
		pull["gameSettings.questions"] = bson.M{"ownerId": userID}
	}
	_, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"roomName": roomName},
		bson.M{"$pull": pull},
	)
	return err
}

func (s *Store) AddParticipant(ctx context.Context, roomName string, p domain.Participant) error {
	_, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"roomName": roomName},
		bson.M{"$push": bson.M{"participants": p}},
	)
	return err
}

func (s *Store) SetRoomAdmin(ctx context.Context, roomID domain.RoomID, callerID, newAdminID domain.UserID) (bool, error) {
	res, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"_id": roomID, "roomAdmin": callerID},
		bson.M{"$set": bson.M{"roomAdmin": newAdminID}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) RemoveParticipantAsAdmin(ctx context.Context, roomID domain.RoomID, callerID, targetID domain.UserID) (bool, error) {
	res, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"_id": roomID, "roomAdmin": callerID},
		bson.M{"$pull": bson.M{
			"participants":           bson.M{"userId": targetID},
			"readyChecks":            bson.M{"userId": targetID},
			"gameSettings.questions": bson.M{"ownerId": targetID},
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) SetGameSetting(ctx context.Context, roomID domain.RoomID, callerID domain.UserID, key domain.SettingKey, value int) (bool, error) {
	res, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"_id": roomID, "roomAdmin": callerID},
		bson.M{"$set": bson.M{"gameSettings." + string(key): value}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) PullQuestionRefs(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) error {
	_, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$pull": bson.M{"gameSettings.questions": bson.M{"ownerId": ownerID}}},
	)
	return err
}

func (s *Store) PushQuestionRefs(ctx context.Context, roomID domain.RoomID, refs []domain.QuestionRef) (bool, error) {
	res, err := s.coll(collRooms).UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$push": bson.M{"gameSettings.questions": bson.M{"$each": refs}}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) SetReadyCheck(ctx context.Context, roomID domain.RoomID, userID domain.UserID, ready bool) (bool, error) {
	var update bson.M
	if ready {
		update = bson.M{"$addToSet": bson.M{"readyChecks": domain.ReadyCheck{UserID: userID}}}
	} else {
		update = bson.M{"$pull": bson.M{"readyChecks": bson.M{"userId": userID}}}
	}
	res, err := s.coll(collRooms).UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
