package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

func (s *Store) FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"phoneNumber": phoneNumber})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := s.coll(collUsers).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.coll(collUsers).InsertOne(ctx, user)
	return err
}

func (s *Store) UpdateUsername(ctx context.Context, id domain.UserID, username string) error {
	res, err := s.coll(collUsers).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"username": username}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	_, err := s.coll(collQuestions).InsertOne(ctx, q)
	return err
}

func (s *Store) QuestionsByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Question, error) {
	cursor, err := s.coll(collQuestions).Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := []domain.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) RenameQuestionOwner(ctx context.Context, ownerID domain.UserID, username string) error {
	_, err := s.coll(collQuestions).UpdateMany(ctx,
		bson.M{"ownerId": ownerID},
		bson.M{"$set": bson.M{"owner": username}},
	)
	return err
}

func (s *Store) InsertMessage(ctx context.Context, m *domain.Message) error {
	_, err := s.coll(collMessages).InsertOne(ctx, m)
	return err
}

func (s *Store) MessagesSince(ctx context.Context, roomID domain.RoomID, since time.Time) ([]domain.Message, error) {
	cursor, err := s.coll(collMessages).Find(ctx,
		bson.M{"roomId": roomID, "createdAt": bson.M{"$gte": since}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) RenameMessageOwner(ctx context.Context, ownerID domain.UserID, username string) error {
	_, err := s.coll(collMessages).UpdateMany(ctx,
		bson.M{"ownerId": ownerID},
		bson.M{"$set": bson.M{"owner": username}},
	)
	return err
}

func (s *Store) UpsertOtp(ctx context.Context, otp *domain.Otp) error {
	_, err := s.coll(collOtps).ReplaceOne(ctx,
		bson.M{"phoneNumber": otp.PhoneNumber},
		otp,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) FindOtp(ctx context.Context, phoneNumber string) (*domain.Otp, error) {
	var otp domain.Otp
	err := s.coll(collOtps).FindOne(ctx, bson.M{"phoneNumber": phoneNumber}).Decode(&otp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *Store) DeleteOtp(ctx context.Context, phoneNumber string) error {
	_, err := s.coll(collOtps).DeleteOne(ctx, bson.M{"phoneNumber": phoneNumber})
	return err
}
