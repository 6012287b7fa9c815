// Package domain contains entities without logic, just meta-data and
// input validation.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 15
)

var (
	ErrUsernameLength = errors.New("username must be 3-15 characters")
	ErrPhoneNumber    = errors.New("invalid phone number")
	ErrInvalidID      = errors.New("invalid id")
)

type UserID string

type User struct {
	ID          UserID    `bson:"_id" json:"id"`
	Username    string    `bson:"username" json:"username"`
	PhoneNumber string    `bson:"phoneNumber" json:"phoneNumber"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// NewID generates a document id. Ids are opaque strings everywhere; only
// the store cares that they are unique.
func NewID() string {
	return uuid.NewString()
}

func ValidateID(id string) error {
	if uuid.Validate(id) != nil {
		return ErrInvalidID
	}
	return nil
}

// NewUser is created on first successful authentication. The username is a
// placeholder until the user picks one.
func NewUser(phoneNumber, username string) *User {
	return &User{
		ID:          UserID(NewID()),
		Username:    username,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
}

func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return ErrUsernameLength
	}
	return nil
}

// ValidatePhoneNumber accepts E.164-style numbers: optional leading plus,
// 7 to 15 digits.
func ValidatePhoneNumber(phone string) error {
	digits := phone
	if len(digits) > 0 && digits[0] == '+' {
		digits = digits[1:]
	}
	if len(digits) < 7 || len(digits) > 15 {
		return ErrPhoneNumber
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ErrPhoneNumber
		}
	}
	return nil
}
