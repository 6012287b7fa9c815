package domain

import "time"

// Otp holds the bcrypt hash of a one-time login code, keyed by phone
// number. The code itself is never persisted.
type Otp struct {
	ID          string    `bson:"_id" json:"-"`
	PhoneNumber string    `bson:"phoneNumber" json:"-"`
	Hash        string    `bson:"hash" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"-"`
}

func NewOtp(phoneNumber, hash string) *Otp {
	return &Otp{
		ID:          NewID(),
		PhoneNumber: phoneNumber,
		Hash:        hash,
		CreatedAt:   time.Now().UTC(),
	}
}
