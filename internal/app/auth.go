package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/core"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

const (
	otpDigits = 6
	tokenTTL  = 7 * 24 * time.Hour
)

// AuthService logs users in with one-time codes sent to their phone and
// hands out signed session tokens. The user document is created on the
// first successful verification.
type AuthService struct {
	users  core.UserStore
	otps   core.OtpStore
	secret []byte
	otpTTL time.Duration
}

func NewAuthService(users core.UserStore, otps core.OtpStore, secret string, otpTTL time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		otps:   otps,
		secret: []byte(secret),
		otpTTL: otpTTL,
	}
}

// RequestOtp stores a bcrypt hash of a fresh code for the phone number,
// replacing any pending one, and returns the code for delivery. Sending
// the SMS is not this service's job.
func (s *AuthService) RequestOtp(ctx context.Context, phoneNumber string) (string, error) {
	if err := domain.ValidatePhoneNumber(phoneNumber); err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	code, err := generateOtpCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.otps.UpsertOtp(ctx, domain.NewOtp(phoneNumber, string(hash))); err != nil {
		return "", err
	}
	log.Info().Str("module", "app.auth").Str("phone", phoneNumber).Msg("otp issued")
	return code, nil
}

// VerifyOtp checks the code, consumes it, creates the user when the
// phone number is new and returns a signed session token. A code older
// than the configured TTL fails with ErrTimeout.
func (s *AuthService) VerifyOtp(ctx context.Context, phoneNumber, code string) (*domain.User, string, error) {
	if err := domain.ValidatePhoneNumber(phoneNumber); err != nil {
		return nil, "", fmt.Errorf("%w: %s", core.ErrBadInput, err)
	}

	otp, err := s.otps.FindOtp(ctx, phoneNumber)
	if err != nil {
		return nil, "", err
	}
	if time.Since(otp.CreatedAt) > s.otpTTL {
		_ = s.otps.DeleteOtp(ctx, phoneNumber)
		return nil, "", core.ErrTimeout
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.Hash), []byte(code)) != nil {
		return nil, "", core.ErrUnauthorized
	}
	if err := s.otps.DeleteOtp(ctx, phoneNumber); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindUserByPhone(ctx, phoneNumber)
	if errors.Is(err, core.ErrNotFound) {
		user = domain.NewUser(phoneNumber, defaultUsername(phoneNumber))
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, "", err
		}
		log.Info().Str("module", "app.auth").Str("user", string(user.ID)).Msg("user created")
	} else if err != nil {
		return nil, "", err
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a session token into the user it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, core.ErrUnauthorized
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.ErrUnauthorized
	}
	return user, err
}

func (s *AuthService) signToken(id domain.UserID) (string, error) {
	claims := jwt.MapClaims{
		"_id": string(id),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parseToken(token string) (domain.UserID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", core.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", core.ErrUnauthorized
	}
	id, ok := claims["_id"].(string)
	if !ok {
		return "", core.ErrUnauthorized
	}
	return domain.UserID(id), nil
}

func generateOtpCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

func defaultUsername(phoneNumber string) string {
	suffix := phoneNumber
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "player" + suffix
}
