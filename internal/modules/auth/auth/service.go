package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/legalai/core/internal/middleware"
	jwtpkg "github.com/legalai/core/internal/pkg/jwt"
)

const adminSubject = "admin"

var (
	errAdminDisabled = errors.New("admin access is not configured")
	errWrongPassword = errors.New("wrong password")
)

// Service issues admin tokens for the configured password hash.
type Service struct {
	signer       *jwtpkg.Signer
	passwordHash []byte
	ttl          time.Duration
	failDelay    time.Duration
}

func NewService(signer *jwtpkg.Signer, passwordHash string, ttl time.Duration) *Service {
	return &Service{
		signer:       signer,
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		failDelay:    3 * time.Second,
	}
}

// Enabled reports whether admin login is possible.
func (s *Service) Enabled() bool {
	return s.signer != nil && len(s.passwordHash) > 0
}

// Login checks password against the hash and returns a signed admin token.
func (s *Service) Login(password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, errAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		time.Sleep(s.failDelay)
		return "", time.Time{}, errWrongPassword
	}
	expires := time.Now().Add(s.ttl)
	token, err := s.signer.Sign(adminSubject, middleware.RoleAdmin, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}
