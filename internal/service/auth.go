package service

import (
	"context"
	"errors"
	"time"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthDisabled   = errors.New("login is disabled: no admin password configured")
	ErrBadCredentials = errors.New("wrong username or password")
)

// AuthService checks the single admin account from config and issues
// the bearer tokens the write routes require.
type AuthService struct {
	cfg config.AuthConfig
	now func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

func (s *AuthService) Enabled() bool { return s.cfg.Enabled() }

func (s *AuthService) Login(_ context.Context, username, password string) (*model.LoginResponse, error) {
	if !s.cfg.Enabled() {
		return nil, ErrAuthDisabled
	}
	if username != s.cfg.Username {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	token, exp, err := s.Issue(username)
	if err != nil {
		return nil, err
	}
	logger.Info("login.ok", "username", username)
	return &model.LoginResponse{Token: token, ExpiresAt: exp}, nil
}

// Issue signs a token for subject valid for the configured number of days.
func (s *AuthService) Issue(subject string) (string, int64, error) {
	if err := s.cfg.Validate(); err != nil {
		return "", 0, err
	}
	days := s.cfg.TokenTTLDays
	if days <= 0 {
		days = 7
	}
	exp := s.now().Add(time.Duration(days) * 24 * time.Hour).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": exp,
	}).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return token, exp, nil
}
