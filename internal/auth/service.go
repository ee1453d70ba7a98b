// Package auth gates the admin API behind a single configured credential.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/auth/jwt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Service checks the admin credential and issues access tokens.
type Service struct {
	username     string
	passwordHash string
	tokenMgr     *jwt.Manager
	logger       zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	Username     string
	PasswordHash string
	TokenConfig  jwt.TokenConfig
}

func NewService(opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		username:     opts.Username,
		passwordHash: opts.PasswordHash,
		tokenMgr:     jwt.NewManager(opts.TokenConfig),
		logger:       logger.With().Str("component", "auth").Logger(),
	}
}

// Login exchanges the admin credential for an access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := VerifyPassword(s.passwordHash, req.Password)
	if !userOK || passErr != nil {
		s.logger.Warn().Str("username", req.Username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokenMgr.GenerateAccessToken(s.username)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", s.username).Msg("admin logged in")
	return &Token{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}
