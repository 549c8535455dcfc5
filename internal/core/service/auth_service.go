package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/acctbase/account-service/internal/core/domain"
	"github.com/acctbase/account-service/internal/core/ports"
)

// AuthService implements login and token refresh.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenService
	hasher  *PasswordHasher
	limiter ports.LoginLimiter
	logger  zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, hasher *PasswordHasher, limiter ports.LoginLimiter, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, hasher: hasher, limiter: limiter, logger: logger}
}

// Login validates credentials and mints a token pair. Unknown email
// and wrong password produce the same ErrInvalidCredentials so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*domain.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	limiterKey := email + ":" + input.RemoteIP

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, limiterKey)
		if err != nil {
			// Limiter outage must not take logins down with it.
			s.logger.Warn().Err(err).Msg("login limiter unavailable")
		} else if !ok {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	// A successful login clears the attempt counter so a run of valid
	// logins never throttles the account's legitimate owner.
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, limiterKey); err != nil {
			s.logger.Warn().Err(err).Msg("login limiter reset failed")
		}
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("login succeeded")
	return pair, nil
}

// Refresh validates a refresh token and rotates the pair: both a new
// access token and a new refresh token are issued. The subject must
// still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, ports.TokenTypeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidToken
	}

	return s.issuePair(user)
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
