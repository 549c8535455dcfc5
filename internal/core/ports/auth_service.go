package ports

import (
	"context"

	"github.com/acctbase/account-service/internal/core/domain"
)

// LoginInput carries the credentials presented at /api/auth/login.
// RemoteIP feeds the per-source rate limiter.
type LoginInput struct {
	Email    string
	Password string
	RemoteIP string
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// LoginLimiter throttles credential checks per source before any
// password comparison happens. Reset clears the counter after a
// successful login so legitimate users never exhaust their own window.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
