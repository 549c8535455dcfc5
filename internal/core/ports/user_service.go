package ports

import (
	"context"

	"github.com/acctbase/account-service/internal/core/domain"
)

// RegisterInput carries the data needed to create a new account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// UpdateUserInput is the partial-update payload. Nil fields are
// unchanged. The superuser flag is deliberately absent: it cannot be
// set through the API.
type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	FullName *string
	IsActive *bool
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	GetProfile(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput, actor *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64, actor *domain.User) error
}
