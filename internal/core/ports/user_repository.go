package ports

import (
	"context"

	"github.com/acctbase/account-service/internal/core/domain"
)

// UserPatch carries the mutable user columns for a partial update.
// Nil fields are left untouched.
type UserPatch struct {
	Email        *string
	Username     *string
	FullName     *string
	PasswordHash *string
	IsActive     *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.FullName == nil &&
		p.PasswordHash == nil && p.IsActive == nil
}

// UserRepository defines the persistence interface for user accounts.
// Uniqueness violations on email or username surface as
// domain.ErrEmailTaken / domain.ErrUsernameTaken; absent ids as
// domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
