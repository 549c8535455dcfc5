package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/acctbase/account-service/internal/core/domain"
	"github.com/acctbase/account-service/internal/core/ports"
)

// UserService orchestrates uniqueness checks, password hashing and
// repository calls for account CRUD.
type UserService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher *PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

// Register creates a new account. Email is stored lowercased so
// uniqueness is case-insensitive; usernames are deliberately
// case-sensitive, matching the users_username_key index. The database
// unique constraints are the final arbiter under concurrent duplicate
// registration.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	}
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of accounts. Superuser only.
func (s *UserService) List(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error) {
	if !actor.IsSuperuser {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx, offset, limit)
}

// Update applies a partial update. Allowed for the owner and for
// superusers; a password change is re-hashed before storage. The
// superuser flag is not reachable from this path.
func (s *UserService) Update(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
	if !actor.CanModify(id) {
		return nil, domain.ErrForbidden
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := ports.UserPatch{
		FullName: input.FullName,
		IsActive: input.IsActive,
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != current.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, domain.ErrEmailTaken
			}
			patch.Email = &email
		}
	}

	if input.Username != nil && *input.Username != current.Username {
		if _, err := s.repo.FindByUsername(ctx, *input.Username); err == nil {
			return nil, domain.ErrUsernameTaken
		}
		patch.Username = input.Username
	}

	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("user updated")
	return updated, nil
}

// Delete removes an account permanently. Superuser only, including for
// the actor's own account.
func (s *UserService) Delete(ctx context.Context, id int64, actor *domain.User) error {
	if !actor.IsSuperuser {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("user deleted")
	return nil
}
