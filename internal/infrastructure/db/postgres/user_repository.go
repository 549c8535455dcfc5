package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/acctbase/account-service/internal/core/domain"
	"github.com/acctbase/account-service/internal/core/ports"
)

const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

// UserRepository is the bun-backed implementation of
// ports.UserRepository against the users table.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64          `bun:"id,pk,autoincrement"`
	Email        string         `bun:"email,notnull"`
	Username     string         `bun:"username,notnull"`
	PasswordHash string         `bun:"password_hash,notnull"`
	FullName     sql.NullString `bun:"full_name"`
	IsSuperuser  bool           `bun:"is_superuser,notnull,default:false"`
	IsActive     bool           `bun:"is_active,notnull,default:true"`
	CreatedAt    time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := &userRow{
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FullName:     toNullString(user.FullName),
		IsSuperuser:  user.IsSuperuser,
		IsActive:     user.IsActive,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return rowToUser(row), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "u.id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "lower(u.email) = lower(?)", email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "u.username = ?", username)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := new(userRow)
	err := r.db.NewSelect().
		Model(row).
		Where(where, arg).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	var rows []userRow
	err := r.db.NewSelect().
		Model(&rows).
		Order("u.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rowToUser(&rows[i]))
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	row := new(userRow)
	q := r.db.NewUpdate().
		Model(row).
		Set("updated_at = now()").
		Where("u.id = ?", id).
		Returning("*")

	if patch.Email != nil {
		q = q.Set("email = ?", *patch.Email)
	}
	if patch.Username != nil {
		q = q.Set("username = ?", *patch.Username)
	}
	if patch.FullName != nil {
		q = q.Set("full_name = ?", toNullString(*patch.FullName))
	}
	if patch.PasswordHash != nil {
		q = q.Set("password_hash = ?", *patch.PasswordHash)
	}
	if patch.IsActive != nil {
		q = q.Set("is_active = ?", *patch.IsActive)
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return rowToUser(row), nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*userRow)(nil)).
		Where("u.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// mapUniqueViolation translates a Postgres unique-constraint failure
// into the matching domain conflict error, or nil when err is
// something else.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case usernameConstraint:
		return domain.ErrUsernameTaken
	default:
		// users_email_key, or an unnamed lower(email) index
		return domain.ErrEmailTaken
	}
}

func rowToUser(row *userRow) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Email:        row.Email,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		FullName:     row.FullName.String,
		IsSuperuser:  row.IsSuperuser,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
