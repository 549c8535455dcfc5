package domain

import (
	"errors"
	"time"
)

const (
	RoleSuperuser = "superuser"
	RoleUser      = "user"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrUsernameTaken = errors.New("username already taken")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrInactiveUser = errors.New("inactive user")
var ErrForbidden = errors.New("access forbidden")
var ErrTooManyAttempts = errors.New("too many login attempts")

// User models one account. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role maps the superuser flag onto the role claim carried in tokens.
func (u *User) Role() string {
	if u.IsSuperuser {
		return RoleSuperuser
	}
	return RoleUser
}

// CanModify reports whether u may update the account identified by id.
func (u *User) CanModify(id int64) bool {
	return u.IsSuperuser || u.ID == id
}

// TokenPair is the credential set returned by login and refresh.
// Never persisted; tokens are invalidated only by expiry.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
