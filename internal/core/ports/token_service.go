package ports

import "github.com/acctbase/account-service/internal/core/domain"

// TokenType discriminates access from refresh tokens so one can never
// stand in for the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims is the verified payload of a token.
type TokenClaims struct {
	UserID int64
	Role   string
}

// TokenService issues and verifies the signed, expiring tokens that
// make up a domain.TokenPair.
type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	Verify(token string, expected TokenType) (*TokenClaims, error)
}
