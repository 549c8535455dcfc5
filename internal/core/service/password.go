package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with the default cost. Hashes embed a
// random salt, so equal passwords produce distinct hashes. bcrypt
// rejects plaintext over 72 bytes; request validation enforces that
// bound so Hash never sees longer input.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hash input
// yields false, never an error or panic.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
