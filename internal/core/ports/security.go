package ports

import "github.com/postboard/postboard-api/internal/core/domain"

// PasswordHasher hashes and verifies secrets with a salted one-way algorithm.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports a match. Unparseable hashes yield false.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints access tokens for verified accounts.
type TokenIssuer interface {
	Issue(account *domain.Account) (*domain.AccessToken, error)
}

// TokenVerifier checks signature, issuer and expiry and returns the subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}
