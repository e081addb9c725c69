// Package security implements the password hasher and the access token
// issuer used by the core services.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// preHashKey tags the HMAC applied to every password before bcrypt, which
// ignores (newer releases reject) input past 72 bytes. Changing it
// invalidates every stored hash.
var preHashKey = []byte("postboard-api/password/v1")

// BcryptHasher hashes passwords with bcrypt. Salt and cost are embedded in
// each hash, so hashes made at an older cost keep verifying.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is zero.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d outside [%d, %d]", domain.ErrConfiguration, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(bcryptInput(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(plaintext)) == nil
}

// bcryptInput maps any plaintext to a fixed 44-byte bcrypt input. Every
// length goes through the same transform, so no plaintext can stand in for
// the digest of another.
func bcryptInput(plaintext string) []byte {
	mac := hmac.New(sha256.New, preHashKey)
	mac.Write([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
