package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/postboard/postboard-api/internal/core/domain"
)

const (
	// Issuer is the fixed iss claim of every access token.
	Issuer = "postboard-api"
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 300 * time.Second

	minSecretLength = 32
)

// JWTIssuer signs and verifies HS256 access tokens.
type JWTIssuer struct {
	key []byte
	now func() time.Time
}

// Option customizes a JWTIssuer.
type Option func(*JWTIssuer)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *JWTIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewJWTIssuer returns an issuer keyed by secret. A short or empty secret is
// a configuration fault.
func NewJWTIssuer(secret string, opts ...Option) (*JWTIssuer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: signing secret must be at least %d bytes", domain.ErrConfiguration, minSecretLength)
	}
	i := &JWTIssuer{key: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a token whose subject is the account id and which expires
// AccessTokenTTL after issuance.
func (i *JWTIssuer) Issue(account *domain.Account) (*domain.AccessToken, error) {
	if account == nil || account.ID == "" {
		return nil, errors.New("issue token: account id is required")
	}

	// Claims carry whole seconds; truncating keeps exp - iat exact.
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(AccessTokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   account.ID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.AccessToken{
		Value:     signed,
		Subject:   account.ID,
		Issuer:    Issuer,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry, and returns the subject.
func (i *JWTIssuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", domain.ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
