package domain

import "time"

// AccessToken is a signed credential asserting an account id. It is never persisted.
type AccessToken struct {
	Value     string
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn is the token lifetime measured from issuance.
func (t AccessToken) ExpiresIn() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}
