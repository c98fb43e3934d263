package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	saltLength  = 16
	tokenLength = 32

	// isoMillis matches the millisecond ISO-8601 UTC layout used for the
	// timestamp component of the digest input.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// ErrEmptyTokenInput is returned when one of the correlation ids is empty.
var ErrEmptyTokenInput = errors.New("token input ids must not be empty")

// TokenIssuer produces opaque bearer tokens from two correlation ids, a server
// secret, a random salt and the current time. The token itself is the
// credential; nothing about its derivation is stored.
type TokenIssuer struct {
	secret string
	random io.Reader
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer bound to the server secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		random: rand.Reader,
		now:    time.Now,
	}
}

// Issue returns a 32 hex character token derived from id1 and id2.
func (i *TokenIssuer) Issue(id1, id2 string) (string, error) {
	if id1 == "" || id2 == "" {
		return "", ErrEmptyTokenInput
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(i.random, salt); err != nil {
		return "", fmt.Errorf("failed to generate token salt: %w", err)
	}

	input := fmt.Sprintf("%s-%s-%s-%s-%s",
		id1,
		id2,
		i.secret,
		hex.EncodeToString(salt),
		i.now().UTC().Format(isoMillis),
	)

	sum := sha256.Sum256([]byte(input))

	return hex.EncodeToString(sum[:])[:tokenLength], nil
}
