package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned when an OAuth state value cannot be trusted.
var ErrInvalidState = errors.New("invalid oauth state")

// JWTAuthenticator represents a JWT based authenticator.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// GenerateToken generates a JWT token with the given claims and secret.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a JWT token and parses it into the provided claims type.
// The claims parameter should be a pointer to a struct that implements jwt.Claims.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return token, nil
}

// OAuthStateClaims names the user who started an account-link flow. The
// access token stays on the server; the state only carries a keyed
// fingerprint of it, so the state dies with the session that issued it.
type OAuthStateClaims struct {
	TokenFingerprint string `json:"tfp"`
	Provider         string `json:"prv"`
	jwt.RegisteredClaims
}

// LinkState is a verified OAuth state.
type LinkState struct {
	UserID string

	fingerprint string
	secret      string
}

// Matches reports whether accessToken is the token the state was issued for.
func (l *LinkState) Matches(accessToken string) bool {
	want := tokenFingerprint(l.secret, accessToken)
	return subtle.ConstantTimeCompare([]byte(want), []byte(l.fingerprint)) == 1
}

func tokenFingerprint(secret, accessToken string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// StateSigner issues and verifies the opaque OAuth "state" parameter.
type StateSigner struct {
	jwtAuth JWTAuthenticator
	secret  string
	ttl     time.Duration
	now     func() time.Time
}

// NewStateSigner creates a StateSigner. States expire after ttl.
func NewStateSigner(issuer, secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{
		jwtAuth: NewJWTAuthenticator(issuer, issuer),
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Sign binds userID and the fingerprint of accessToken to provider.
func (s *StateSigner) Sign(userID, accessToken, provider string) (string, error) {
	if userID == "" || accessToken == "" || provider == "" {
		return "", ErrInvalidState
	}

	now := s.now()
	claims := OAuthStateClaims{
		TokenFingerprint: tokenFingerprint(s.secret, accessToken),
		Provider:         provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtAuth.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{s.jwtAuth.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return s.jwtAuth.GenerateToken(claims, s.secret)
}

// Verify checks that state was issued for provider and is not expired.
func (s *StateSigner) Verify(state, provider string) (*LinkState, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	var claims OAuthStateClaims
	if _, err := s.jwtAuth.ValidateTokenWithClaims(state, s.secret, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if claims.Provider != provider || claims.Subject == "" || claims.TokenFingerprint == "" {
		return nil, ErrInvalidState
	}

	return &LinkState{
		UserID:      claims.Subject,
		fingerprint: claims.TokenFingerprint,
		secret:      s.secret,
	}, nil
}
