package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // errors defines the sentinel values and wraps library failures
	"time"   // time utilities for computing expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by DecodeToken.  ErrTokenExpired is reported
// whenever the token's expiry has elapsed, even if the rest of the token is
// well formed and correctly signed.  Every other failure (malformed input,
// signature mismatch, unexpected algorithm, missing subject) collapses into
// ErrTokenInvalid so callers cannot distinguish why a hostile token failed.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// DefaultTTLMin is the access-token lifetime applied when a caller passes a
// zero TTL to EncodeToken.
const DefaultTTLMin = 15

// EncodeToken builds and signs an HS256 JWT carrying the given subject.
// It takes the subject (a user email), the signing secret, and a TTL in
// minutes.  A zero TTL falls back to DefaultTTLMin; a negative TTL produces
// an already-expired token, which is occasionally useful in tests.  The JWT
// includes standard claims: subject (sub), expiration (exp) and issued at
// (iat).  Access and refresh tokens are structurally identical and differ
// only in which secret signs them and how long they live.
func EncodeToken(subject, secret string, ttlMin int) (string, error) {
	if ttlMin == 0 {
		ttlMin = DefaultTTLMin
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// DecodeToken parses and verifies a token against the given secret and
// returns its subject.  The signing method is pinned to HMAC; tokens signed
// with any other algorithm are rejected.  Expired tokens yield
// ErrTokenExpired, everything else ErrTokenInvalid.
func DecodeToken(token, secret string) (string, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens using a different signing algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		// Expiry takes precedence: a well-signed token past its exp claim
		// must be reported as expired, not as a signature failure.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !tok.Valid {
		return "", ErrTokenInvalid
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}
