// Package auth holds the bearer token primitives for the HTTP transport:
// bcrypt-hashed static API keys and HMAC-signed JWTs.
// This is a leaf package with no domain dependencies.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ===== CONSTANTS =====

// BCryptCost is the work factor for API key hashes.
const BCryptCost = 12

// DefaultTokenTTL is used when IssueToken gets a non-positive ttl.
const DefaultTokenTTL = 24 * time.Hour

// Issuer is written to and required in every token.
const Issuer = "mcp-command-line"

var (
	ErrSecretRequired  = errors.New("jwt secret is required")
	ErrSubjectRequired = errors.New("token subject is required")
	ErrTokenEmpty      = errors.New("token is empty")
	ErrTokenInvalid    = errors.New("invalid token")
)

// ===== BCRYPT FUNCTIONS =====

// HashToken hashes a static API key for storage in MCP_API_KEY_HASHES.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken reports whether token matches hash. Malformed hashes never match.
func VerifyToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// ===== JWT FUNCTIONS =====

// Claims are the JWT claims accepted by the HTTP transport.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject that expires after ttl.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretRequired
	}
	if subject == "" {
		return "", ErrSubjectRequired
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token signed with secret and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrSecretRequired
	}
	if tokenString == "" {
		return nil, ErrTokenEmpty
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC; rejects algorithm substitution.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
