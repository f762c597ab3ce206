package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-32-chars-min!!!")

// ===== BCRYPT TESTS =====

func TestHashToken_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("s3cret-key")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-key", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "unexpected hash format %q", hash)
	assert.True(t, VerifyToken(hash, "s3cret-key"))
	assert.False(t, VerifyToken(hash, "other-key"))
}

func TestHashToken_SaltedPerCall(t *testing.T) {
	t.Parallel()

	a, err := HashToken("same")
	require.NoError(t, err)
	b, err := HashToken("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyToken_MalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyToken("not-a-bcrypt-hash", "anything"))
	assert.False(t, VerifyToken("", ""))
}

// ===== JWT TESTS =====

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()

	token, err := IssueToken(testSecret, "ci-bot", time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueToken_DefaultTTL(t *testing.T) {
	t.Parallel()

	token, err := IssueToken(testSecret, "ci-bot", 0)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueToken_RequiresSecretAndSubject(t *testing.T) {
	t.Parallel()

	_, err := IssueToken(nil, "x", time.Hour)
	assert.ErrorIs(t, err, ErrSecretRequired)

	_, err = IssueToken(testSecret, "", time.Hour)
	assert.ErrorIs(t, err, ErrSubjectRequired)
}

func TestParseToken_Rejections(t *testing.T) {
	t.Parallel()

	good, err := IssueToken(testSecret, "x", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, "")
	assert.ErrorIs(t, err, ErrTokenEmpty)

	_, err = ParseToken([]byte("another-secret-entirely-32chars!"), good)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseToken(nil, good)
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   "x",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseToken_WrongIssuer(t *testing.T) {
	t.Parallel()

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseToken_AlgNoneRejected(t *testing.T) {
	t.Parallel()

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
