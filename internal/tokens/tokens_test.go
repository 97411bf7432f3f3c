package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T, secret string, ttl time.Duration) *Issuer {
	t.Helper()
	i, err := New(Config{Secret: []byte(secret), TTL: ttl, Issuer: "file_drive", Audience: "file_drive"})
	require.NoError(t, err)
	return i
}

func TestNew_ConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := New(Config{TTL: time.Minute})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = New(Config{Secret: []byte("s")})
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()
	i := newTestIssuer(t, "access-secret", 15*time.Minute)
	subject := uuid.NewString()

	token, exp, err := i.Issue(subject)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 2*time.Second)

	got, err := i.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestIssuer_TokensAreDistinct(t *testing.T) {
	t.Parallel()
	i := newTestIssuer(t, "refresh-secret", time.Hour)

	a, _, err := i.Issue("user")
	require.NoError(t, err)
	b, _, err := i.Issue("user")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestIssuer_RejectsOtherSecret(t *testing.T) {
	t.Parallel()
	access := newTestIssuer(t, "access-secret", 15*time.Minute)
	refresh := newTestIssuer(t, "refresh-secret", time.Hour)

	token, _, err := refresh.Issue("user")
	require.NoError(t, err)

	_, err = access.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	t.Parallel()
	i := newTestIssuer(t, "access-secret", time.Minute)
	i.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := i.Issue("user")
	require.NoError(t, err)

	i.now = time.Now
	_, err = i.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_RejectsGarbageAndForeignClaims(t *testing.T) {
	t.Parallel()
	i := newTestIssuer(t, "access-secret", time.Minute)

	tests := map[string]string{
		"garbage": "not-a-jwt",
		"empty":   "",
	}

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "file_drive",
		Audience:  jwt.ClaimStrings{"file_drive"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)
	tests["no subject"] = noSub

	otherIss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user",
		Issuer:    "someone-else",
		Audience:  jwt.ClaimStrings{"file_drive"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)
	tests["foreign issuer"] = otherIss

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user",
		Issuer:   "file_drive",
		Audience: jwt.ClaimStrings{"file_drive"},
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)
	tests["no expiry"] = noExp

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user",
		Issuer:    "file_drive",
		Audience:  jwt.ClaimStrings{"file_drive"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)
	tests["wrong alg"] = hs512

	for name, token := range tests {
		_, err := i.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestVerifierFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	var v Verifier = VerifierFunc(func(token string) (string, error) {
		calls++
		if token != "good" {
			return "", ErrInvalidToken
		}
		return "user-1", nil
	})

	sub, err := v.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = v.Verify("bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 2, calls)
}
