package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/pkg/axon"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestAuthenticator(t *testing.T) (*Authenticator, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a, err := New(Config{Secret: "test-secret", AccessTTL: time.Hour, RefreshTTL: 10 * time.Minute, Now: c.Now})
	require.NoError(t, err)
	return a, c
}

var ana = axon.Identity{SubjectID: "8d1c7f4e-0000-4000-8000-000000000001", Email: "ana@example.com", Role: "DEFAULT"}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{Secret: "  "})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerify_RoundTrip(t *testing.T) {
	a, c := newTestAuthenticator(t)

	token, err := a.Issue(ana)
	require.NoError(t, err)

	identity := a.Verify("Bearer " + token)
	require.NotNil(t, identity)
	assert.Equal(t, ana.SubjectID, identity.SubjectID)
	assert.Equal(t, ana.Email, identity.Email)
	assert.Equal(t, axon.Role("DEFAULT"), identity.Role)
	assert.WithinDuration(t, c.now, identity.IssuedAt, 0)
	assert.WithinDuration(t, c.now.Add(time.Hour), identity.ExpiresAt, 0)
}

func TestVerify_RejectsBadHeaders(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	token, err := a.Issue(ana)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty", header: ""},
		{name: "wrong scheme", header: "Token " + token},
		{name: "lower case prefix", header: "bearer " + token},
		{name: "no space", header: "Bearer" + token},
		{name: "prefix only", header: "Bearer "},
		{name: "garbage", header: "Bearer abc123"},
		{name: "tampered", header: "Bearer " + token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, a.Verify(tt.header))
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	a, c := newTestAuthenticator(t)
	token, err := a.Issue(ana)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Hour)
	assert.Nil(t, a.Verify("Bearer "+token))
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	other, err := New(Config{Secret: "another-secret"})
	require.NoError(t, err)

	token, err := other.Issue(ana)
	require.NoError(t, err)
	assert.Nil(t, a.Verify("Bearer "+token))
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	claims := Claims{UserID: ana.SubjectID, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Nil(t, a.Verify("Bearer "+token))
}

func TestRefreshTokens(t *testing.T) {
	a, c := newTestAuthenticator(t)

	refresh, err := a.IssueShortLived(ana)
	require.NoError(t, err)

	assert.Nil(t, a.Verify("Bearer "+refresh), "refresh tokens are not access tokens")

	identity, err := a.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, ana.SubjectID, identity.SubjectID)

	access, err := a.Issue(ana)
	require.NoError(t, err)
	_, err = a.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	c.now = c.now.Add(11 * time.Minute)
	_, err = a.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssue_UniqueTokens(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	first, err := a.IssueShortLived(ana)
	require.NoError(t, err)
	second, err := a.IssueShortLived(ana)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
