package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogql/internal/auth"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestTokenManager(clock *fakeClock) *auth.TokenManager {
	m := auth.NewTokenManager("test-secret", auth.DefaultExpiration, auth.DefaultRefreshExpiration)
	m.NowFunc = clock.Now
	return m
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	token, payload, err := m.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, clock.now.Unix(), payload.OrigIat)
	assert.Equal(t, clock.now.Add(auth.DefaultExpiration).Unix(), payload.Exp)

	verified, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, payload, verified)
}

func TestTokenManager_VerifyExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	token, _, err := m.Issue("alice")
	require.NoError(t, err)

	clock.Advance(auth.DefaultExpiration + time.Second)
	payload, err := m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, payload)
}

func TestTokenManager_VerifyRejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	other := auth.NewTokenManager("other-secret", 0, 0)
	other.NowFunc = clock.Now
	foreignToken, _, err := other.Issue("alice")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "alice",
		"exp":      clock.now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": foreignToken,
		"alg none":     noneToken,
	} {
		t.Run(name, func(t *testing.T) {
			payload, err := m.Verify(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.Nil(t, payload)
		})
	}
}

func TestTokenManager_VerifyRequiresUsername(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": clock.now.Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Refresh(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	token, first, err := m.Issue("alice")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	refreshed, second, err := m.Refresh(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, refreshed)
	assert.Equal(t, "alice", second.Username)
	assert.Equal(t, first.OrigIat, second.OrigIat)
	assert.Equal(t, clock.now.Add(auth.DefaultExpiration).Unix(), second.Exp)
	assert.Equal(t, first.OrigIat+int64((7*24*time.Hour).Seconds()), m.RefreshExpiresIn(second))

	verified, err := m.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, second, verified)
}

func TestTokenManager_RefreshChainExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := auth.NewTokenManager("test-secret", 2*time.Hour, 3*time.Hour)
	m.NowFunc = clock.Now

	token, _, err := m.Issue("alice")
	require.NoError(t, err)

	clock.Advance(time.Hour + 30*time.Minute)
	token, _, err = m.Refresh(token)
	require.NoError(t, err)

	clock.Advance(time.Hour + 31*time.Minute)
	_, _, err = m.Refresh(token)
	assert.ErrorIs(t, err, auth.ErrRefreshExpired)
}

func TestTokenManager_RefreshExpiredToken(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestTokenManager(clock)

	token, _, err := m.Issue("alice")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, _, err = m.Refresh(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
