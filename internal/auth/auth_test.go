package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/testutil"
)

func newTestGate(t *testing.T, opts ...Option) (*Gate, Settings) {
	t.Helper()
	st := testutil.NewStore(t)
	key, err := NewSessionKey()
	require.NoError(t, err)
	g, err := New(st, key, opts...)
	require.NoError(t, err)
	return g, st
}

func TestNew_RejectsShortKey(t *testing.T) {
	_, err := New(testutil.NewStore(t), []byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestNewSessionKey(t *testing.T) {
	a, err := NewSessionKey()
	require.NoError(t, err)
	b, err := NewSessionKey()
	require.NoError(t, err)

	assert.Len(t, a, SessionKeySize)
	assert.NotEqual(t, a, b)
}

func TestEnsureDefaultPassword(t *testing.T) {
	ctx := context.Background()
	g, st := newTestGate(t)

	seeded, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	hash, ok, err := st.Setting(ctx, show.SettingPasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, DefaultPassword, hash, "only the hash is stored")

	seeded, err = g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	require.NoError(t, g.CheckPassword(ctx, DefaultPassword))
}

func TestCheckPassword_NoHash(t *testing.T) {
	g, _ := newTestGate(t)
	err := g.CheckPassword(context.Background(), "anything")
	assert.ErrorIs(t, err, show.ErrUnauthorized)
}

func TestLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t)
	_, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)

	_, _, err = g.Login(ctx, "wrong")
	assert.ErrorIs(t, err, show.ErrUnauthorized)

	token, expires, err := g.Login(ctx, DefaultPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), expires, time.Minute)

	require.NoError(t, g.Verify(token))
}

func TestVerify_Rejects(t *testing.T) {
	ctx := context.Background()
	g, st := newTestGate(t)
	_, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)
	token, _, err := g.Login(ctx, DefaultPassword)
	require.NoError(t, err)

	otherKey, err := NewSessionKey()
	require.NoError(t, err)
	other, err := New(st, otherKey)
	require.NoError(t, err)
	foreign, _, err := other.Login(ctx, DefaultPassword)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"iss":"cuesheet","sub":"operator","exp":9999999999}`))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered payload", parts[0] + "." + forged + "." + parts[2]},
		{"signed by another process", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, g.Verify(tt.token), show.ErrUnauthorized)
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	g, _ := newTestGate(t, WithSessionTTL(time.Hour), WithClock(func() time.Time { return now }))
	_, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)

	token, expires, err := g.Login(ctx, DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)
	require.NoError(t, g.Verify(token))

	now = now.Add(2 * time.Hour)
	err = g.Verify(token)
	require.ErrorIs(t, err, show.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expired")
}

func TestPageLocks(t *testing.T) {
	ctx := context.Background()
	g, st := newTestGate(t)
	_, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)

	locked, err := g.PageLocked(ctx, PageAdmin)
	require.NoError(t, err)
	assert.True(t, locked, "admin is always locked")

	locked, err = g.PageLocked(ctx, PageCamera)
	require.NoError(t, err)
	assert.False(t, locked)
	require.NoError(t, g.Authorize(ctx, PageCamera, ""))

	require.NoError(t, st.SetSetting(ctx, show.SettingLockPrefix+PageCamera, "TRUE"))
	locked, err = g.PageLocked(ctx, PageCamera)
	require.NoError(t, err)
	assert.True(t, locked)

	assert.ErrorIs(t, g.Authorize(ctx, PageCamera, ""), show.ErrUnauthorized)
	assert.ErrorIs(t, g.Authorize(ctx, PageAdmin, ""), show.ErrUnauthorized)

	token, _, err := g.Login(ctx, DefaultPassword)
	require.NoError(t, err)
	assert.NoError(t, g.Authorize(ctx, PageCamera, token))

	require.NoError(t, st.SetSetting(ctx, show.SettingLockPrefix+PageCamera, "false"))
	assert.NoError(t, g.Authorize(ctx, PageCamera, ""))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t)
	_, err := g.EnsureDefaultPassword(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, g.ChangePassword(ctx, "wrong", "next"), show.ErrUnauthorized)
	assert.ErrorIs(t, g.ChangePassword(ctx, DefaultPassword, "  "), show.ErrValidation)

	require.NoError(t, g.ChangePassword(ctx, DefaultPassword, "s3cret"))
	assert.ErrorIs(t, g.CheckPassword(ctx, DefaultPassword), show.ErrUnauthorized)
	assert.NoError(t, g.CheckPassword(ctx, "s3cret"))

	require.NoError(t, g.ResetPassword(ctx))
	assert.NoError(t, g.CheckPassword(ctx, DefaultPassword))
	assert.ErrorIs(t, g.CheckPassword(ctx, "s3cret"), show.ErrUnauthorized)
}
