package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/auth"
	"github.com/roach88/cuesheet/internal/store"
)

func TestResetPasswordCommand(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	st, err := store.Open(db)
	require.NoError(t, err)
	key, err := auth.NewSessionKey()
	require.NoError(t, err)
	gate, err := auth.New(st, key)
	require.NoError(t, err)
	_, err = gate.EnsureDefaultPassword(ctx)
	require.NoError(t, err)
	require.NoError(t, gate.ChangePassword(ctx, auth.DefaultPassword, "s3cret"))
	require.NoError(t, st.Close())

	out, err := execute(t, "reset-password", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "Password reset to \"admin\".\n", out)

	st, err = store.Open(db)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	gate, err = auth.New(st, key)
	require.NoError(t, err)
	assert.NoError(t, gate.CheckPassword(ctx, auth.DefaultPassword))
	assert.Error(t, gate.CheckPassword(ctx, "s3cret"))
}
