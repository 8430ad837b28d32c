package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
)

func TestServeCommand_StopsOnCancel(t *testing.T) {
	db := tempDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := executeContext(t, ctx, "serve", "--db", db, "--addr", "127.0.0.1:0", "--osc", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Serving on 127.0.0.1:0.")

	// Startup seeded the default password.
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	_, ok, err := st.Setting(context.Background(), show.SettingPasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServeCommand_ListenError(t *testing.T) {
	_, err := execute(t, "serve", "--db", tempDB(t), "--addr", "127.0.0.1:notaport")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "server error")
}
