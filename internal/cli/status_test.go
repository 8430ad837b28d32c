package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/oscctl"
	"github.com/roach88/cuesheet/internal/store"
)

func TestStatusCommand_Empty(t *testing.T) {
	out, err := execute(t, "status", "--db", tempDB(t))
	require.NoError(t, err)
	assert.Equal(t, "Script:  Camera CueSheet\nCues:    0\nCurrent: none\n", out)
}

func TestStatusCommand_JSON(t *testing.T) {
	db := tempDB(t)
	importRundown(t, db)

	out, err := execute(t, "status", "--format", "json", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ScriptName string `json:"script_name"`
			Cues       int    `json:"cues"`
			Current    struct {
				SequenceNumber int    `json:"sequence_number"`
				LineText       string `json:"line_text"`
			} `json:"current"`
			Cameras []struct {
				CameraNumber    int `json:"camera_number"`
				AssignmentCount int `json:"assignment_count"`
			} `json:"cameras"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Camera CueSheet", resp.Data.ScriptName)
	assert.Equal(t, 3, resp.Data.Cues)
	assert.Equal(t, 1, resp.Data.Current.SequenceNumber)
	assert.Equal(t, "Lights up", resp.Data.Current.LineText)
	require.Len(t, resp.Data.Cameras, 2)
	assert.Equal(t, 2, resp.Data.Cameras[0].AssignmentCount)
}

func TestGotoCommand(t *testing.T) {
	db := tempDB(t)
	importRundown(t, db)

	out, err := execute(t, "goto", "--db", db, "3")
	require.NoError(t, err)
	assert.Equal(t, "Current: #3 Award\n", out)

	out, err = execute(t, "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Current: #3 Award\n")
}

func TestGotoCommand_MissingCue(t *testing.T) {
	db := tempDB(t)
	importRundown(t, db)

	out, err := execute(t, "goto", "--db", db, "9")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NOT_FOUND]")

	// The pointer stays where it was.
	out, err = execute(t, "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Current: #1 Lights up\n")
}

func TestGotoCommand_InvalidNumber(t *testing.T) {
	for _, arg := range []string{"two", "0", "-1"} {
		t.Run(arg, func(t *testing.T) {
			_, err := execute(t, "goto", "--db", tempDB(t), "--", arg)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "invalid cue number")
		})
	}
}

func TestGotoCommand_OSC(t *testing.T) {
	db := tempDB(t)
	importRundown(t, db)

	st, err := store.Open(db)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := control.New(st, control.WithLogger(quiet))

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = oscctl.New(ctrl, oscctl.WithLogger(quiet)).Serve(ctx, conn)
	}()

	addr := conn.LocalAddr().String()
	out, err := execute(t, "goto", "--osc", addr, "2")
	require.NoError(t, err)
	assert.Equal(t, "Sent goto 2 to "+addr+"\n", out)

	assert.Eventually(t, func() bool {
		state, err := ctrl.State(ctx)
		return err == nil && state.Cue != nil && state.Cue.SequenceNumber == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGotoCommand_InvalidOSCAddress(t *testing.T) {
	_, err := execute(t, "goto", "--osc", "localhost", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid OSC address")
}
