package projector_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/playback"
	"github.com/roach88/cuesheet/internal/projector"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
	"github.com/roach88/cuesheet/internal/testutil"
)

// window builds cues with sequence numbers from..from+n-1; assigned lists
// the sequence numbers that carry an assignment.
func window(from, n int, assigned ...int) []show.CameraCue {
	has := make(map[int]bool)
	for _, s := range assigned {
		has[s] = true
	}
	out := make([]show.CameraCue, n)
	for i := range out {
		seq := from + i
		out[i] = show.CameraCue{CueID: int64(100 + seq), SequenceNumber: seq}
		if has[seq] {
			out[i].Assignment = &show.CameraAssignment{CueID: int64(100 + seq), CameraNumber: 3, Subject: "S"}
		}
	}
	return out
}

func flagged(cues []show.CameraCue, pick func(show.CameraCue) bool) []int {
	var seqs []int
	for _, c := range cues {
		if pick(c) {
			seqs = append(seqs, c.SequenceNumber)
		}
	}
	return seqs
}

func TestAnnotate_PreviewWithinLookahead(t *testing.T) {
	got := projector.Annotate(window(5, 6, 5, 7), 105, 5, 2)

	assert.Equal(t, []int{5}, flagged(got, func(c show.CameraCue) bool { return c.IsCurrent }))
	assert.Equal(t, []int{7}, flagged(got, func(c show.CameraCue) bool { return c.IsNextShot }))
	assert.Equal(t, []int{7}, flagged(got, func(c show.CameraCue) bool { return c.IsPreview }))
	assert.Equal(t, []int{7}, flagged(got, func(c show.CameraCue) bool { return c.IsLastShot }))
}

func TestAnnotate_NextShotBeyondLookaheadIsNotPreview(t *testing.T) {
	got := projector.Annotate(window(5, 6, 5, 9), 105, 5, 2)

	assert.Equal(t, []int{9}, flagged(got, func(c show.CameraCue) bool { return c.IsNextShot }))
	assert.Empty(t, flagged(got, func(c show.CameraCue) bool { return c.IsPreview }))
}

func TestAnnotate_LastShotIsFurthestAssignedInWindow(t *testing.T) {
	got := projector.Annotate(window(1, 10, 2, 4, 8), 101, 1, 2)

	assert.Equal(t, []int{8}, flagged(got, func(c show.CameraCue) bool { return c.IsLastShot }))
	assert.Equal(t, []int{2}, flagged(got, func(c show.CameraCue) bool { return c.IsNextShot }))
	assert.Equal(t, []int{2}, flagged(got, func(c show.CameraCue) bool { return c.IsPreview }))
}

func TestAnnotate_OnlyCurrentAssigned(t *testing.T) {
	got := projector.Annotate(window(3, 4, 3), 103, 3, 2)

	for _, c := range got {
		assert.False(t, c.IsLastShot || c.IsNextShot || c.IsPreview, "seq %d", c.SequenceNumber)
	}
	assert.True(t, got[0].IsCurrent)
	assert.True(t, got[0].Assigned())
}

func TestAnnotate_ClearsStaleFlags(t *testing.T) {
	w := window(1, 3)
	for i := range w {
		w[i].IsPreview, w[i].IsLastShot, w[i].IsNextShot = true, true, true
	}
	got := projector.Annotate(w, 101, 1, 2)

	for _, c := range got {
		assert.False(t, c.IsLastShot || c.IsNextShot || c.IsPreview)
	}
}

func TestAnnotate_Empty(t *testing.T) {
	assert.Empty(t, projector.Annotate(nil, 1, 1, 2))
}

type projFixture struct {
	store *store.Store
	play  *playback.Machine
	proj  *projector.Projector
	ids   []int64
}

func newProjFixture(t *testing.T, n int, cfg projector.Config) *projFixture {
	t.Helper()
	st := testutil.NewStore(t)
	seq := sequencer.New(st)
	f := &projFixture{store: st, play: playback.New(st), proj: projector.New(st, cfg)}
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		id, err := seq.Insert(ctx, show.DefaultScriptID, sequencer.AtEnd(), show.CueContent{LineText: fmt.Sprintf("line %d", i)})
		require.NoError(t, err)
		f.ids = append(f.ids, id)
	}
	return f
}

func (f *projFixture) assign(t *testing.T, camera int, seqs ...int) {
	t.Helper()
	ctx := context.Background()
	err := f.store.Update(ctx, func(tx *store.Tx) error {
		for _, s := range seqs {
			if err := tx.UpsertAssignment(ctx, f.ids[s-1], camera, show.Shot{Subject: fmt.Sprintf("shot %d", s)}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestProject_NoCurrentCue(t *testing.T) {
	f := newProjFixture(t, 3, projector.DefaultConfig())

	view, err := f.proj.Project(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, view.Cues)
	assert.NotNil(t, view.Cues)
	assert.Equal(t, show.DefaultDisplayName, view.ScriptName)
}

func TestProject_WindowStartsAtCurrent(t *testing.T) {
	f := newProjFixture(t, 14, projector.DefaultConfig())
	f.assign(t, 3, 5, 7, 12)
	f.assign(t, 1, 6)
	ctx := context.Background()

	_, err := f.play.Goto(ctx, 3)
	require.NoError(t, err)

	view, err := f.proj.Project(ctx, 3)
	require.NoError(t, err)
	require.Len(t, view.Cues, 10)
	assert.Equal(t, 3, view.Cues[0].SequenceNumber)
	assert.Equal(t, 12, view.Cues[9].SequenceNumber)
	assert.True(t, view.Cues[0].IsCurrent)

	assert.Equal(t, []int{5}, flagged(view.Cues, func(c show.CameraCue) bool { return c.IsNextShot }))
	assert.Equal(t, []int{5}, flagged(view.Cues, func(c show.CameraCue) bool { return c.IsPreview }))
	assert.Equal(t, []int{12}, flagged(view.Cues, func(c show.CameraCue) bool { return c.IsLastShot }))

	// Unassigned cues stay in the view; camera 1's shot is not camera 3's.
	assert.False(t, view.Cues[3].Assigned())
	assert.Equal(t, 6, view.Cues[3].SequenceNumber)
}

func TestProject_ConfigurableWindow(t *testing.T) {
	f := newProjFixture(t, 6, projector.Config{Window: 3, PreviewLookahead: 0})
	f.assign(t, 2, 2)
	ctx := context.Background()

	_, err := f.play.Reset(ctx)
	require.NoError(t, err)

	view, err := f.proj.Project(ctx, 2)
	require.NoError(t, err)
	require.Len(t, view.Cues, 3)
	assert.True(t, view.Cues[1].IsNextShot)
	assert.False(t, view.Cues[1].IsPreview, "lookahead 0 never previews")
}

func TestProject_RejectsNonPositiveCamera(t *testing.T) {
	f := newProjFixture(t, 1, projector.DefaultConfig())

	_, err := f.proj.Project(context.Background(), 0)
	assert.ErrorIs(t, err, show.ErrValidation)
}

func TestCameras_Counts(t *testing.T) {
	f := newProjFixture(t, 4, projector.DefaultConfig())
	f.assign(t, 2, 1, 2, 3)
	f.assign(t, 1, 4)

	counts, err := f.proj.Cameras(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []show.CameraCount{
		{CameraNumber: 1, AssignmentCount: 1},
		{CameraNumber: 2, AssignmentCount: 3},
	}, counts)
}

func TestNew_Defaults(t *testing.T) {
	p := projector.New(nil, projector.Config{PreviewLookahead: -1})
	assert.Equal(t, projector.DefaultConfig(), p.Config())
}
