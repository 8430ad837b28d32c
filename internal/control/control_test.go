package control_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cuesheet/internal/control"
	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/sequencer"
	"github.com/roach88/cuesheet/internal/show"
	"github.com/roach88/cuesheet/internal/store"
	"github.com/roach88/cuesheet/internal/testutil"
)

func newController(t *testing.T) (*control.Controller, *store.Store, *testutil.RecordingSink) {
	t.Helper()
	st := testutil.NewStore(t)
	c := control.New(st, control.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	sink := testutil.NewRecordingSink("watcher")
	require.NoError(t, c.Hub().Register(context.Background(), sink))
	sink.Reset()
	return c, st, sink
}

func seedCues(t *testing.T, c *control.Controller, texts ...string) []int64 {
	t.Helper()
	ctx := context.Background()
	var ids []int64
	for _, text := range texts {
		id, err := c.InsertCue(ctx, sequencer.AtEnd(), show.CueContent{LineText: text})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestInsertCue_BroadcastsCreated(t *testing.T) {
	c, _, sink := newController(t)

	ids := seedCues(t, c, "A")

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, hub.TypeCueCreated, last.Type)
	assert.Equal(t, ids[0], last.CueID)
}

func TestInsertCue_FailurePublishesNothing(t *testing.T) {
	c, _, sink := newController(t)

	_, err := c.InsertCue(context.Background(), sequencer.BeforeCue(77), show.CueContent{LineText: "x"})
	assert.ErrorIs(t, err, show.ErrNotFound)
	assert.Empty(t, sink.Events())
}

func TestPlayback_BroadcastsOnlyWhenMoved(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "A", "B")
	sink.Reset()

	tr, err := c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[0], tr.CueID())

	_, err = c.Advance(ctx)
	require.NoError(t, err)

	tr, err = c.Advance(ctx) // at end
	require.NoError(t, err)
	assert.False(t, tr.Moved)

	_, err = c.Goto(ctx, 9)
	assert.ErrorIs(t, err, show.ErrNotFound)

	assert.Equal(t, []hub.EventType{hub.TypeStateUpdate, hub.TypeStateUpdate}, sink.Types())
	last, _ := sink.Last()
	require.NotNil(t, last.State)
	assert.Equal(t, ids[1], *last.State.CurrentCueID)
}

func TestDeleteCue_CurrentCueAlsoSendsState(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "A", "B", "C")
	_, err := c.Goto(ctx, 2)
	require.NoError(t, err)
	sink.Reset()

	require.NoError(t, c.DeleteCue(ctx, ids[0]))
	assert.Equal(t, []hub.EventType{hub.TypeCueDeleted}, sink.Types())

	sink.Reset()
	require.NoError(t, c.DeleteCue(ctx, ids[1]))
	assert.Equal(t, []hub.EventType{hub.TypeCueDeleted, hub.TypeStateUpdate}, sink.Types())

	last, _ := sink.Last()
	assert.Equal(t, ids[2], *last.State.CurrentCueID)

	assert.ErrorIs(t, c.DeleteCue(ctx, ids[1]), show.ErrNotFound)
}

func TestCameras_UpsertToggleDelete(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "A")
	sink.Reset()

	require.NoError(t, c.UpsertCamera(ctx, ids[0], 2, show.Shot{Subject: " Host ", ShotType: "CU"}))
	on, err := c.ToggleExpectedTake(ctx, ids[0], 2)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, c.UpsertCamera(ctx, ids[0], 2, show.Shot{Subject: "Guest"}))

	cue, err := c.Cue(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, cue.Cameras, 1)
	assert.Equal(t, "Guest", cue.Cameras[0].Subject)
	assert.True(t, cue.Cameras[0].ExpectedTake, "upsert keeps expected_take")

	require.NoError(t, c.DeleteCamera(ctx, ids[0], 2))
	assert.ErrorIs(t, c.DeleteCamera(ctx, ids[0], 2), show.ErrNotFound)

	for _, ev := range sink.Events() {
		assert.Equal(t, hub.TypeCameraUpdated, ev.Type)
		assert.Equal(t, ids[0], ev.CueID)
		assert.Equal(t, 2, ev.CameraNumber)
	}
	assert.Len(t, sink.Events(), 4)
}

func TestUpsertCamera_Validation(t *testing.T) {
	c, _, _ := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "A")

	assert.ErrorIs(t, c.UpsertCamera(ctx, ids[0], 0, show.Shot{Subject: "x"}), show.ErrValidation)
	assert.ErrorIs(t, c.UpsertCamera(ctx, ids[0], 1, show.Shot{Subject: "  "}), show.ErrValidation)
	assert.ErrorIs(t, c.UpsertCamera(ctx, 999, 1, show.Shot{Subject: "x"}), show.ErrNotFound)
}

func TestCueWindow(t *testing.T) {
	c, _, _ := newController(t)
	ctx := context.Background()

	empty, err := c.CueWindow(ctx, -1, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	seedCues(t, c, "1", "2", "3", "4", "5", "6")
	_, err = c.Goto(ctx, 1)
	require.NoError(t, err)

	got, err := c.CueWindow(ctx, -1, -1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].IsCurrent)

	_, err = c.Goto(ctx, 4)
	require.NoError(t, err)
	got, err = c.CueWindow(ctx, -1, -1)
	require.NoError(t, err)
	var seqs []int
	for _, cue := range got {
		seqs = append(seqs, cue.SequenceNumber)
	}
	assert.Equal(t, []int{3, 4, 5, 6}, seqs)
	assert.True(t, got[1].IsCurrent)
}

func TestImport_ReplacesAndResets(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	seedCues(t, c, "old 1", "old 2")
	_, err := c.Goto(ctx, 2)
	require.NoError(t, err)
	sink.Reset()

	result, err := c.Import(ctx, []show.ImportCue{
		{LineText: "new 1", Cameras: []show.ImportShot{
			{CameraNumber: 1, Shot: show.Shot{Subject: "Host"}, ExpectedTake: true},
			{CameraNumber: 2, Shot: show.Shot{Subject: "Band"}},
		}},
		{LineText: "new 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, control.ImportResult{Cues: 2, Assignments: 2}, result)

	assert.Equal(t, []hub.EventType{hub.TypeStateUpdate}, sink.Types())
	last, _ := sink.Last()
	require.NotNil(t, last.State.Cue)
	assert.Equal(t, "new 1", last.State.Cue.LineText)
	assert.Len(t, last.State.Cameras, 2)

	all, err := c.AllCues(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].SequenceNumber)
	assert.True(t, all[0].Cameras[0].ExpectedTake)
}

func TestImportNamed_SetsScriptName(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()

	_, err := c.ImportNamed(ctx, " Spring Gala ", []show.ImportCue{{LineText: "only"}})
	require.NoError(t, err)

	assert.Equal(t, []hub.EventType{hub.TypeSettingUpdated, hub.TypeStateUpdate}, sink.Types())
	last, _ := sink.Last()
	assert.Equal(t, "Spring Gala", last.State.ScriptName)

	name, ok, err := c.Setting(ctx, show.SettingScriptName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Spring Gala", name)
}

func TestImport_InvalidLeavesStoreUntouched(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	seedCues(t, c, "keep")
	sink.Reset()

	_, err := c.Import(ctx, []show.ImportCue{
		{LineText: "x", Cameras: []show.ImportShot{
			{CameraNumber: 3, Shot: show.Shot{Subject: "a"}},
			{CameraNumber: 3, Shot: show.Shot{Subject: "b"}},
		}},
	})
	require.ErrorIs(t, err, show.ErrValidation)

	var verr *show.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0], "duplicate assignment for camera 3")

	all, err := c.AllCues(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].LineText)
	assert.Empty(t, sink.Events())

	_, err = c.Import(ctx, nil)
	assert.ErrorIs(t, err, show.ErrValidation)
}

func TestClear_SendsClearedThenState(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	seedCues(t, c, "A")
	sink.Reset()

	_, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []hub.EventType{hub.TypeDataCleared, hub.TypeStateUpdate}, sink.Types())

	all, err := c.AllCues(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSettings(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()

	require.NoError(t, c.SetSetting(ctx, show.SettingScriptName, "Spring Gala"))
	v, ok, err := c.Setting(ctx, show.SettingScriptName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Spring Gala", v)

	last, _ := sink.Last()
	assert.Equal(t, hub.TypeSettingUpdated, last.Type)
	assert.Equal(t, show.SettingScriptName, last.Key)

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Spring Gala", state.ScriptName)

	assert.ErrorIs(t, c.SetSetting(ctx, show.SettingPasswordHash, "x"), show.ErrValidation)
	_, _, err = c.Setting(ctx, show.SettingPasswordHash)
	assert.ErrorIs(t, err, show.ErrValidation)
}

func TestUpdateCue(t *testing.T) {
	c, _, sink := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "draft")

	require.NoError(t, c.UpdateCue(ctx, ids[0], show.CueContent{LineText: "final", Notes: "hold"}))
	cue, err := c.Cue(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "final", cue.LineText)
	assert.Equal(t, "hold", cue.Notes)

	last, _ := sink.Last()
	assert.Equal(t, hub.CueUpdated(ids[0]).Type, last.Type)

	assert.ErrorIs(t, c.UpdateCue(ctx, 404, show.CueContent{}), show.ErrNotFound)
}

func TestCameraView_ThroughController(t *testing.T) {
	c, _, _ := newController(t)
	ctx := context.Background()
	ids := seedCues(t, c, "A", "B")
	require.NoError(t, c.UpsertCamera(ctx, ids[1], 4, show.Shot{Subject: "Choir"}))
	_, err := c.Reset(ctx)
	require.NoError(t, err)

	view, err := c.CameraView(ctx, 4)
	require.NoError(t, err)
	require.Len(t, view.Cues, 2)
	assert.True(t, view.Cues[1].IsPreview)

	counts, err := c.Cameras(ctx)
	require.NoError(t, err)
	assert.Equal(t, []show.CameraCount{{CameraNumber: 4, AssignmentCount: 1}}, counts)

	require.NoError(t, c.Ping(ctx))
}
