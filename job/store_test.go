package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	assert.Len(t, rec.JID, 10)
	assert.Equal(t, StatusQueued, rec.Status)
	assert.DirExists(t, s.Dir(rec.JID))

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, rec.JID, got.JID)
	assert.Equal(t, StatusQueued, got.Status)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestGetRecoversFinishedJob(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.Update(rec.JID, func(r *Record) { r.Status = StatusRunning }))

	// All artifacts on disk but the process died before the final save.
	for _, name := range []string{OutputXLSX, OutputHTML, OutputStacked} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(rec.JID), name), []byte("x"), 0o644))
	}

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, OutputStacked, got.Outputs["stacked"])
}

func TestGetPromotesErrorRecordWithArtifacts(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.Update(rec.JID, func(r *Record) {
		r.Status = StatusError
		r.Error = "boom"
	}))

	// The artifacts landed anyway, so the job is served as done.
	for _, name := range []string{OutputXLSX, OutputHTML, OutputStacked} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(rec.JID), name), []byte("x"), 0o644))
	}

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, OutputHTML, got.Outputs["html"])
}

func TestGetRecoversCorruptJobJSON(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(rec.JID), "job.json"), []byte("{not json"), 0o644))

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "corrupt job.json", got.Error)

	// A half-written save after a finished build still serves done.
	for _, name := range []string{OutputXLSX, OutputHTML, OutputStacked} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(rec.JID), name), []byte("x"), 0o644))
	}
	got, err = s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)

	// And the record is writable again.
	require.NoError(t, s.Update(rec.JID, func(r *Record) { r.Error = "" }))
}

func TestGetDoesNotRecoverPartialJob(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(rec.JID), OutputXLSX), []byte("x"), 0o644))

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
}

func TestSetProgressStageTransition(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageParsePDF}))
	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StageParsePDF, got.Stage())
	assert.Empty(t, got.CompletedStages)

	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageExcel, "detail": "x"}))
	got, err = s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StageExcel, got.Stage())
	assert.Equal(t, []string{StageParsePDF}, got.CompletedStages)
	assert.Equal(t, "x", got.Progress["detail"])
}

func TestCompleteCurrentStage(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageBuildHTML}))
	require.NoError(t, s.CompleteCurrentStage(rec.JID))
	require.NoError(t, s.CompleteCurrentStage(rec.JID)) // idempotent

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, []string{StageBuildHTML}, got.CompletedStages)
}

func TestPercent(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageParsePDF}))
	pct, text, err := s.Percent(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, "Processing File…", text)
	assert.GreaterOrEqual(t, pct, 0)
	assert.Less(t, pct, 34)

	// A completed first stage contributes its full weight.
	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageExcel}))
	pct, text, err = s.Percent(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, "Generating Data…", text)
	assert.GreaterOrEqual(t, pct, 33)
	assert.Less(t, pct, 54)
}

func TestPercentNeverDecreases(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.SetProgress(rec.JID, map[string]interface{}{"stage": StageParsePDF}))
	require.NoError(t, s.Update(rec.JID, func(r *Record) { r.LastReportedPercent = 42 }))

	pct, _, err := s.Percent(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, 42, pct)
}

func TestPercentTerminalStates(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.Update(rec.JID, func(r *Record) { r.Status = StatusDone }))
	pct, text, err := s.Percent(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
	assert.Equal(t, "Done", text)

	require.NoError(t, s.Update(rec.JID, func(r *Record) {
		r.Status = StatusError
		r.LastReportedPercent = 61
	}))
	pct, text, err = s.Percent(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, 61, pct)
	assert.Equal(t, "Error", text)
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv("VANORG_STATE_DIR", "/var/lib/vanorg")
	assert.Equal(t, "/var/lib/vanorg", DefaultRoot())

	t.Setenv("VANORG_STATE_DIR", "")
	assert.Equal(t, "/tmp/vanorg_jobs", DefaultRoot())
}
