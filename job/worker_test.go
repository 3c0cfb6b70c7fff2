package job

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jidRecorder struct {
	mx   sync.Mutex
	jids []string
}

func (r *jidRecorder) process(_ *Store, jid string) error {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.jids = append(r.jids, jid)
	return nil
}

func (r *jidRecorder) seen() []string {
	r.mx.Lock()
	defer r.mx.Unlock()
	return append([]string(nil), r.jids...)
}

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	s := newTestStore(t)
	rec := &jidRecorder{}

	w, err := NewWorker(s, Config{
		PollInterval: 100 * time.Millisecond,
		PollLimit:    10,
		Process:      rec.process,
	})
	require.NoError(t, err)

	require.NoError(t, w.Push("job0000001"))
	require.NoError(t, w.Push("job0000002"))
	assert.Equal(t, 2, w.Len())

	w.Run()
	assert.Eventually(t, func() bool {
		return len(rec.seen()) == 2
	}, 3*time.Second, 20*time.Millisecond)
	w.Stop(true)

	assert.Equal(t, []string{"job0000001", "job0000002"}, rec.seen())
	assert.Zero(t, w.Len())
}

func TestWorkerStopDrainsTail(t *testing.T) {
	s := newTestStore(t)
	rec := &jidRecorder{}

	w, err := NewWorker(s, Config{
		// Long enough that the ticker never fires during the test.
		PollInterval: time.Hour,
		Process:      rec.process,
	})
	require.NoError(t, err)
	w.Run()

	require.NoError(t, w.Push("job0000003"))
	w.Stop(true)

	assert.Equal(t, []string{"job0000003"}, rec.seen())
}

func TestWorkerRejectsPushAfterStop(t *testing.T) {
	s := newTestStore(t)

	w, err := NewWorker(s, Config{
		PollInterval: time.Hour,
		Process:      func(*Store, string) error { return nil },
	})
	require.NoError(t, err)
	w.Run()
	w.Stop(false)

	assert.Error(t, w.Push("job0000004"))
}

func TestWorkerRedrivesDeadJobsOnStart(t *testing.T) {
	s := newTestStore(t)
	rec := &jidRecorder{}

	w, err := NewWorker(s, Config{
		PollInterval: time.Hour,
		Process:      rec.process,
	})
	require.NoError(t, err)

	// Archived by a previous run that failed on this job.
	w.dead.Dump("job0000006", "build stacked pdf: boom")

	w.Run()
	w.Stop(true)

	assert.Equal(t, []string{"job0000006"}, rec.seen())
	exist, _, _ := w.dead.Return()
	assert.False(t, exist)
}

func TestWorkerDeadLettersFailedJobs(t *testing.T) {
	s := newTestStore(t)

	w, err := NewWorker(s, Config{
		PollInterval: time.Hour,
		Process: func(_ *Store, jid string) error {
			return assert.AnError
		},
	})
	require.NoError(t, err)
	w.Run()

	require.NoError(t, w.Push("job0000005"))
	w.Stop(true)

	exist, jid, cause := w.dead.Return()
	assert.True(t, exist)
	assert.Equal(t, "job0000005", jid)
	assert.Equal(t, assert.AnError.Error(), cause)
}
