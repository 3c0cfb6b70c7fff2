package job

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// processStart anchors the monotonic clock used for stage timing. The
// values stored in job.json only compare within one process lifetime;
// after a restart the first progress report re-anchors the stage.
var processStart = time.Now()

func monotonic() float64 {
	return time.Since(processStart).Seconds()
}

// DefaultRoot returns the job state directory: VANORG_STATE_DIR when
// set, otherwise /tmp/vanorg_jobs.
func DefaultRoot() string {
	if v := os.Getenv("VANORG_STATE_DIR"); v != "" {
		return v
	}
	return "/tmp/vanorg_jobs"
}

// Store keeps one directory per job under root, each with a job.json
// plus the uploaded PDF and the built artifacts.
type Store struct {
	root string
	ema  *EmaStore
	mx   sync.Mutex
}

func NewStore(root string, ema *EmaStore) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create job root: %w", err)
	}
	if ema == nil {
		ema = NewEmaStore(root)
	}
	return &Store{root: root, ema: ema}, nil
}

func (s *Store) Root() string { return s.root }

// Dir returns the directory of a job.
func (s *Store) Dir(jid string) string {
	return filepath.Join(s.root, jid)
}

func (s *Store) jsonPath(jid string) string {
	return filepath.Join(s.root, jid, "job.json")
}

// Create allocates a job directory and a queued record.
func (s *Store) Create() (*Record, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	u := uuid.New()
	jid := hex.EncodeToString(u[:])[:10]
	if err := os.MkdirAll(filepath.Join(s.root, jid), 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	rec := &Record{
		JID:       jid,
		Status:    StatusQueued,
		CreatedAt: time.Now().Unix(),
		Progress:  map[string]interface{}{"pct": 0, "stage": "queued", "msg": "Queued"},
	}
	if err := s.saveLocked(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get loads a job record. A job with all three artifacts on disk is
// promoted to done regardless of the recorded status: the process may
// have died after the build but before the final save, or while the
// save was half-written.
func (s *Store) Get(jid string) (*Record, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	rec, err := s.loadLocked(jid)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusDone && s.artifactsExist(jid) {
		rec.Status = StatusDone
		rec.Outputs = map[string]string{
			"xlsx":    OutputXLSX,
			"html":    OutputHTML,
			"stacked": OutputStacked,
		}
		if err := s.saveLocked(rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (s *Store) artifactsExist(jid string) bool {
	for _, name := range []string{OutputXLSX, OutputHTML, OutputStacked} {
		if _, err := os.Stat(filepath.Join(s.root, jid, name)); err != nil {
			return false
		}
	}
	return true
}

// Update loads a record, applies fn and saves the result atomically
// with respect to other store calls.
func (s *Store) Update(jid string, fn func(*Record)) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	rec, err := s.loadLocked(jid)
	if err != nil {
		return err
	}
	fn(rec)
	return s.saveLocked(rec)
}

// SetProgress merges keys into the record's progress bag. A stage
// transition closes out the previous stage: its duration feeds the
// moving average and it joins the completed list.
func (s *Store) SetProgress(jid string, progress map[string]interface{}) error {
	return s.Update(jid, func(rec *Record) {
		prev := rec.Stage()
		if rec.Progress == nil {
			rec.Progress = map[string]interface{}{}
		}
		for k, v := range progress {
			rec.Progress[k] = v
		}
		next := rec.Stage()
		if next == prev {
			return
		}
		if _, weighted := StageWeights[prev]; weighted && !rec.stageCompleted(prev) {
			s.ema.Update(prev, monotonic()-rec.StageStartedAt)
			rec.CompletedStages = append(rec.CompletedStages, prev)
		}
		rec.StageStartedAt = monotonic()
	})
}

// CompleteCurrentStage closes out the current stage without starting a
// new one. Used for the last stage of the pipeline.
func (s *Store) CompleteCurrentStage(jid string) error {
	return s.Update(jid, func(rec *Record) {
		stage := rec.Stage()
		if _, weighted := StageWeights[stage]; !weighted || rec.stageCompleted(stage) {
			return
		}
		s.ema.Update(stage, monotonic()-rec.StageStartedAt)
		rec.CompletedStages = append(rec.CompletedStages, stage)
	})
}

// Percent estimates how far along a job is and what to show for it.
// Completed stages contribute their full weight; the running stage
// contributes by elapsed time against the expected duration, capped so
// it never claims to be finished. The returned value never decreases
// and never reaches 100 before the job is done.
func (s *Store) Percent(jid string) (int, string, error) {
	var pct int
	var text string
	err := s.Update(jid, func(rec *Record) {
		pct, text = s.percentOf(rec)
		if pct > rec.LastReportedPercent {
			rec.LastReportedPercent = pct
		} else {
			pct = rec.LastReportedPercent
		}
	})
	return pct, text, err
}

func (s *Store) percentOf(rec *Record) (int, string) {
	switch rec.Status {
	case StatusDone:
		return 100, "Done"
	case StatusError:
		return rec.LastReportedPercent, "Error"
	}

	completed := 0.0
	for _, stage := range rec.CompletedStages {
		completed += StageWeights[stage]
	}

	stage := rec.Stage()
	frac := completed
	if w, ok := StageWeights[stage]; ok && !rec.stageCompleted(stage) {
		elapsed := monotonic() - rec.StageStartedAt
		expected := s.ema.Expected(stage) * progressSlack
		share := elapsed / expected
		if share > stageProgressCap {
			share = stageProgressCap
		}
		frac += w * share
	}

	pct := int(frac * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}

	text := StageText[stage]
	if text == "" {
		text = "Working…"
	}
	return pct, text
}

// loadLocked reads a job.json. A file that exists but does not decode
// is degraded to an error record rather than failing the lookup, so a
// half-written save never makes a job unreachable.
func (s *Store) loadLocked(jid string) (*Record, error) {
	raw, err := os.ReadFile(s.jsonPath(jid))
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return &Record{
			JID:      jid,
			Status:   StatusError,
			Error:    "corrupt job.json",
			Progress: map[string]interface{}{},
		}, nil
	}
	return rec, nil
}

func (s *Store) saveLocked(rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(s.jsonPath(rec.JID), raw, 0o644)
}
