package job

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
)

const emaAlpha = 0.25

// EmaStore keeps an exponential moving average of how long each stage
// takes, persisted next to the job directories so estimates survive
// restarts.
type EmaStore struct {
	path string
	mx   sync.Mutex
	ema  map[string]float64
}

func NewEmaStore(root string) *EmaStore {
	s := &EmaStore{
		path: filepath.Join(root, "progress_ema.json"),
		ema:  map[string]float64{},
	}
	if raw, err := os.ReadFile(s.path); err == nil {
		_ = json.Unmarshal(raw, &s.ema)
	}
	return s
}

// Expected returns the estimated duration of a stage in seconds.
func (s *EmaStore) Expected(stage string) float64 {
	s.mx.Lock()
	defer s.mx.Unlock()
	if v, ok := s.ema[stage]; ok && v > 0 {
		return v
	}
	if v, ok := defaultStageSeconds[stage]; ok {
		return v
	}
	return 10
}

// Update folds an observed stage duration into the average and persists
// the result. Non-positive observations are ignored.
func (s *EmaStore) Update(stage string, seconds float64) {
	if seconds <= 0 {
		return
	}
	s.mx.Lock()
	defer s.mx.Unlock()

	prev, ok := s.ema[stage]
	if !ok || prev <= 0 {
		prev = s.expectedLocked(stage)
	}
	s.ema[stage] = math.Round((emaAlpha*seconds+(1-emaAlpha)*prev)*1000) / 1000

	raw, err := json.Marshal(s.ema)
	if err != nil {
		return
	}
	// A failed save only costs estimate quality.
	_ = os.WriteFile(s.path, raw, 0o644)
}

func (s *EmaStore) expectedLocked(stage string) float64 {
	if v, ok := defaultStageSeconds[stage]; ok {
		return v
	}
	return 10
}
