// Package job runs uploaded route sheets through the build pipeline and
// tracks every job's state on disk, so both the queue and the HTTP
// surface survive a restart.
package job

import (
	"github.com/vanorg/vanorg/stacker"
)

// Job statuses.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// Artifact names inside a job directory.
const (
	InputPDF      = "routesheets.pdf"
	OutputXLSX    = "Bags_with_Overflow.xlsx"
	OutputHTML    = "van_organizer.html"
	OutputStacked = "STACKED.pdf"
)

// TOC is the cover-sheet payload of a finished job.
type TOC struct {
	DateLabel     string             `json:"date_label"`
	Routes        []stacker.TOCEntry `json:"routes"`
	WaveColors    map[string]string  `json:"wave_colors"`
	MismatchCount int                `json:"mismatch_count"`
}

// Summary is the verification payload of a finished job.
type Summary struct {
	Mismatches           []stacker.Mismatch `json:"mismatches"`
	RoutesOver30         []stacker.Ranked   `json:"routes_over_30"`
	RoutesOver50Overflow []stacker.Ranked   `json:"routes_over_50_overflow"`
	Top10HeavyTotals     []stacker.Ranked   `json:"top10_heavy_totals"`
	Top10Commercial      []stacker.Ranked   `json:"top10_commercial"`
}

// Record is the persisted state of one job, stored as job.json in the
// job directory.
type Record struct {
	JID       string `json:"jid"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"created_at"`

	// Progress is a loose bag of stage telemetry merged by SetProgress;
	// the keys the polling page reads are stage, pages_total, pages_done,
	// current_page and detail.
	Progress map[string]interface{} `json:"progress,omitempty"`

	Outputs map[string]string `json:"outputs,omitempty"`
	TOC     *TOC              `json:"toc,omitempty"`
	Summary *Summary          `json:"summary,omitempty"`

	CompletedStages     []string `json:"completed_stages,omitempty"`
	StageStartedAt      float64  `json:"stage_started_at,omitempty"`
	LastReportedPercent int      `json:"last_reported_percent,omitempty"`
}

// Stage returns the current pipeline stage, or "" before the first
// progress report.
func (r *Record) Stage() string {
	if r.Progress == nil {
		return ""
	}
	s, _ := r.Progress["stage"].(string)
	return s
}

func (r *Record) stageCompleted(stage string) bool {
	for _, s := range r.CompletedStages {
		if s == stage {
			return true
		}
	}
	return false
}
