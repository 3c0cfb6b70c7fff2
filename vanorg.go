// Package vanorg turns uploaded route-sheet PDFs into van loading
// artifacts: a stacked per-route PDF, a bag/overflow workbook and a
// mobile organizer page.
//
// The root package holds the small contracts shared by the queueing and
// job machinery; the subpackages implement them.
package vanorg

import "encoding"

// Task is a unit of background work that can be persisted in a queue
// and restored after a restart.
type Task interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	// JobID names the job directory this task belongs to.
	JobID() string
}

// Queue holds pending tasks. Implementations must be safe for
// concurrent use.
type Queue interface {
	Push(task encoding.BinaryMarshaler) error
	Eject(limit int) (tasks []interface{}, err error)
	Len() int
}

// DeadLetter archives tasks that could not be processed so they can be
// inspected after the fact.
type DeadLetter interface {
	Dump(jobID string, cause string)
	Return() (exist bool, jobID string, cause string)
}
