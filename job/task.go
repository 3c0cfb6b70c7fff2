package job

import "errors"

// Task is the queue payload for one pending job: just the job id, since
// everything else lives in the job directory.
type Task struct {
	jid string
}

func NewTask(jid string) *Task {
	return &Task{jid: jid}
}

func (t *Task) JobID() string {
	return t.jid
}

func (t *Task) MarshalBinary() ([]byte, error) {
	if t.jid == "" {
		return nil, errors.New("task has no job id")
	}
	return []byte(t.jid), nil
}

func (t *Task) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty task payload")
	}
	t.jid = string(data)
	return nil
}
