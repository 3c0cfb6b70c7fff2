// Package memory implements the fallback in-process task queue.
package memory

import (
	"encoding"
	"sync"
)

func NewQueue() *Queue {
	return &Queue{}
}

// Queue is a FIFO buffer used when the disk queue is unavailable. It
// never returns an error.
type Queue struct {
	buffer []interface{}
	mx     sync.Mutex
}

func (m *Queue) Push(task encoding.BinaryMarshaler) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.buffer = append(m.buffer, task)
	return nil
}

func (m *Queue) Eject(limit int) (tasks []interface{}, err error) {
	m.mx.Lock()
	defer m.mx.Unlock()

	if limit > len(m.buffer) || limit < 0 {
		limit = len(m.buffer)
	}
	if limit == 0 {
		return nil, nil
	}

	tasks = make([]interface{}, limit)
	copy(tasks, m.buffer[:limit])
	rest := len(m.buffer) - limit
	copy(m.buffer, m.buffer[limit:])
	for i := rest; i < len(m.buffer); i++ {
		m.buffer[i] = nil
	}
	m.buffer = m.buffer[:rest]
	return tasks, nil
}

func (m *Queue) Len() int {
	m.mx.Lock()
	defer m.mx.Unlock()
	return len(m.buffer)
}
