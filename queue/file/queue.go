// Package file implements a crash-safe on-disk task queue.
//
// The queue file starts with a crc32 checksum of every record byte ever
// appended, followed by a read cursor. Records are uint16-length-prefixed
// payloads. Pushes append and refresh the checksum; ejects advance the
// cursor without rewriting history, so a crash at any point leaves a file
// that either verifies or gets quarantined on the next open.
package file

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"reflect"
	"sync"
)

// ErrCorrupt reports a queue file whose checksum or framing does not
// verify. The loader quarantines such files and starts a fresh one.
var ErrCorrupt = errors.New("queue file corrupt")

const (
	sumOffset    int64 = 0
	sumSize      int64 = 4
	cursorOffset       = sumOffset + sumSize
	cursorSize   int64 = 8
	dataOffset         = cursorOffset + cursorSize
	headerSize         = sumSize + cursorSize
	frameSize          = 2
)

var scratchPool = &sync.Pool{
	New: func() interface{} {
		return make([]byte, headerSize)
	},
}

// Queue is a disk-backed task queue. The zero value is not usable;
// construct with NewQueue or Open.
type Queue struct {
	taskType reflect.Type
	file     *os.File
	order    binary.ByteOrder
	mx       sync.Mutex

	sum   hash.Hash32
	count int
	w     io.Writer
}

// NewQueue wraps an open file as a task queue. The pattern value fixes
// the concrete type returned by Eject. An empty file is initialized; a
// non-empty file is verified and its unread records counted.
func NewQueue(f *os.File, pattern encoding.BinaryUnmarshaler) (*Queue, error) {
	q := &Queue{
		taskType: reflect.ValueOf(pattern).Elem().Type(),
		file:     f,
		order:    binary.BigEndian,
		sum:      crc32.NewIEEE(),
	}
	if err := q.restore(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Queue) Len() int {
	q.mx.Lock()
	defer q.mx.Unlock()
	return q.count
}

// restore verifies the file and positions it for appending.
func (q *Queue) restore() error {
	q.w = io.MultiWriter(q.file, q.sum)

	if _, err := q.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make([]byte, headerSize)
	n, err := q.file.Read(header)
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			// Fresh file: write an empty header.
			q.order.PutUint32(header[:sumSize], 0)
			q.order.PutUint64(header[sumSize:], uint64(dataOffset))
			_, err = q.file.Write(header)
			return err
		}
		return err
	}
	if int64(n) < headerSize {
		return ErrCorrupt
	}

	wantSum := q.order.Uint32(header[:sumSize])
	cursor := int64(q.order.Uint64(header[sumSize:]))
	if cursor < dataOffset {
		return ErrCorrupt
	}

	if _, err := q.file.Seek(dataOffset, io.SeekStart); err != nil {
		return err
	}

	// Replay every record through the hash; count those past the cursor.
	tr := io.TeeReader(q.file, q.sum)
	offset := dataOffset
	frame := make([]byte, frameSize)
	var payload []byte
	for {
		if _, err := io.ReadFull(q.file, frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrCorrupt
			}
			return err
		}
		size := int(q.order.Uint16(frame))
		offset += frameSize

		if len(payload) < size {
			payload = make([]byte, size)
		}
		if _, err := io.ReadFull(tr, payload[:size]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrCorrupt
			}
			return err
		}
		offset += int64(size)

		if offset > cursor {
			q.count++
		}
	}

	if q.sum.Sum32() != wantSum {
		return ErrCorrupt
	}
	return nil
}

func (q *Queue) writeFrame(scratch []byte, size int) error {
	q.order.PutUint16(scratch[:frameSize], uint16(size))
	_, err := q.file.Write(scratch[:frameSize])
	return err
}

func (q *Queue) flushSum(scratch []byte) error {
	q.order.PutUint32(scratch[:sumSize], q.sum.Sum32())
	_, err := q.file.WriteAt(scratch[:sumSize], sumOffset)
	return err
}

// Push appends one task to the queue.
func (q *Queue) Push(task encoding.BinaryMarshaler) error {
	data, err := task.MarshalBinary()
	if err != nil {
		return err
	}
	if len(data) > math.MaxUint16 {
		return fmt.Errorf("task too large: %d over %d", len(data), math.MaxUint16)
	}

	scratch := scratchPool.Get().([]byte)
	defer scratchPool.Put(scratch)

	q.mx.Lock()
	defer q.mx.Unlock()

	if err := q.writeFrame(scratch, len(data)); err != nil {
		return err
	}
	if _, err := q.w.Write(data); err != nil {
		return err
	}
	q.count++

	return q.flushSum(scratch)
}

// Eject removes up to limit tasks from the front of the queue. A
// negative limit drains the queue.
func (q *Queue) Eject(limit int) (tasks []interface{}, err error) {
	q.mx.Lock()
	defer q.mx.Unlock()

	if limit > q.count || limit < 0 {
		limit = q.count
	}
	if limit == 0 {
		return nil, nil
	}

	header := make([]byte, headerSize)
	cursorBuf := header[:cursorSize]

	if _, err = q.file.ReadAt(cursorBuf, cursorOffset); err != nil {
		return nil, err
	}
	cursor := int64(q.order.Uint64(cursorBuf))

	if _, err = q.file.Seek(cursor, io.SeekStart); err != nil {
		return nil, err
	}

	tasks = make([]interface{}, 0, limit)
	frame := header[:frameSize]
	var payload []byte
	for i := 0; i < limit; i++ {
		if _, err = io.ReadFull(q.file, frame); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			break
		}
		size := int(q.order.Uint16(frame))
		cursor += frameSize

		if len(payload) < size {
			payload = make([]byte, size)
		}
		if _, err = io.ReadFull(q.file, payload[:size]); err != nil {
			break
		}
		cursor += int64(size)
		q.count--

		task := reflect.New(q.taskType).Interface().(encoding.BinaryUnmarshaler)
		if err = task.UnmarshalBinary(payload[:size]); err != nil {
			break
		}
		tasks = append(tasks, task)
	}
	if err != nil {
		return tasks, err
	}

	q.order.PutUint64(cursorBuf, uint64(cursor))
	if _, err = q.file.WriteAt(cursorBuf, cursorOffset); err != nil {
		return tasks, err
	}

	_, err = q.file.Seek(0, io.SeekEnd)
	return tasks, err
}
