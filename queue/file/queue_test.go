package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTask struct {
	M int
}

func (t *testTask) JobID() string {
	return "test"
}

func (t *testTask) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, t)
}

func (t testTask) MarshalBinary() (data []byte, err error) {
	return json.Marshal(t)
}

func TestRace(t *testing.T) {
	tempFile, err := os.CreateTemp("", "vanorg")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, tempFile.Close())
		assert.NoError(t, os.Remove(tempFile.Name()))
	}()

	q, err := NewQueue(tempFile, &testTask{})
	require.NoError(t, err)

	countWorker := 50
	var c int32
	var wg sync.WaitGroup
	wg.Add(countWorker * 2)
	for i := 0; i < countWorker; i++ {
		go func() {
			defer wg.Done()

			for n := 0; n < 1000; n++ {
				err := q.Push(&testTask{M: n})
				require.NoError(t, err)
				atomic.AddInt32(&c, 1)
			}
		}()
		go func() {
			defer wg.Done()

			for n := 0; n < 5; n++ {
				m, err := q.Eject(500)
				require.NoError(t, err)
				atomic.AddInt32(&c, -1*int32(len(m)))
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, c, q.Len())

	tasks, err := q.Eject(-1)
	assert.NoError(t, err)
	require.EqualValues(t, c, len(tasks))
}

func TestPushEjectReopen(t *testing.T) {
	tempFile, err := os.CreateTemp("", "vanorg")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, tempFile.Close())
		assert.NoError(t, os.Remove(tempFile.Name()))
	}()

	q, err := NewQueue(tempFile, &testTask{})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if q == nil {
				t.FailNow()
				return
			}
			err = q.Push(&testTask{M: 1})
			assert.NoError(t, err)
			err = q.Push(&testTask{M: 2})
			assert.NoError(t, err)

			stat, err := tempFile.Stat()
			assert.NoError(t, err)
			assert.NoError(t, tempFile.Close())
			tempFile, err = os.OpenFile(tempFile.Name(), os.O_RDWR, stat.Mode())
			require.NoError(t, err)

			q, err = NewQueue(tempFile, &testTask{})
			require.NoError(t, err)

			err = q.Push(&testTask{M: 3})
			assert.NoError(t, err)

			tasks, err := q.Eject(-1)
			assert.NoError(t, err)

			require.Equal(t, 3, len(tasks))
			assert.Equal(t, 1, tasks[0].(*testTask).M)
			assert.Equal(t, 2, tasks[1].(*testTask).M)
			assert.Equal(t, 3, tasks[2].(*testTask).M)

			tasks, err = q.Eject(100)
			assert.NoError(t, err)

			require.Equal(t, 0, len(tasks))
		})
	}
}

func TestEjectLimits(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: 0},
		{limit: 1, want: 1},
		{limit: 2, want: 2},
		{limit: 3, want: 2},
		{limit: -1, want: 2},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.limit), func(t *testing.T) {
			tempFile, err := os.CreateTemp(t.TempDir(), "vanorg")
			require.NoError(t, err)

			q, err := NewQueue(tempFile, &testTask{})
			require.NoError(t, err)

			require.NoError(t, q.Push(&testTask{M: 10}))
			require.NoError(t, q.Push(&testTask{M: 20}))

			tasks, err := q.Eject(tt.limit)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, len(tasks))

			if tt.want > 0 {
				assert.Equal(t, 10, tasks[0].(*testTask).M)
			}
			assert.Equal(t, 2-tt.want, q.Len())
		})
	}
}

func TestOpenQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pending_0.q")

	// A short garbage file never verifies.
	require.NoError(t, os.WriteFile(path, []byte("not a queue file at all"), 0o644))

	q, err := Open(&testTask{}, Config{Workspace: dir, Name: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 0, q.Len())

	_, err = os.Stat(filepath.Join(dir, "pending_0.bad"))
	assert.NoError(t, err)

	require.NoError(t, q.Push(&testTask{M: 7}))
	tasks, err := q.Eject(-1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 7, tasks[0].(*testTask).M)
}
