package memory

import (
	"encoding/json"
	"strconv"
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

func TestFIFOAndLimits(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: 0},
		{limit: 1, want: 1},
		{limit: 2, want: 2},
		{limit: 5, want: 3},
		{limit: -1, want: 3},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.limit), func(t *testing.T) {
			q := NewQueue()
			for i := 1; i <= 3; i++ {
				require.NoError(t, q.Push(&testTask{M: i}))
			}
			require.Equal(t, 3, q.Len())

			tasks, err := q.Eject(tt.limit)
			assert.NoError(t, err)
			require.Equal(t, tt.want, len(tasks))
			for i, task := range tasks {
				assert.Equal(t, i+1, task.(*testTask).M)
			}
			assert.Equal(t, 3-tt.want, q.Len())
		})
	}
}
