package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRoundTrip(t *testing.T) {
	data, err := NewTask("ab12cd34ef").MarshalBinary()
	require.NoError(t, err)

	restored := &Task{}
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, "ab12cd34ef", restored.JobID())
}

func TestTaskEmpty(t *testing.T) {
	_, err := NewTask("").MarshalBinary()
	assert.Error(t, err)

	assert.Error(t, (&Task{}).UnmarshalBinary(nil))
}
