package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/task"
)

func TestEnvelope_PreservesIdentity(t *testing.T) {
	original := task.New(
		task.OperationExtractField,
		task.PriorityNormal,
		task.ExtractFieldPayload("a.jpg", "rec-1", "UHID"),
	)

	body, err := encodeTask(original)
	require.NoError(t, err)

	decoded, err := decodeTask(body)
	require.NoError(t, err)

	assert.Equal(t, original.DedupKey(), decoded.DedupKey())
	assert.Equal(t, original.Operation(), decoded.Operation())
	assert.Equal(t, original.Priority(), decoded.Priority())

	id, ok := decoded.String(task.PayloadKeyRecordID)
	require.True(t, ok)
	assert.Equal(t, "rec-1", id)

	// A task that was never persisted gets its created time stamped at
	// encode so consumers can log queue latency.
	assert.False(t, decoded.CreatedAt().IsZero())
}

func TestDecodeTask_Invalid(t *testing.T) {
	_, err := decodeTask([]byte("not json"))
	assert.Error(t, err)
}
