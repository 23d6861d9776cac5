package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DedupKeyFromRecordID(t *testing.T) {
	tk := New(OperationExtractField, PriorityNormal, ExtractFieldPayload("a.jpg", "rec-42", "UHID"))

	assert.Equal(t, "docubrain.record.extract_field:rec-42", tk.DedupKey())
	assert.Equal(t, int(PriorityNormal), tk.Priority())
}

func TestNew_DedupKeyWithoutRecordID(t *testing.T) {
	tk := New(OperationExtractField, PriorityBackground, map[string]any{"other": "x"})

	assert.Equal(t, OperationExtractField.String(), tk.DedupKey())
}

func TestTask_PayloadIsCopied(t *testing.T) {
	payload := map[string]any{"record_id": "rec-1"}
	tk := New(OperationExtractField, PriorityNormal, payload)

	payload["record_id"] = "mutated"
	id, ok := tk.String("record_id")
	require.True(t, ok)
	assert.Equal(t, "rec-1", id)

	out := tk.Payload()
	out["record_id"] = "mutated-again"
	id, _ = tk.String("record_id")
	assert.Equal(t, "rec-1", id)
}

func TestPayloadString(t *testing.T) {
	payload := map[string]any{"name": "value", "count": 3}

	s, ok := PayloadString(payload, "name")
	assert.True(t, ok)
	assert.Equal(t, "value", s)

	_, ok = PayloadString(payload, "count")
	assert.False(t, ok)

	_, ok = PayloadString(payload, "missing")
	assert.False(t, ok)
}

func TestExtractFieldPayload(t *testing.T) {
	payload := ExtractFieldPayload("key", "rec", "UHID")

	assert.Equal(t, "key", payload[PayloadKeyStorageKey])
	assert.Equal(t, "rec", payload[PayloadKeyRecordID])
	assert.Equal(t, "UHID", payload[PayloadKeyFieldName])
}
