package marker_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/marker"
	"go.trai.ch/datanode/internal/core/domain"
)

func TestEncodeMarker_Envelope(t *testing.T) {
	t.Parallel()

	data, err := marker.EncodeMarker(marker.KindTask, map[string]any{"state": "pending"})
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.InDelta(t, float64(domain.MarkerSchemaVersion), env["schema"], 0)
	assert.Equal(t, "task", env["kind"])
	assert.NotEmpty(t, env["checksum"])
	assert.Equal(t, map[string]any{"state": "pending"}, env["record"])
}

func TestDecodeMarker_ToleratesReformatting(t *testing.T) {
	t.Parallel()

	data, err := marker.EncodeMarker(marker.KindTask, map[string]any{"state": "pending"})
	require.NoError(t, err)

	// The checksum covers the compacted record, so whitespace changes are harmless.
	var compact map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &compact))
	reformatted, err := json.Marshal(compact)
	require.NoError(t, err)

	var rec struct {
		State string `json:"state"`
	}
	require.NoError(t, marker.DecodeMarker(reformatted, marker.KindTask, &rec))
	assert.Equal(t, "pending", rec.State)
}

func TestDecodeMarker_RejectsUnknownRecordFields(t *testing.T) {
	t.Parallel()

	data, err := marker.EncodeMarker(marker.KindTask, map[string]any{"state": "pending", "extra": true})
	require.NoError(t, err)

	var rec struct {
		State string `json:"state"`
	}
	err = marker.DecodeMarker(data, marker.KindTask, &rec)
	require.ErrorIs(t, err, domain.ErrCorruptMarker)
}
