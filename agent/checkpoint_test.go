package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	flow := newFlow(t)
	sess := NewSession()

	_, err := flow.Turn(ctx, sess, `[{"name":"first_name","value":"nathan"},{"name":"phone","value":"1"}]`)
	require.NoError(t, err)

	data, err := flow.Checkpoint(ctx, sess)
	require.NoError(t, err)

	restored, err := flow.Restore(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, 1, restored.State.ErrorCount)
	assert.Equal(t, types.PhaseCollecting, restored.State.Phase)

	values, err := restored.State.Slots.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"first_name": "Nathan"}, values)

	resp, err := flow.Turn(ctx, restored, `[{"name":"confirmation","value":true}]`)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseCompleted, resp.Phase)
}

func TestCheckpointRestoresTypedValues(t *testing.T) {
	ctx := context.Background()
	spec, err := form.NewSpec("booking", []form.Field{
		{Name: "guests", Type: types.FieldInt, Question: "How many guests?"},
		{Name: "when", Type: types.FieldDateRange, Question: "When?"},
	})
	require.NoError(t, err)
	flow, err := NewFlow(spec)
	require.NoError(t, err)

	sess := NewSession()
	_, err = flow.Turn(ctx, sess, `[{"name":"guests","value":4},{"name":"when","value":"2024-05-06T10:00:00Z"}]`)
	require.NoError(t, err)

	data, err := flow.Checkpoint(ctx, sess)
	require.NoError(t, err)
	restored, err := flow.Restore(ctx, data)
	require.NoError(t, err)

	guests, _, err := restored.State.Slots.Get(ctx, "guests")
	require.NoError(t, err)
	assert.Equal(t, 4, guests)

	when, _, err := restored.State.Slots.Get(ctx, "when")
	require.NoError(t, err)
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	assert.True(t, types.Equal(types.DateRange{Start: start, End: start.Add(time.Hour - time.Second), Grain: time.Hour}, when))
}

func TestRestoreRejectsIncompatibleCheckpoints(t *testing.T) {
	ctx := context.Background()
	flow := newFlow(t)

	tests := []struct {
		name string
		data string
	}{
		{"garbage", `{{`},
		{"version", `{"version":"0.1","process":"account","values":{}}`},
		{"process", `{"version":"1.0","process":"invoice","values":{}}`},
		{"phase", `{"version":"1.0","process":"account","phase":"paused","values":{}}`},
		{"unknown slot", `{"version":"1.0","process":"account","values":{"nickname":"Ace"}}`},
		{"bad value", `{"version":"1.0","process":"account","values":{"confirmation":"perhaps"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.Restore(ctx, []byte(tt.data))
			assert.ErrorIs(t, err, ErrIncompatibleCheckpoint)
		})
	}
}
