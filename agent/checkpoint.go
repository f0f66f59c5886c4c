package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/slotagent/types"
	"github.com/tbxark/slotagent/validate"
)

const CheckpointVersion = "1.0"

var ErrIncompatibleCheckpoint = errors.New("incompatible checkpoint")

var checkpointAPI = sonic.Config{UseNumber: true}.Froze()

// Checkpoint is the serialized form of a session.
type Checkpoint struct {
	Version    string         `json:"version"`
	Process    string         `json:"process"`
	SessionID  string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Values     map[string]any `json:"values"`
	ErrorCount int            `json:"error_count"`
	Phase      types.Phase    `json:"phase"`
}

// Checkpoint serializes the slots and process state of sess.
func (f *Flow) Checkpoint(ctx context.Context, sess *Session) ([]byte, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	values, err := sess.State.Slots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	cp := Checkpoint{
		Version:    CheckpointVersion,
		Process:    f.spec.Name(),
		SessionID:  sess.ID,
		CreatedAt:  sess.CreatedAt,
		Values:     values,
		ErrorCount: sess.State.ErrorCount,
		Phase:      sess.State.Phase,
	}
	data, err := sonic.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return data, nil
}

// Restore rebuilds a session from a checkpoint of the same process. Values
// are coerced again so restored slots carry their declared types.
func (f *Flow) Restore(ctx context.Context, data []byte) (*Session, error) {
	var cp Checkpoint
	if err := checkpointAPI.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleCheckpoint, err)
	}
	if cp.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: version %q", ErrIncompatibleCheckpoint, cp.Version)
	}
	if cp.Process != f.spec.Name() {
		return nil, fmt.Errorf("%w: process %q", ErrIncompatibleCheckpoint, cp.Process)
	}
	switch cp.Phase {
	case types.PhaseCollecting, types.PhaseCompleted, types.PhaseFailed:
	case "":
		cp.Phase = types.PhaseCollecting
	default:
		return nil, fmt.Errorf("%w: phase %q", ErrIncompatibleCheckpoint, cp.Phase)
	}

	sess := NewSession()
	if cp.SessionID != "" {
		sess.ID = cp.SessionID
	}
	if !cp.CreatedAt.IsZero() {
		sess.CreatedAt = cp.CreatedAt
	}
	state := validate.NewState()
	state.ErrorCount = cp.ErrorCount
	state.Phase = cp.Phase
	for name, raw := range cp.Values {
		if !f.spec.Has(name) {
			return nil, fmt.Errorf("%w: unknown slot %q", ErrIncompatibleCheckpoint, name)
		}
		if raw == nil {
			continue
		}
		value, err := f.parser.Coerce(ctx, name, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: slot %s: %v", ErrIncompatibleCheckpoint, name, err)
		}
		if err := state.Slots.Set(ctx, name, value); err != nil {
			return nil, fmt.Errorf("restore slot %s: %w", name, err)
		}
	}
	sess.State = state
	return sess, nil
}
