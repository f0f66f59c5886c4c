package validate

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/tbxark/slotagent/diff"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/slot"
	"github.com/tbxark/slotagent/types"
)

// State is the process state of one session. The validator is its only
// writer during a turn.
type State struct {
	Slots      slot.Store
	ErrorCount int
	Phase      types.Phase
}

func NewState() *State {
	return &State{
		Slots: slot.NewMemoryStore(),
		Phase: types.PhaseCollecting,
	}
}

// Reset clears every slot and returns the state to collecting.
func (s *State) Reset(ctx context.Context) error {
	if err := s.Slots.Clear(ctx); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	s.ErrorCount = 0
	s.Phase = types.PhaseCollecting
	return nil
}

// Outcome is the result of validating one turn.
type Outcome struct {
	Phase types.Phase
	// Accepted is the post-turn state, equal to what was persisted.
	Accepted map[string]any
	// Errors holds one message per rejected field, for this turn only.
	Errors map[string]string
	// Diff compares the slots stored before the turn with Accepted, limited
	// to fields with a question or an acknowledgement. Rejected input that
	// was reverted does not appear.
	Diff     []types.DiffEntry
	Supplied []string
	// Counted is the number of failures that counted toward the threshold.
	Counted int
}

type Validator struct {
	spec   *form.Spec
	logger *slog.Logger
}

func NewValidator(spec *form.Spec, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{spec: spec, logger: logger}
}

// Validate merges entities over the stored slots, runs field validators and
// cross-field rules, persists the accepted values and decides the phase.
//
// Error counter policy: every counted failure adds one; a turn that supplies
// entities without any counted failure resets the counter to zero; a turn
// without entities leaves it unchanged.
func (v *Validator) Validate(ctx context.Context, state *State, entities map[string]any) (*Outcome, error) {
	prior, err := state.Slots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	supplied := make(map[string]bool, len(entities))
	working := maps.Clone(prior)
	if working == nil {
		working = map[string]any{}
	}
	for name, value := range entities {
		if !v.spec.Has(name) || value == nil {
			continue
		}
		working[name] = value
		supplied[name] = true
	}
	v.logger.Debug("Merged entities", "prior", prior, "supplied", entities)

	rc := form.NewRuleContext(working, prior, supplied)
	for _, f := range v.spec.Fields() {
		value, ok := rc.Get(f.Name)
		if !ok {
			continue
		}
		next, vErr := f.Validate(value, rc.Values)
		if vErr != nil {
			if f.CountFailures {
				rc.RejectCounted(f.Name, vErr.Error())
			} else {
				rc.Reject(f.Name, vErr.Error())
			}
			continue
		}
		rc.Set(f.Name, next)
	}
	for _, rule := range v.spec.Rules() {
		rule(rc)
	}

	accepted := make(map[string]any, len(rc.Values))
	for _, f := range v.spec.Fields() {
		value, ok := rc.Get(f.Name)
		if ok {
			accepted[f.Name] = value
			if err := state.Slots.Set(ctx, f.Name, value); err != nil {
				return nil, fmt.Errorf("store %s: %w", f.Name, err)
			}
			continue
		}
		if err := state.Slots.Delete(ctx, f.Name); err != nil {
			return nil, fmt.Errorf("clear %s: %w", f.Name, err)
		}
	}

	outcome := &Outcome{
		Accepted: accepted,
		Errors:   map[string]string{},
	}
	for _, failure := range rc.Failures() {
		if _, seen := outcome.Errors[failure.Field]; !seen {
			outcome.Errors[failure.Field] = failure.Message
		}
		if failure.Counted {
			outcome.Counted++
		}
	}
	for name := range supplied {
		outcome.Supplied = append(outcome.Supplied, name)
	}
	v.spec.Sort(outcome.Supplied)

	switch {
	case outcome.Counted > 0:
		state.ErrorCount += outcome.Counted
	case len(supplied) > 0:
		state.ErrorCount = 0
	}

	outcome.Diff = diff.Only(diff.Compute(prior, accepted), func(name string) bool {
		f, ok := v.spec.Field(name)
		return ok && f.Announces()
	})

	switch {
	case state.ErrorCount >= v.spec.ErrorThreshold():
		state.Phase = types.PhaseFailed
	case len(outcome.Errors) == 0 && v.spec.Completed(accepted):
		state.Phase = types.PhaseCompleted
	default:
		state.Phase = types.PhaseCollecting
	}
	outcome.Phase = state.Phase

	v.logger.Debug("Validated turn",
		"phase", outcome.Phase,
		"errors", outcome.Errors,
		"error_count", state.ErrorCount,
		"diff", len(outcome.Diff),
	)
	return outcome, nil
}
