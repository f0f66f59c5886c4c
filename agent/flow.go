package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/tbxark/slotagent/dialogue"
	"github.com/tbxark/slotagent/entity"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/patch"
	"github.com/tbxark/slotagent/types"
	"github.com/tbxark/slotagent/validate"
)

// Flow runs the turn pipeline of one process: parse entities, validate and
// diff, compose directives.
type Flow struct {
	spec      *form.Spec
	parser    *entity.Parser
	validator *validate.Validator
	composer  *dialogue.Composer
	logger    *slog.Logger
	metrics   *Metrics
}

type flowOptions struct {
	logger        *slog.Logger
	metrics       *Metrics
	parserOptions []entity.ParserOption
}

type FlowOption func(*flowOptions)

func WithLogger(logger *slog.Logger) FlowOption {
	return func(o *flowOptions) {
		o.logger = logger
	}
}

func WithMetrics(m *Metrics) FlowOption {
	return func(o *flowOptions) {
		o.metrics = m
	}
}

// WithDateRangeResolver sets the service resolving date range entities.
func WithDateRangeResolver(r entity.DateRangeResolver) FlowOption {
	return func(o *flowOptions) {
		o.parserOptions = append(o.parserOptions, entity.WithDateRangeResolver(r))
	}
}

func NewFlow(spec *form.Spec, opts ...FlowOption) (*Flow, error) {
	if spec == nil {
		return nil, &form.DeclarationError{Reason: "no process declared"}
	}
	options := flowOptions{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := options.logger.With("process", spec.Name())
	parserOptions := append([]entity.ParserOption{entity.WithLogger(logger)}, options.parserOptions...)
	return &Flow{
		spec:      spec,
		parser:    entity.NewParser(spec, parserOptions...),
		validator: validate.NewValidator(spec, logger),
		composer:  dialogue.NewComposer(spec, logger),
		logger:    logger,
		metrics:   options.metrics,
	}, nil
}

func (f *Flow) Spec() *form.Spec {
	return f.spec
}

// Turn processes one extraction result for sess. Once the session is
// completed or failed the input is ignored and the final response is
// repeated until the session is reset.
func (f *Flow) Turn(ctx context.Context, sess *Session, raw string) (resp *Response, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, "SlotFlow", "Agent")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"session": sess.ID,
		"input":   raw,
	})
	defer func() {
		if r := recover(); r != nil {
			callbacks.OnError(ctx, fmt.Errorf("panic in Flow.Turn: %v", r))
			panic(r)
		}
		if err != nil {
			callbacks.OnError(ctx, err)
			return
		}
		callbacks.OnEnd(ctx, map[string]any{
			"response": resp,
			"phase":    string(resp.Phase),
		})
	}()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State.Phase.Terminal() {
		f.logger.Debug("Session is finished, ignoring input", "session", sess.ID, "phase", sess.State.Phase)
		return f.current(ctx, sess)
	}
	entities := f.parser.Parse(ctx, raw)
	f.logger.Debug("Parsed entities", "session", sess.ID, "entities", entities)
	return f.apply(ctx, sess, entities)
}

// Prefill supplies initial values as if the user had provided them. Names
// must be declared and values must coerce to the declared types.
func (f *Flow) Prefill(ctx context.Context, sess *Session, initial map[string]any) (*Response, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snapshot, err := sess.State.Slots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	ops := patch.GeneratePatchesFromInitial(snapshot, initial)
	if err := patch.ValidatePatchOperations(ops, f.spec.Has); err != nil {
		return nil, fmt.Errorf("invalid initial values: %w", err)
	}
	patched, err := patch.Apply(snapshot, ops)
	if err != nil {
		return nil, fmt.Errorf("apply initial values: %w", err)
	}
	entities := make(map[string]any, len(ops))
	for _, op := range ops {
		name, _ := patch.SlotName(op.Path)
		coerced, cErr := f.parser.Coerce(ctx, name, patched[name])
		if cErr != nil {
			return nil, fmt.Errorf("initial value for %s: %w", name, cErr)
		}
		entities[name] = coerced
	}
	f.logger.Debug("Prefilling session", "session", sess.ID, "ops", ops)
	return f.apply(ctx, sess, entities)
}

// Current composes the response for the stored state without running a
// turn, e.g. to ask the first question.
func (f *Flow) Current(ctx context.Context, sess *Session) (*Response, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return f.current(ctx, sess)
}

// Reset clears the slots and the error counter and returns the session to
// collecting.
func (f *Flow) Reset(ctx context.Context, sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.State.Reset(ctx); err != nil {
		return fmt.Errorf("reset session %s: %w", sess.ID, err)
	}
	f.metrics.observeReset(f.spec.Name())
	f.logger.Debug("Reset session", "session", sess.ID)
	return nil
}

func (f *Flow) apply(ctx context.Context, sess *Session, entities map[string]any) (*Response, error) {
	started := time.Now()
	wasTerminal := sess.State.Phase.Terminal()
	outcome, err := f.validator.Validate(ctx, sess.State, entities)
	if err != nil {
		return nil, fmt.Errorf("validate turn: %w", err)
	}
	directive := f.composer.Compose(ctx, dialogue.ComposeInput{
		Phase:    outcome.Phase,
		Accepted: outcome.Accepted,
		Errors:   outcome.Errors,
		Diff:     outcome.Diff,
	})
	resp := &Response{
		SessionID: sess.ID,
		Directive: directive,
		Errors:    outcome.Errors,
		Diff:      outcome.Diff,
		Patch:     patch.FromDiff(outcome.Diff),
		Result:    f.result(outcome.Phase, outcome.Accepted, outcome.Errors),
		Finished:  !wasTerminal && outcome.Phase.Terminal(),
	}
	f.metrics.observeTurn(f.spec.Name(), resp, time.Since(started))
	f.logger.Debug("Composed turn",
		"session", sess.ID,
		"phase", resp.Phase,
		"next_field", resp.NextField,
		"error_field", resp.ErrorField,
	)
	return resp, nil
}

func (f *Flow) current(ctx context.Context, sess *Session) (*Response, error) {
	snapshot, err := sess.State.Slots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	directive := f.composer.Compose(ctx, dialogue.ComposeInput{
		Phase:    sess.State.Phase,
		Accepted: snapshot,
	})
	return &Response{
		SessionID: sess.ID,
		Directive: directive,
		Errors:    map[string]string{},
		Diff:      []types.DiffEntry{},
		Patch:     []patch.Operation{},
		Result:    f.result(sess.State.Phase, snapshot, nil),
	}, nil
}

func (f *Flow) result(phase types.Phase, accepted map[string]any, errs map[string]string) *types.Result {
	switch phase {
	case types.PhaseCompleted:
		return &types.Result{Status: types.StatusCompleted, Values: f.spec.Result(accepted)}
	case types.PhaseFailed:
		return &types.Result{Status: types.StatusFailed, Values: f.spec.Result(accepted), Errors: errs}
	default:
		return nil
	}
}

// IsDeclarationError reports whether err comes from an invalid process
// declaration.
func IsDeclarationError(err error) bool {
	var declErr *form.DeclarationError
	return errors.As(err, &declErr)
}
