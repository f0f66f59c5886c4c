package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/slotagent/types"
)

const (
	DefaultCompletedMessage = "Thank you, everything has been recorded."
	DefaultFailedMessage    = "Sorry, too many answers could not be accepted, so we will stop here."
	DefaultContinueMessage  = "Please continue."
)

// LocalRenderer renders directives without a language model: the
// acknowledgements, then either the error or the next question.
type LocalRenderer struct {
	CompletedMessage string
	FailedMessage    string
	// SkipAcknowledgements drops the acknowledgement lines.
	SkipAcknowledgements bool
}

func (r *LocalRenderer) Render(ctx context.Context, d *Directive) (string, error) {
	if d == nil {
		return "", fmt.Errorf("nil directive")
	}
	switch d.Phase {
	case types.PhaseCompleted:
		return firstNonEmpty(r.CompletedMessage, DefaultCompletedMessage), nil
	case types.PhaseFailed:
		return firstNonEmpty(r.FailedMessage, DefaultFailedMessage), nil
	}

	var lines []string
	if !r.SkipAcknowledgements {
		lines = append(lines, d.Acknowledgements...)
	}
	switch {
	case d.ErrorDirective != "":
		lines = append(lines, d.ErrorDirective)
	case d.NextQuestion != "":
		lines = append(lines, d.NextQuestion)
	}
	if len(lines) == 0 {
		return DefaultContinueMessage, nil
	}
	return strings.Join(lines, "\n"), nil
}

// RenderStream is Render delivered as a single-chunk stream.
func (r *LocalRenderer) RenderStream(ctx context.Context, d *Directive) (*schema.StreamReader[string], error) {
	message, err := r.Render(ctx, d)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]string{message}), nil
}

type FailbackRenderer struct {
	renderers []Renderer
}

func NewFailbackRenderer(renderers ...Renderer) *FailbackRenderer {
	return &FailbackRenderer{renderers: renderers}
}

func (r *FailbackRenderer) Render(ctx context.Context, d *Directive) (string, error) {
	var lastErr error
	for _, renderer := range r.renderers {
		message, err := renderer.Render(ctx, d)
		if err == nil {
			return message, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all renderers failed: %w", lastErr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	_ Renderer = (*LocalRenderer)(nil)
	_ Renderer = (*FailbackRenderer)(nil)
)
