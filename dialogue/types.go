package dialogue

import (
	"context"

	"github.com/tbxark/slotagent/types"
)

// Directive is the symbolic instruction handed to the response generator
// for one turn.
type Directive struct {
	Phase     types.Phase    `json:"phase"`
	Collected map[string]any `json:"collected"`
	// Remaining lists the fields with a question that are not collected yet,
	// in declaration order.
	Remaining    []string `json:"remaining"`
	NextField    string   `json:"next_field,omitempty"`
	NextQuestion string   `json:"next_question,omitempty"`
	// ErrorDirective is the first error in declaration order. When set it
	// takes precedence over the next question.
	ErrorField       string   `json:"error_field,omitempty"`
	ErrorDirective   string   `json:"error_directive,omitempty"`
	UpdateDirective  string   `json:"update_directive,omitempty"`
	Acknowledgements []string `json:"acknowledgements,omitempty"`
}

type ComposeInput struct {
	Phase    types.Phase
	Accepted map[string]any
	Errors   map[string]string
	Diff     []types.DiffEntry
}

// Renderer turns a directive into the message shown to the user.
type Renderer interface {
	Render(ctx context.Context, d *Directive) (string, error)
}
