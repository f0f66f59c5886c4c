package agent

import (
	"github.com/tbxark/slotagent/dialogue"
	"github.com/tbxark/slotagent/patch"
	"github.com/tbxark/slotagent/types"
)

// Response is the output of one turn.
type Response struct {
	SessionID string `json:"session_id"`
	*dialogue.Directive
	Errors   map[string]string `json:"errors"`
	Diff     []types.DiffEntry `json:"diff"`
	// Patch replays Diff on a client copy of the collected values.
	Patch    []patch.Operation `json:"patch"`
	Result   *types.Result     `json:"result,omitempty"`
	// Finished is set on the turn that moved the session into a terminal
	// phase.
	Finished bool              `json:"finished,omitempty"`
}

func (r *Response) Terminal() bool {
	return r.Directive != nil && r.Phase.Terminal()
}
