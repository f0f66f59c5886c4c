package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/slotagent/command"
	"github.com/tbxark/slotagent/dialogue"
	"github.com/tbxark/slotagent/types"
)

// ResponseExtraKey is the Extra key under which the assistant message
// carries the turn *Response.
const ResponseExtraKey = "slotagent_response"

const DefaultExitMessage = "Goodbye."

// ResultManager receives the final result of a session.
type ResultManager interface {
	Complete(ctx context.Context, result *types.Result) error
	Fail(ctx context.Context, result *types.Result) error
}

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a Flow as an adk.Agent. The last input message is the
// extraction result of the user turn; the session is routed by the session
// key of the context.
type Agent struct {
	name        string
	description string
	flow        *Flow
	sessions    *SessionStore
	renderer    dialogue.Renderer
	commands    command.Parser
	manager     ResultManager
	exitMessage string
	logger      *slog.Logger
}

type AgentOption func(*Agent)

func WithRenderer(r dialogue.Renderer) AgentOption {
	return func(a *Agent) {
		a.renderer = r
	}
}

func WithCommandParser(p command.Parser) AgentOption {
	return func(a *Agent) {
		a.commands = p
	}
}

func WithResultManager(m ResultManager) AgentOption {
	return func(a *Agent) {
		a.manager = m
	}
}

func WithExitMessage(message string) AgentOption {
	return func(a *Agent) {
		a.exitMessage = message
	}
}

func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

func NewAgent(name, description string, flow *Flow, sessions *SessionStore, opts ...AgentOption) *Agent {
	a := &Agent{
		name:        name,
		description: description,
		flow:        flow,
		sessions:    sessions,
		renderer:    &dialogue.LocalRenderer{},
		commands:    command.NewLocalCommandParser(),
		exitMessage: DefaultExitMessage,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.sessions == nil {
		a.sessions = NewMemorySessionStore()
	}
	return a
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		msg, err := a.Handle(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("slot flow failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     msg,
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}

// Handle runs one user turn synchronously and returns the assistant message.
// Reset and exit commands are handled before the flow sees the input.
func (a *Agent) Handle(ctx context.Context, input string) (*schema.Message, error) {
	sess, err := a.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	cmd, err := a.commands.ParseCommand(ctx, input)
	if err != nil {
		a.logger.Warn("Command parser failed, treating input as entities", "error", err)
		cmd = command.None
	}

	var resp *Response
	switch cmd {
	case command.Exit:
		if err := a.sessions.Remove(ctx); err != nil {
			return nil, fmt.Errorf("remove session: %w", err)
		}
		msg := schema.AssistantMessage(a.exitMessage, nil)
		msg.Extra = map[string]any{"command": string(command.Exit)}
		return msg, nil
	case command.Reset:
		if err := a.flow.Reset(ctx, sess); err != nil {
			return nil, err
		}
		resp, err = a.flow.Current(ctx, sess)
	default:
		resp, err = a.flow.Turn(ctx, sess, input)
		if err == nil && resp.Finished {
			a.finish(ctx, resp)
		}
	}
	if err != nil {
		return nil, err
	}

	content, err := a.renderer.Render(ctx, resp.Directive)
	if err != nil {
		return nil, fmt.Errorf("render response: %w", err)
	}
	msg := schema.AssistantMessage(content, nil)
	msg.Extra = map[string]any{ResponseExtraKey: resp}
	return msg, nil
}

func (a *Agent) finish(ctx context.Context, resp *Response) {
	if a.manager == nil || resp.Result == nil {
		return
	}
	var err error
	switch resp.Result.Status {
	case types.StatusCompleted:
		err = a.manager.Complete(ctx, resp.Result)
	case types.StatusFailed:
		err = a.manager.Fail(ctx, resp.Result)
	}
	if err != nil {
		a.logger.Error("Result manager failed", "session", resp.SessionID, "status", resp.Result.Status, "error", err)
	}
}

// ResponseFromMessage returns the turn response attached by the agent.
func ResponseFromMessage(msg *schema.Message) (*Response, bool) {
	if msg == nil || msg.Extra == nil {
		return nil, false
	}
	resp, ok := msg.Extra[ResponseExtraKey].(*Response)
	return resp, ok
}
