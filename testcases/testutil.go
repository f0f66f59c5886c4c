package testcases

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/tbxark/slotagent/agent"
	"github.com/tbxark/slotagent/command"
	"github.com/tbxark/slotagent/types"
)

type agentOptions struct {
	commandParser command.Parser
	manager       agent.ResultManager
	sessions      *agent.SessionStore
}

type AgentOption func(*agentOptions)

func WithCommandParser(parser command.Parser) AgentOption {
	return func(o *agentOptions) {
		o.commandParser = parser
	}
}

func WithResultManager(manager agent.ResultManager) AgentOption {
	return func(o *agentOptions) {
		o.manager = manager
	}
}

func WithSessions(sessions *agent.SessionStore) AgentOption {
	return func(o *agentOptions) {
		o.sessions = sessions
	}
}

// TestAgent drives the booking agent the way a chat frontend would.
type TestAgent struct {
	t        *testing.T
	Flow     *agent.Flow
	Agent    *agent.Agent
	Sessions *agent.SessionStore
}

func NewTestAgent(t *testing.T, opts ...AgentOption) *TestAgent {
	t.Helper()
	o := &agentOptions{}
	for _, opt := range opts {
		opt(o)
	}
	spec, err := BookingSpec()
	if err != nil {
		t.Fatalf("load booking spec: %v", err)
	}
	flow, err := agent.NewFlow(spec)
	if err != nil {
		t.Fatalf("create flow: %v", err)
	}
	if o.sessions == nil {
		o.sessions = agent.NewMemorySessionStore()
	}
	agentOpts := []agent.AgentOption{agent.WithResultManager(o.manager)}
	if o.commandParser != nil {
		agentOpts = append(agentOpts, agent.WithCommandParser(o.commandParser))
	}
	return &TestAgent{
		t:        t,
		Flow:     flow,
		Agent:    agent.NewAgent("BookingAgent", "Books clinic appointments", flow, o.sessions, agentOpts...),
		Sessions: o.sessions,
	}
}

// Invoke sends input as one user turn and returns the rendered reply and
// the turn response. Command replies carry no response.
func (a *TestAgent) Invoke(ctx context.Context, input string) (string, *agent.Response, error) {
	msg, err := a.Agent.Handle(ctx, input)
	if err != nil {
		return "", nil, err
	}
	resp, _ := agent.ResponseFromMessage(msg)
	return msg.Content, resp, nil
}

// Say is Invoke with the entity intake built from name/value pairs.
func (a *TestAgent) Say(ctx context.Context, pairs ...any) (string, *agent.Response) {
	a.t.Helper()
	content, resp, err := a.Invoke(ctx, Entities(a.t, pairs...))
	if err != nil {
		a.t.Fatalf("invoke: %v", err)
	}
	if resp == nil {
		a.t.Fatalf("no response attached to %q", content)
	}
	return content, resp
}

func (a *TestAgent) Phase(ctx context.Context) types.Phase {
	a.t.Helper()
	sess, err := a.Sessions.Load(ctx)
	if err != nil {
		a.t.Fatalf("load session: %v", err)
	}
	return sess.State.Phase
}

func (a *TestAgent) Values(ctx context.Context) map[string]any {
	a.t.Helper()
	sess, err := a.Sessions.Load(ctx)
	if err != nil {
		a.t.Fatalf("load session: %v", err)
	}
	values, err := sess.State.Slots.Snapshot(ctx)
	if err != nil {
		a.t.Fatalf("snapshot: %v", err)
	}
	return values
}

// Entities encodes name/value pairs as an extraction result.
func Entities(t *testing.T, pairs ...any) string {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("entities need name/value pairs, got %d items", len(pairs))
	}
	records := make([]map[string]any, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		records = append(records, map[string]any{"name": pairs[i], "value": pairs[i+1]})
	}
	out, err := sonic.MarshalString(records)
	if err != nil {
		t.Fatalf("encode entities: %v", err)
	}
	return out
}

type recordedResults struct {
	completed []*types.Result
	failed    []*types.Result
}

func (r *recordedResults) Complete(ctx context.Context, result *types.Result) error {
	r.completed = append(r.completed, result)
	return nil
}

func (r *recordedResults) Fail(ctx context.Context, result *types.Result) error {
	r.failed = append(r.failed, result)
	return nil
}
