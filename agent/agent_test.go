package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/slotagent/command"
	"github.com/tbxark/slotagent/types"
)

type recordingManager struct {
	mu        sync.Mutex
	completed []*types.Result
	failed    []*types.Result
	err       error
}

func (m *recordingManager) Complete(ctx context.Context, result *types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, result)
	return m.err
}

func (m *recordingManager) Fail(ctx context.Context, result *types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, result)
	return m.err
}

func runAgent(t *testing.T, ctx context.Context, a adk.Agent, input string) *schema.Message {
	t.Helper()
	iter := a.Run(ctx, &adk.AgentInput{Messages: []adk.Message{schema.UserMessage(input)}})
	var msg *schema.Message
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		require.NoError(t, event.Err)
		m, err := event.Output.MessageOutput.GetMessage()
		require.NoError(t, err)
		msg = m
	}
	require.NotNil(t, msg)
	return msg
}

func TestAgentConversation(t *testing.T) {
	ctx := WithSessionKey(context.Background(), "user-1")
	manager := &recordingManager{}
	a := NewAgent("AccountAgent", "collects account details", newFlow(t), NewMemorySessionStore(),
		WithResultManager(manager))

	assert.Equal(t, "AccountAgent", a.Name(ctx))
	assert.Equal(t, "collects account details", a.Description(ctx))

	msg := runAgent(t, ctx, a, `[{"name":"first_name","value":"nathan"}]`)
	assert.Equal(t, schema.Assistant, msg.Role)
	assert.Equal(t, "Nice to meet you, Nathan.\nIs Nathan correct?", msg.Content)
	resp, ok := ResponseFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, "confirmation", resp.NextField)

	msg = runAgent(t, ctx, a, `[{"name":"confirmation","value":true}]`)
	resp, ok = ResponseFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, types.PhaseCompleted, resp.Phase)
	require.Len(t, manager.completed, 1)
	assert.Equal(t, map[string]any{"first_name": "Nathan", "confirmation": true}, manager.completed[0].Values)

	runAgent(t, ctx, a, `[{"name":"confirmation","value":true}]`)
	assert.Len(t, manager.completed, 1, "finished sessions are reported once")
}

func TestAgentConcurrentCompletionReportedOnce(t *testing.T) {
	ctx := WithSessionKey(context.Background(), "user-race")
	manager := &recordingManager{}
	a := NewAgent("AccountAgent", "", newFlow(t), NewMemorySessionStore(), WithResultManager(manager))

	_, err := a.Handle(ctx, `[{"name":"first_name","value":"nathan"}]`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, hErr := a.Handle(ctx, `[{"name":"confirmation","value":true}]`)
			assert.NoError(t, hErr)
		}()
	}
	wg.Wait()

	assert.Len(t, manager.completed, 1)
	assert.Empty(t, manager.failed)
}

func TestAgentCommands(t *testing.T) {
	ctx := WithSessionKey(context.Background(), "user-2")
	sessions := NewMemorySessionStore()
	a := NewAgent("AccountAgent", "", newFlow(t), sessions, WithExitMessage("See you."))

	runAgent(t, ctx, a, `[{"name":"first_name","value":"nathan"}]`)

	msg := runAgent(t, ctx, a, "Start Over")
	resp, ok := ResponseFromMessage(msg)
	require.True(t, ok)
	assert.Empty(t, resp.Collected)
	assert.Equal(t, "What is your first name?", msg.Content)

	msg = runAgent(t, ctx, a, "quit")
	assert.Equal(t, "See you.", msg.Content)
	_, err := sessions.Get(ctx)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type brokenParser struct{}

func (brokenParser) ParseCommand(ctx context.Context, input string) (command.Command, error) {
	return command.None, errors.New("unavailable")
}

func TestAgentCommandParserFailureFallsThrough(t *testing.T) {
	ctx := WithSessionKey(context.Background(), "user-3")
	a := NewAgent("AccountAgent", "", newFlow(t), nil, WithCommandParser(brokenParser{}))

	msg := runAgent(t, ctx, a, `[{"name":"first_name","value":"ada"}]`)
	resp, ok := ResponseFromMessage(msg)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"first_name": "Ada"}, resp.Collected)
}

func TestAgentRequiresMessages(t *testing.T) {
	a := NewAgent("AccountAgent", "", newFlow(t), nil)
	iter := a.Run(context.Background(), &adk.AgentInput{})
	event, ok := iter.Next()
	require.True(t, ok)
	assert.Error(t, event.Err)
}
