package testcases

import (
	"context"
	"strings"
	"testing"

	"github.com/tbxark/slotagent/command"
)

// CustomCommandParser recognises a few extra phrasings.
type CustomCommandParser struct{}

func (p *CustomCommandParser) ParseCommand(ctx context.Context, input string) (command.Command, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "never mind", "scrap that":
		return command.Reset, nil
	case "that's all":
		return command.Exit, nil
	default:
		return command.None, nil
	}
}

// TestCustomCommandParser chains a custom parser before the keyword parser.
func TestCustomCommandParser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	parser := command.NewFailbackCommandParser(&CustomCommandParser{}, command.NewLocalCommandParser())
	agent := NewTestAgent(t, WithCommandParser(parser))

	agent.Say(ctx, "first_name", "Nathan")
	if _, _, err := agent.Invoke(ctx, "Never mind"); err != nil {
		t.Fatalf("custom reset failed: %v", err)
	}
	if len(agent.Values(ctx)) != 0 {
		t.Errorf("slots after custom reset = %v", agent.Values(ctx))
	}

	agent.Say(ctx, "first_name", "Nathan")
	if _, _, err := agent.Invoke(ctx, "restart"); err != nil {
		t.Fatalf("keyword reset failed: %v", err)
	}
	if len(agent.Values(ctx)) != 0 {
		t.Errorf("slots after keyword reset = %v", agent.Values(ctx))
	}
}

// TestLocalParserCustomization replaces the default keywords.
func TestLocalParserCustomization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	parser := command.NewLocalCommandParser()
	parser.ResetKeywords = []string{"again"}
	agent := NewTestAgent(t, WithCommandParser(parser))

	agent.Say(ctx, "first_name", "Nathan")

	// "reset" is no longer a command and reaches the flow as an empty turn
	_, resp, err := agent.Invoke(ctx, "reset")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if resp.Collected["first_name"] != "Nathan" {
		t.Errorf("first_name = %v, want Nathan kept", resp.Collected["first_name"])
	}

	if _, _, err := agent.Invoke(ctx, "AGAIN"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(agent.Values(ctx)) != 0 {
		t.Errorf("slots after reset = %v", agent.Values(ctx))
	}
}
