package command

import (
	"context"
	"fmt"
	"strings"
)

// LocalCommandParser matches whole-message keywords, ignoring case and
// surrounding whitespace.
type LocalCommandParser struct {
	ResetKeywords []string
	ExitKeywords  []string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		ResetKeywords: []string{"reset", "restart", "start over", "/reset"},
		ExitKeywords:  []string{"exit", "quit", "bye", "/exit"},
	}
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, keyword := range p.ResetKeywords {
		if normalized == keyword {
			return Reset, nil
		}
	}
	for _, keyword := range p.ExitKeywords {
		if normalized == keyword {
			return Exit, nil
		}
	}
	return None, nil
}

type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

// ParseCommand returns the first command recognised by any parser.
func (p *FailbackCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, input)
		if err != nil {
			lastErr = err
			continue
		}
		if cmd != None {
			return cmd, nil
		}
	}
	if lastErr != nil {
		return None, fmt.Errorf("all command parsers failed: %w", lastErr)
	}
	return None, nil
}

var (
	_ Parser = (*LocalCommandParser)(nil)
	_ Parser = (*FailbackCommandParser)(nil)
)
