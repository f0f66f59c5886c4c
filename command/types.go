package command

import "context"

type Command string

const (
	// Reset clears the session and starts the process over.
	Reset Command = "reset"
	// Exit ends the conversation.
	Exit Command = "exit"
	None Command = "none"
)

type Parser interface {
	ParseCommand(ctx context.Context, input string) (Command, error)
}
