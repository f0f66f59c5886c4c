package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/slotagent/agent"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	slog.SetLogLoggerLevel(config.level())
	ctx = agent.WithSessionKey(ctx, config.SessionKey)

	spec, err := newBookingSpec(config)
	if err != nil {
		return err
	}
	flow, err := agent.NewFlow(spec)
	if err != nil {
		return err
	}
	sessions := agent.NewSessionStore(agent.NewMemoryCache[*agent.Session](agent.WithIdleTTL(config.sessionTTL())))
	historyStore := agent.NewMemoryHistoryStore(agent.KeepSystemLastNTrimmer{N: config.HistoryWindow})
	bookingAgent := agent.NewAgent(
		"BookingAgent",
		"An agent that books clinic appointments via conversation",
		flow,
		sessions,
		agent.WithResultManager(&BookingManager{}),
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: bookingAgent,
	})

	sess, err := sessions.Load(ctx)
	if err != nil {
		return err
	}
	first, err := flow.Current(ctx, sess)
	if err != nil {
		return err
	}
	fmt.Println("Type entities as name=value pairs separated by ';' (or a JSON array), 'reset' to start over, 'exit' to quit.")
	fmt.Printf("\nAssistant: %s\n======\n", first.NextQuestion)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("User: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Bye.")
			break
		}
		input = toIntake(strings.TrimSpace(input))
		history, rErr := historyStore.Append(ctx, schema.UserMessage(input))
		if rErr != nil {
			return rErr
		}
		iter := runner.Run(ctx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			if _, apErr := historyStore.Append(ctx, msg); apErr != nil {
				return apErr
			}
			fmt.Printf("\nAssistant: %v\n======\n", msg.Content)
			if msg.Extra["command"] == "exit" {
				return historyStore.Clear(ctx)
			}
			if resp, ok := agent.ResponseFromMessage(msg); ok && resp.Terminal() {
				_ = historyStore.Clear(ctx)
				_ = sessions.Remove(ctx)
			}
		}
	}
	return nil
}

// toIntake turns "first_name=Ada; phone=555-123-4567" into the JSON entity
// array the flow reads. Anything else is passed through.
func toIntake(line string) string {
	if line == "" || strings.HasPrefix(line, "[") || !strings.Contains(line, "=") {
		return line
	}
	var records []map[string]string
	for _, pair := range strings.Split(line, ";") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		records = append(records, map[string]string{
			"name":  strings.TrimSpace(name),
			"value": strings.TrimSpace(value),
		})
	}
	out, err := sonic.MarshalString(records)
	if err != nil {
		return line
	}
	return out
}
