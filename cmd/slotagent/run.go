package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tbxark/slotagent/agent"
	"github.com/tbxark/slotagent/calendar"
	"github.com/tbxark/slotagent/command"
	"github.com/tbxark/slotagent/dialogue"
	"github.com/tbxark/slotagent/form"
)

var runCmd = &cobra.Command{
	Use:   "run <process.yaml>",
	Short: "Run a process interactively",
	Long: `Reads one extraction result per line from stdin (a JSON array of
{"name", "value"} records) and prints the response of each turn.
"reset" starts over and "exit" quits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := *cliConfig
		if cmd.Flags().Changed("output") {
			conf.Output, _ = cmd.Flags().GetString("output")
		}
		if cmd.Flags().Changed("metrics-addr") {
			conf.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		if cmd.Flags().Changed("checkpoint") {
			conf.Checkpoint, _ = cmd.Flags().GetString("checkpoint")
		}
		return runSession(cmd.Context(), args[0], &conf, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", "text", "output format (text, markdown, json)")
	runCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().String("checkpoint", "", "resume from and save the session to this file")
}

func loadProcess(path string, conf *Config) (*form.Spec, error) {
	var opts []form.SpecOption
	if len(conf.Calendar.Slots) > 0 {
		booking := calendar.Booking{
			Calendar:   calendar.New(conf.Calendar.Slots...),
			SlotLength: conf.Calendar.SlotLength,
			MinGrain:   conf.Calendar.MinGrain,
		}
		opts = append(opts, form.WithRules(booking.Rule()))
	}
	return form.LoadYAMLFile(path, opts...)
}

func runSession(ctx context.Context, path string, conf *Config, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	spec, err := loadProcess(path, conf)
	if err != nil {
		return err
	}

	flowOpts := []agent.FlowOption{agent.WithLogger(slog.Default())}
	if conf.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, mErr := agent.NewMetrics(reg)
		if mErr != nil {
			return mErr
		}
		flowOpts = append(flowOpts, agent.WithMetrics(metrics))
		serveMetrics(conf.MetricsAddr, reg)
	}
	flow, err := agent.NewFlow(spec, flowOpts...)
	if err != nil {
		return err
	}

	sessions := agent.NewMemorySessionStore()
	if conf.Checkpoint != "" {
		if err := restoreCheckpoint(ctx, flow, sessions, conf.Checkpoint); err != nil {
			return err
		}
	}
	a := agent.NewAgent(spec.Name(), spec.Description(), flow, sessions)

	sess, err := sessions.Load(ctx)
	if err != nil {
		return err
	}
	first, err := flow.Current(ctx, sess)
	if err != nil {
		return err
	}
	if err := printResponse(ctx, out, conf.Output, first); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := a.Handle(ctx, line)
		if err != nil {
			return err
		}
		if msg.Extra["command"] == string(command.Exit) {
			fmt.Fprintln(out, msg.Content)
			return nil
		}
		resp, ok := agent.ResponseFromMessage(msg)
		if !ok {
			fmt.Fprintln(out, msg.Content)
			continue
		}
		if err := printResponse(ctx, out, conf.Output, resp); err != nil {
			return err
		}
		if conf.Checkpoint != "" {
			if err := saveCheckpoint(ctx, flow, sessions, conf.Checkpoint); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func printResponse(ctx context.Context, out io.Writer, format string, resp *agent.Response) error {
	switch format {
	case "json":
		data, err := sonic.MarshalString(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, data)
		return err
	case "markdown":
		_, err := fmt.Fprintf(out, "%s\n\n", dialogue.FormatMarkdown(resp.Directive))
		return err
	default:
		renderer := &dialogue.LocalRenderer{}
		text, err := renderer.Render(ctx, resp.Directive)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}
}

func restoreCheckpoint(ctx context.Context, flow *agent.Flow, sessions *agent.SessionStore, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	sess, err := flow.Restore(ctx, data)
	if err != nil {
		return err
	}
	slog.Info("Resumed session", "session", sess.ID, "phase", sess.State.Phase)
	return sessions.Put(ctx, sess)
}

func saveCheckpoint(ctx context.Context, flow *agent.Flow, sessions *agent.SessionStore, path string) error {
	sess, err := sessions.Get(ctx)
	if err != nil {
		return err
	}
	data, err := flow.Checkpoint(ctx, sess)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()
}
