package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slotagent",
	Short: "slotagent runs slot-filling processes declared in YAML",
	Long: `slotagent loads a process declaration, reads extraction results turn by turn
and prints the directives a response generator would be given.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		conf, err := loadConfig(path)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); cmd.Flags().Changed("log-level") {
			conf.Log.Level = level
		}
		cliConfig = conf
		slog.SetDefault(conf.Log.logger(os.Stderr))
		return nil
	},
	SilenceUsage: true,
}

var cliConfig = defaultConfig()

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	Execute()
}
