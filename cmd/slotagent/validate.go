package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tbxark/slotagent/form"
)

var validateCmd = &cobra.Command{
	Use:   "validate <process.yaml>...",
	Short: "Check process declarations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			spec, err := form.LoadYAMLFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s is valid (%d fields, required: %s, error threshold %d)\n",
				path, spec.Name(), len(spec.Fields()), strings.Join(spec.Required(), ", "), spec.ErrorThreshold())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d declarations are invalid", failed, len(args))
		}
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <process.yaml>",
	Short: "Print the JSON schema of the entities a process accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := form.LoadYAMLFile(args[0])
		if err != nil {
			return err
		}
		schema, err := spec.JsonSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), schema)
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
}
