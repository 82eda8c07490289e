package cmd

import (
	"github.com/mj1618/docbind/internal/command"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Dispatch one command to the document and print the response",
	Long: `Send a single {command, data} request through the command bus.

Examples:
  docbind run insert-text --data '{"key": "city", "title": "City"}'
  docbind run insert-link --data '{"text": "Docs", "url": "example.com"}'
  docbind run bind-chart-data --data '{"chartIndex": 0, "payload": {"series": [1, 2]}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("data")
		data, err := parseData(raw)
		if err != nil {
			return err
		}
		return dispatchOnce(cmd.Context(), command.Request{Command: args[0], Data: data})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("data", "", "Command payload as JSON or YAML")
}
