package cmd

import (
	"github.com/mj1618/docbind/internal/command"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the document's drawings and positional elements",
	Long: `Scan the document through both inventories: the drawing-object list
(document-level) and the positional element walk. Every entry carries its
classification. Entries are not deduplicated across the two sources.

Examples:
  docbind scan --document report.yaml
  docbind scan --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatchOnce(cmd.Context(), command.Request{Command: command.ScanDocument})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize charts and their recovered bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatchOnce(cmd.Context(), command.Request{Command: command.GetBindingSummary})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(summaryCmd)
}
