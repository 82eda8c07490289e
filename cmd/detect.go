package cmd

import (
	"fmt"

	"github.com/mj1618/docbind/internal/command"
	"github.com/spf13/cobra"
)

// detectKinds maps detect --kind values to click commands.
var detectKinds = map[string]string{
	"link":    command.DetectLinkClick,
	"table":   command.DetectTableClick,
	"cell":    command.DetectPreciseTableCellClick,
	"binding": command.DetectBindingClick,
	"element": command.DetectElementClick,
	"chart":   command.DetectChartClick,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report what the current selection touches",
	Long: `Run one disambiguation pass over the document's selection and report the
active element: content control, link, table cell, chart, shape, text or the
document itself. With --kind, run a single click detector instead.

Examples:
  docbind detect --document report.yaml
  docbind detect --kind chart`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		name := command.ReportActiveState
		if kind != "" {
			var ok bool
			if name, ok = detectKinds[kind]; !ok {
				return fmt.Errorf("unsupported kind: %s (use link, table, cell, binding, element, or chart)", kind)
			}
		}
		return dispatchOnce(cmd.Context(), command.Request{Command: name})
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().String("kind", "", "Run one click detector: link, table, cell, binding, element, chart")
}
