package cmd

import (
	"github.com/mj1618/docbind/internal/output"
	"github.com/mj1618/docbind/internal/version"
	"github.com/spf13/cobra"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `yaml:"version"   json:"version"`
	Commit    string `yaml:"commit"    json:"commit"`
	BuildDate string `yaml:"buildDate" json:"buildDate"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(VersionInfo{Version: version.Version, Commit: version.Commit, BuildDate: version.BuildDate})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
