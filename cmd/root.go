package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/docbind/internal/config"
	"github.com/mj1618/docbind/internal/logger"
	"github.com/mj1618/docbind/internal/output"
	"github.com/mj1618/docbind/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// appConfig and appLogger are populated by the root pre-run hook.
	appConfig = config.Default()
	appLogger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "docbind",
	Short: "Bind data to document elements and detect what the cursor touches",
	Long: `docbind drives an embedded document editor on behalf of a host page: it
inserts bound fields, links, tables, shapes and WordArt, attaches data
payloads to charts, and reports which element the selection touches.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json, table")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $HOME/.docbind.yaml or ./.docbind.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("document", "", "YAML document fixture (default: built-in sample)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if debug, _ := rootCmd.PersistentFlags().GetBool("debug"); debug {
			cfg.Debug = true
		}
		if doc, _ := rootCmd.PersistentFlags().GetString("document"); doc != "" {
			cfg.Document = doc
		}

		log, err := logger.New(cfg.Log.Level, cfg.Debug)
		if err != nil {
			return err
		}
		appConfig, appLogger = cfg, log

		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = appLogger.Sync()
	}
}
