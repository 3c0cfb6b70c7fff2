// Command vanorg runs the Van Organizer Builder: an upload service that
// turns route-sheet PDFs into a stacked PDF, a bag workbook and a
// mobile organizer page. The stack and organizer subcommands run the
// same builders once from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	rootCmd = &cobra.Command{
		Use:   "vanorg",
		Short: "Van Organizer Builder",
		Long: `vanorg builds van loading artifacts from route-sheet PDFs:
a stacked per-route PDF with a linked cover sheet, a bag/overflow
workbook, and a phone-friendly organizer page.

Run "vanorg serve" for the upload service, or "stack" / "workbook" /
"organizer" to build single artifacts from the shell.`,
	}
)

func init() {
	viper.SetDefault("port", 8000)
	viper.SetDefault("state_dir", "/tmp/vanorg_jobs")
	_ = viper.BindEnv("port", "PORT")
	_ = viper.BindEnv("state_dir", "VANORG_STATE_DIR")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stackCmd)
	rootCmd.AddCommand(workbookCmd)
	rootCmd.AddCommand(organizerCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}
