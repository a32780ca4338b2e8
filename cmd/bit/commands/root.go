// Package commands provides the CLI commands for the bit workspace tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devopsascode/bit/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	cwd       string
	logLevel  string
	printLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "bit",
	Short: "bit - workspace configuration tool",
	Long: `bit resolves a workspace configuration from bit.jsonc (or a legacy
bit.json), and exposes the resolved settings, per-component overrides,
and per-extension configuration.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.ParseLevel(logLevel)
		if !printLogs {
			level = logging.ParseLevel("ERROR")
		}
		logging.Init(logging.Options{Level: level, Pretty: true})
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cwd, "cwd", "", "Working directory (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")

	rootCmd.SetVersionTemplate(fmt.Sprintf("bit %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// workDir returns the directory commands operate on.
func workDir() (string, error) {
	if cwd != "" {
		return cwd, nil
	}
	return os.Getwd()
}
