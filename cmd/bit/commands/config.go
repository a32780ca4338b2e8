package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devopsascode/bit/internal/consumer"
	"github.com/devopsascode/bit/internal/workspace"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved workspace configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved settings and per-extension configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		out := map[string]any{
			"kind":       cfg.Kind().String(),
			"path":       cfg.Path(),
			"settings":   cfg.Settings().Fields(),
			"extensions": cfg.ExtensionsConfig(),
		}
		return printJSON(cmd, out)
	},
}

var configComponentCmd = &cobra.Command{
	Use:   "component <component-id>",
	Short: "Print the resolved configuration of one component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveWorkspace(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, cfg.ComponentConfig(args[0]))
	},
}

// resolveWorkspace locates the workspace root from the working directory and
// loads its config.
func resolveWorkspace(cmd *cobra.Command) (*workspace.Config, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}
	root, ok := consumer.FindRoot(dir)
	if !ok {
		return nil, fmt.Errorf("no workspace found at or above %s (run 'bit init' first)", dir)
	}
	cfg, err := workspace.NewResolver().LoadIfExist(cmd.Context(), root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no workspace found at or above %s (run 'bit init' first)", dir)
	}
	return cfg, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configComponentCmd)
}
