package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devopsascode/bit/internal/workspace"
)

var (
	initDefaultScope     string
	initDefaultDirectory string
	initLang             string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace configuration",
	Long: `Creates a bit.jsonc in the working directory from the scaffold
template, or loads the existing configuration when one is already present
(including a legacy bit.json).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workDir()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		resolver := workspace.NewResolver()

		existing, err := resolver.LoadIfExist(ctx, dir)
		if err != nil {
			return err
		}
		if existing != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "workspace already initialized (%s config at %s)\n",
				existing.Kind(), existing.Path())
			return nil
		}

		cfg, err := resolver.Ensure(ctx, dir, initProps())
		if err != nil {
			return err
		}
		if err := resolver.Write(ctx, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized workspace at %s\n", cfg.Path())
		return nil
	},
}

func initProps() map[string]any {
	ws := make(map[string]any)
	if initDefaultScope != "" {
		ws["defaultScope"] = initDefaultScope
	}
	if initDefaultDirectory != "" {
		ws["componentsDefaultDirectory"] = initDefaultDirectory
	}
	if initLang != "" {
		ws["lang"] = initLang
	}
	if len(ws) == 0 {
		return nil
	}
	return map[string]any{"workspace": ws}
}

func init() {
	initCmd.Flags().StringVar(&initDefaultScope, "default-scope", "", "Default scope for exported components")
	initCmd.Flags().StringVar(&initDefaultDirectory, "default-directory", "", "Directory for new components")
	initCmd.Flags().StringVar(&initLang, "lang", "", "Workspace implementation language")
}
