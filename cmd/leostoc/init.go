package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l-e-x/leos-sub016/internal/config"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and a default config file",
	Long: `Create the leostoc home directory with its templates/ and documents/
subdirectories, and write a default config.yaml.

Structure definitions placed in templates/ as <template>.yaml take precedence
over the built-in ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := svcctx.HomeFrom(cmd.Context())
		logger := svcctx.LoggerFrom(cmd.Context())

		if err := h.EnsureExists(); err != nil {
			return err
		}

		if h.ConfigExists() && !initForce {
			fmt.Fprintf(cmd.OutOrStdout(), "config already exists: %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		logger.Info("home initialized", "path", h.Path())
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}
