package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pptx-translator/internal/pipeline"
	"pptx-translator/internal/terminology"
)

func newTerminologyCommand(ctx *commandContext) *cobra.Command {
	termCmd := &cobra.Command{
		Use:   "terminology",
		Short: "Manage the shared terminology resource",
	}

	termCmd.AddCommand(&cobra.Command{
		Use:   "import <terms.csv>",
		Short: "Upload a CSV terminology file without translating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			backends, err := pipeline.NewBackends(cmd.Context(), cfg, false, logger)
			if err != nil {
				return err
			}
			defer backends.Close()

			loader := terminology.NewLoader(backends.Importer, cfg.TerminologyLockPath(), logger)
			defer loader.Release()

			names, err := loader.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported terminology %s\n", strings.Join(names, ", "))
			return nil
		},
	})

	return termCmd
}
