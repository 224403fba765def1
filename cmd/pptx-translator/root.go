package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "pptx-translator <source> <target> <input.pptx>",
		Short:         "Translate PowerPoint decks",
		Long:          "Translate every text run of a .pptx deck and write <name>-<target>.pptx next to it.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	attachTranslateRun(rootCmd, ctx)

	rootCmd.AddCommand(
		newLanguagesCommand(),
		newPreflightCommand(ctx),
		newTerminologyCommand(ctx),
		newMemoryCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}
