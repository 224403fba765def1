package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pptx-translator/internal/language"
	"pptx-translator/internal/pipeline"
	"pptx-translator/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "preflight <input.pptx> <target>",
		Short: "Check input, output and backend readiness without translating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, target, err := pipeline.ResolveLanguages(language.Standard(), "", args[1])
			if err != nil {
				return err
			}

			input := args[0]
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Target{
				Input:  input,
				Output: pipeline.OutputPath(input, target.Code),
			}, preflight.Options{Remote: remote})

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows))
			return preflight.Err(results)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also contact the configured backends")
	return cmd
}
