package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pptx-translator/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List supported target languages",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list := language.Standard().List()
			rows := make([][]string, 0, len(list))
			for _, lang := range list {
				rows = append(rows, []string{lang.Code, lang.Name, lang.Locale})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Code", "Name", "Locale"}, rows))
			return nil
		},
	}
}
