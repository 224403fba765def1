package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"pptx-translator/internal/memory"
)

func newMemoryCommand(ctx *commandContext) *cobra.Command {
	memCmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect the local translation memory",
	}

	memCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show stored translations per language pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := memory.Open(cfg.Memory.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			pairs := make([]string, 0, len(stats.Pairs))
			for pair := range stats.Pairs {
				pairs = append(pairs, pair)
			}
			sort.Strings(pairs)
			rows := make([][]string, 0, len(pairs))
			for _, pair := range pairs {
				rows = append(rows, []string{pair, strconv.Itoa(stats.Pairs[pair])})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path: %s\n", stats.Path)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Hits: %d\n", stats.Hits)
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(out, []string{"Pair", "Entries"}, rows, 1))
			}
			return nil
		},
	})

	memCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every stored translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := memory.Open(cfg.Memory.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	})

	return memCmd
}
