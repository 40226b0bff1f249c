package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strollcast/internal/catalog"
)

func newCatalogCommand(cctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Episode catalog utilities",
	}
	catalogCmd.AddCommand(newCatalogListCommand(cctx))
	catalogCmd.AddCommand(newCatalogShowCommand(cctx))
	return catalogCmd
}

func newCatalogListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			episodes, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes cataloged")
				return nil
			}

			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				rows = append(rows, []string{
					ep.ID,
					ep.Title,
					fmt.Sprintf("%d", ep.Year),
					ep.Duration,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Year", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newCatalogShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <episode-id>",
		Short: "Show one cataloged episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			ep, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", ep.ID)
			fmt.Fprintf(out, "Title:       %s\n", ep.Title)
			fmt.Fprintf(out, "Authors:     %s\n", ep.Authors)
			fmt.Fprintf(out, "Year:        %d\n", ep.Year)
			fmt.Fprintf(out, "Duration:    %s\n", ep.Duration)
			fmt.Fprintf(out, "Audio:       %s\n", ep.AudioURL)
			if ep.TranscriptURL != "" {
				fmt.Fprintf(out, "Transcript:  %s\n", ep.TranscriptURL)
			}
			if ep.PaperURL != "" {
				fmt.Fprintf(out, "Paper:       %s\n", ep.PaperURL)
			}
			if len(ep.Topics) > 0 {
				fmt.Fprintf(out, "Topics:      %v\n", ep.Topics)
			}
			if ep.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", ep.Description)
			}
			return nil
		},
	}
}
