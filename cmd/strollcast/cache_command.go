package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"strollcast/internal/episode"
	"strollcast/internal/segmentcache"
)

func newCacheCommand(cctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Segment cache utilities",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(cctx))
	cacheCmd.AddCommand(newCachePopulateCommand(cctx))
	return cacheCmd
}

func newCachePopulateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "populate <script-file>",
		Short: "Synthesize and cache every segment of a script without assembling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			store, err := cctx.segmentStore(cmd.Context())
			if err != nil {
				return err
			}
			synth, err := cctx.synthesizer()
			if err != nil {
				return err
			}

			gen := episode.New(cfg, synth, store, cctx.ensureLogger())
			stats, err := gen.Populate(cmd.Context(), string(content))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Speech segments", fmt.Sprintf("%d", stats.SpeechSegments)},
					{"Already cached", fmt.Sprintf("%d", stats.CacheHits)},
					{"Synthesized", fmt.Sprintf("%d", stats.SynthesisCalls)},
					{"Single-pass fallbacks", fmt.Sprintf("%d", stats.SinglePassRuns)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newCacheStatsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show local segment cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			store := segmentcache.NewFSStore(cfg.Cache.Dir, cctx.ensureLogger())
			stats, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Directory", store.Dir()},
					{"Entries", fmt.Sprintf("%d", stats.Entries)},
					{"Total size", humanize.Bytes(uint64(stats.TotalBytes))},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			if cfg.Storage.Enabled {
				fmt.Fprintln(out, "Remote cache enabled; these statistics cover the local cache only.")
			}
			return nil
		},
	}
}
