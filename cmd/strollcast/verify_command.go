package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strollcast/internal/episode"
)

func newVerifyCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <script-file>",
		Short: "Report which segments of a script are missing from the cache",
		Long: "Verify parses the script, derives each speech segment's cache key, and " +
			"probes the cache for it. No synthesis calls are made. The command fails " +
			"when entries are missing, so it can gate cache-only assembly.",
		Args: cobra.ExactArgs(1),
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

			verifier := episode.NewVerifier(cfg, store, cctx.ensureLogger())
			report, err := verifier.Verify(cmd.Context(), string(content))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Complete() {
				fmt.Fprintf(out, "All %d speech segments are cached\n", report.SpeechSegments)
				return nil
			}

			rows := make([][]string, 0, len(report.Missing))
			for _, m := range report.Missing {
				rows = append(rows, []string{
					fmt.Sprintf("%d", m.Index),
					string(m.Speaker),
					m.Key,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Segment", "Speaker", "Cache Key"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return fmt.Errorf("%d of %d speech segments missing from cache", len(report.Missing), report.SpeechSegments)
		},
	}
	return cmd
}
