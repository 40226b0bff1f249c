package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strollcast/internal/catalog"
	"strollcast/internal/fileutil"
	"strollcast/internal/logging"
	"strollcast/internal/paper"
	"strollcast/internal/textutil"
)

func newScriptCommand(cctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "script <arxiv-id-or-url>",
		Short: "Generate a dialogue script from an arXiv paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := cctx.ensureLogger()

			arxivID, err := paper.ExtractID(args[0])
			if err != nil {
				return err
			}

			fetcher := paper.NewFetcher()
			meta, err := fetcher.FetchMetadata(cmd.Context(), arxivID)
			if err != nil {
				return err
			}
			logger.Info("paper metadata fetched",
				logging.String("arxiv_id", arxivID),
				logging.String("title", meta.Title))

			content, source := fetcher.FetchContent(cmd.Context(), meta)
			logger.Info("paper content fetched", logging.String("source", source))

			writer := paper.NewScriptWriter(paper.WriterConfig{
				APIKey:         cfg.ScriptGen.APIKey,
				BaseURL:        cfg.ScriptGen.BaseURL,
				Model:          cfg.ScriptGen.Model,
				Referer:        cfg.ScriptGen.Referer,
				Title:          cfg.ScriptGen.Title,
				TimeoutSeconds: cfg.ScriptGen.TimeoutSeconds,
			})
			script, err := writer.WriteScript(cmd.Context(), paper.BuildPrompt(meta, content))
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				stem := catalog.DeriveEpisodeName(strings.Join(meta.Authors, ", "), meta.Year(), arxivID)
				target = textutil.SanitizeFileName(stem) + ".md"
			}
			if err := fileutil.WriteFileAtomic(target, []byte(script), 0o644); err != nil {
				return fmt.Errorf("write script: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:   %s\n", meta.Title)
			fmt.Fprintf(out, "Source:  %s\n", source)
			fmt.Fprintf(out, "Script:  %s\n", target)
			if source == paper.SourceAbstract {
				fmt.Fprintln(out, "Note: full paper content was unavailable; review the script before generating audio.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Script output path (defaults to <author>-<year>-<id>.md)")
	return cmd
}
