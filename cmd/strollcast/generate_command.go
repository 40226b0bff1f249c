package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"strollcast/internal/catalog"
	"strollcast/internal/deps"
	"strollcast/internal/episode"
	"strollcast/internal/logging"
	"strollcast/internal/storage"
	"strollcast/internal/textutil"
)

func newGenerateCommand(cctx *commandContext) *cobra.Command {
	var (
		name        string
		publish     bool
		episodeID   string
		title       string
		authors     string
		year        int
		description string
		paperURL    string
		topics      []string
	)

	cmd := &cobra.Command{
		Use:   "generate <script-file>",
		Short: "Generate an episode from a dialogue script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			toolStatuses := deps.CheckBinaries(deps.ToolRequirements(cfg.Assembly.FFmpegBinary, cfg.Assembly.FFprobeBinary))
			if missing := deps.MissingRequired(toolStatuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s (run \"strollcast deps\" for details)", strings.Join(missing, ", "))
			}

			scriptPath := args[0]
			content, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			episodeName := textutil.SanitizeFileName(name)
			if episodeName == "" {
				episodeName = textutil.SanitizeFileName(strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath)))
			}
			if episodeName == "" {
				return fmt.Errorf("episode name is empty after sanitization")
			}

			lockPath, err := cctx.lockPath()
			if err != nil {
				return err
			}
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another generation run is in progress (lock: %s)", lockPath)
			}
			defer lock.Unlock()

			runID := uuid.NewString()
			logger := cctx.ensureLogger().With(logging.String("run_id", runID))

			store, err := cctx.segmentStore(cmd.Context())
			if err != nil {
				return err
			}
			synth, err := cctx.synthesizer()
			if err != nil {
				return err
			}

			generator := episode.New(cfg, synth, store, logger)
			result, err := generator.Generate(cmd.Context(), string(content), episodeName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats := result.Stats
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Speech segments", fmt.Sprintf("%d", stats.SpeechSegments)},
					{"Cache hits", fmt.Sprintf("%d", stats.CacheHits)},
					{"Synthesis calls", fmt.Sprintf("%d", stats.SynthesisCalls)},
					{"Single-pass fallbacks", fmt.Sprintf("%d", stats.SinglePassRuns)},
					{"Duration", stats.Duration.Truncate(100 * time.Millisecond).String()},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(out, "Episode:    %s\n", result.EpisodePath)
			fmt.Fprintf(out, "Transcript: %s\n", result.TranscriptPath)

			if !publish {
				return nil
			}
			if !cfg.Storage.Enabled {
				return fmt.Errorf("--publish requires storage to be enabled in configuration")
			}

			client, err := storage.NewClient(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			publisher := storage.NewPublisher(client, cfg.Storage.OutputBucket, cfg.Storage.PublicDomain)

			audioURL, err := publisher.PublishEpisode(cmd.Context(), episodeName, result.EpisodePath)
			if err != nil {
				return err
			}
			transcriptID := strings.TrimSpace(episodeID)
			if transcriptID == "" {
				transcriptID = episodeName
			}
			vtt, err := os.ReadFile(result.TranscriptPath)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			transcriptURL, err := publisher.PublishTranscript(cmd.Context(), transcriptID, vtt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Audio URL:      %s\n", audioURL)
			fmt.Fprintf(out, "Transcript URL: %s\n", transcriptURL)

			if !cfg.Catalog.Enabled {
				return nil
			}
			if strings.TrimSpace(episodeID) == "" || strings.TrimSpace(title) == "" {
				fmt.Fprintln(out, "Skipping catalog update (--id and --title required)")
				return nil
			}
			catalogStore, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer catalogStore.Close()

			err = catalogStore.Upsert(cmd.Context(), catalog.Episode{
				ID:              episodeID,
				Title:           title,
				Authors:         authors,
				Year:            year,
				Description:     description,
				Duration:        catalog.FormatDuration(stats.Duration),
				DurationSeconds: int(stats.Duration.Seconds()),
				AudioURL:        audioURL,
				TranscriptURL:   transcriptURL,
				PaperURL:        paperURL,
				Topics:          topics,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Catalog updated: %s\n", episodeID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Episode output name (defaults to the script file stem)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the episode and transcript after generation")
	cmd.Flags().StringVar(&episodeID, "id", "", "Catalog episode id")
	cmd.Flags().StringVar(&title, "title", "", "Episode title for the catalog")
	cmd.Flags().StringVar(&authors, "authors", "", "Paper authors for the catalog")
	cmd.Flags().IntVar(&year, "year", 0, "Publication year for the catalog")
	cmd.Flags().StringVar(&description, "description", "", "Episode description for the catalog")
	cmd.Flags().StringVar(&paperURL, "paper-url", "", "Paper URL for the catalog")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "Episode topics for the catalog")
	return cmd
}
