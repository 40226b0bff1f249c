package episode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"strollcast/internal/audio"
	"strollcast/internal/config"
	"strollcast/internal/fileutil"
	"strollcast/internal/logging"
	"strollcast/internal/media/ffmpeg"
	"strollcast/internal/media/ffprobe"
	"strollcast/internal/script"
	"strollcast/internal/segmentcache"
	"strollcast/internal/services"
	"strollcast/internal/synthesis"
	"strollcast/internal/transcript"
)

// clipNormalizer matches audio.Normalizer. Injected so generation control
// flow is testable without ffmpeg.
type clipNormalizer interface {
	Normalize(ctx context.Context, input, output string) (audio.Mode, error)
}

// clipAssembler matches Assembler for the same reason.
type clipAssembler interface {
	Assemble(ctx context.Context, workDir string, items []Item, outputPath string) (Assembly, error)
}

// Stats summarizes one generation run.
type Stats struct {
	TotalSegments  int
	SpeechSegments int
	PauseSegments  int
	CacheHits      int
	SynthesisCalls int
	SinglePassRuns int
	Duration       time.Duration
}

// Result is the artifact set produced by a successful generation run.
type Result struct {
	EpisodePath    string
	TranscriptPath string
	Timeline       []transcript.Cue
	Stats          Stats
}

// Generator runs the full pipeline for one episode: parse, resolve each
// speech segment to a normalized clip (cache first, synthesis on miss),
// assemble in script order, and emit the transcript.
type Generator struct {
	cfg        *config.Config
	synth      synthesis.Synthesizer
	cache      segmentcache.Store
	normalizer clipNormalizer
	assembler  clipAssembler
	logger     *slog.Logger
}

// New wires a generator from configuration. The synthesizer and cache are
// injected capabilities; the ffmpeg-backed normalizer and assembler are
// built here.
func New(cfg *config.Config, synth synthesis.Synthesizer, cache segmentcache.Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	tool := ffmpeg.NewTool(cfg.Assembly.FFmpegBinary)
	probe := ffprobe.NewInspector(cfg.Assembly.FFprobeBinary)
	enc := encodeParams(cfg)
	target := ffmpeg.LoudnessTarget{
		IntegratedLUFS: cfg.Normalization.TargetLUFS,
		TruePeak:       cfg.Normalization.TruePeak,
		LoudnessRange:  cfg.Normalization.LoudnessRange,
	}
	return &Generator{
		cfg:        cfg,
		synth:      synth,
		cache:      cache,
		normalizer: audio.NewNormalizer(tool, target, enc, logger),
		assembler: NewAssembler(tool, probe, enc,
			time.Duration(cfg.Assembly.UtteranceGapMS)*time.Millisecond,
			time.Duration(cfg.Assembly.SectionGapMS)*time.Millisecond,
			logger),
		logger: logging.NewComponentLogger(logger, "generator"),
	}
}

func encodeParams(cfg *config.Config) ffmpeg.EncodeParams {
	return ffmpeg.EncodeParams{
		SampleRate: cfg.Assembly.SampleRate,
		Channels:   cfg.Assembly.Channels,
		Bitrate:    cfg.Assembly.Bitrate,
	}
}

// buildRequest assembles the synthesis request for one utterance. The same
// construction is used by generation and verification so both derive the
// same cache keys.
func buildRequest(cfg *config.Config, speaker script.Speaker, text string) (synthesis.Request, error) {
	voiceID, err := voiceFor(cfg, speaker)
	if err != nil {
		return synthesis.Request{}, err
	}
	return synthesis.Request{
		Text:            text,
		VoiceID:         voiceID,
		ModelID:         cfg.Synthesis.ModelID,
		Stability:       cfg.Synthesis.Stability,
		SimilarityBoost: cfg.Synthesis.SimilarityBoost,
		Style:           cfg.Synthesis.Style,
		Normalized:      cfg.Normalization.Enabled,
		TargetLUFS:      cfg.Normalization.TargetLUFS,
	}, nil
}

func voiceFor(cfg *config.Config, speaker script.Speaker) (string, error) {
	var voiceID string
	switch speaker {
	case script.SpeakerEric:
		voiceID = cfg.Voices.Eric
	case script.SpeakerMaya:
		voiceID = cfg.Voices.Maya
	}
	if strings.TrimSpace(voiceID) == "" {
		return "", services.Wrap(services.ErrConfiguration, "voices", "", fmt.Sprintf("no voice configured for speaker %s", speaker), nil)
	}
	return voiceID, nil
}

type resolution struct {
	item       Item
	cacheHit   bool
	synthCall  bool
	singlePass bool
	err        error
}

// Generate runs the pipeline for the named episode. On success the run's
// scratch directory is removed; on failure it is kept for inspection.
func (g *Generator) Generate(ctx context.Context, scriptText, name string) (*Result, error) {
	segments, err := script.Parse(scriptText)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "generate", "parse", "", err)
	}

	runDir := filepath.Join(g.cfg.Paths.WorkDir, name)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	if err := os.MkdirAll(g.cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	resolutions := g.resolveAll(ctx, runDir, segments)

	stats := Stats{TotalSegments: len(segments)}
	var failures []error
	items := make([]Item, 0, len(segments))
	for i, res := range resolutions {
		if res.err != nil {
			failures = append(failures, fmt.Errorf("segment %d (%s): %w", i, segments[i].Speaker, res.err))
			continue
		}
		items = append(items, res.item)
		switch res.item.Kind {
		case script.KindSpeech:
			stats.SpeechSegments++
		case script.KindPause:
			stats.PauseSegments++
		}
		if res.cacheHit {
			stats.CacheHits++
		}
		if res.synthCall {
			stats.SynthesisCalls++
		}
		if res.singlePass {
			stats.SinglePassRuns++
		}
	}
	if len(failures) > 0 {
		return nil, services.Wrap(services.ErrExternalTool, "generate", "resolve",
			fmt.Sprintf("%d of %d segments failed", len(failures), len(segments)),
			errors.Join(failures...))
	}

	episodePath := filepath.Join(g.cfg.Paths.OutputDir, name+".m4a")
	assembly, err := g.assembler.Assemble(ctx, runDir, items, episodePath)
	if err != nil {
		return nil, err
	}
	stats.Duration = assembly.Duration

	transcriptPath := filepath.Join(g.cfg.Paths.OutputDir, name+".vtt")
	if err := fileutil.WriteFileAtomic(transcriptPath, []byte(transcript.WebVTT(assembly.Timeline)), 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		g.logger.Warn("failed to remove run directory", logging.String("dir", runDir), logging.Error(err))
	}

	g.logger.Info("episode generated",
		logging.String(logging.FieldEpisode, name),
		logging.Int("speech_segments", stats.SpeechSegments),
		logging.Int("cache_hits", stats.CacheHits),
		logging.Int("synthesis_calls", stats.SynthesisCalls),
		logging.Duration("duration", stats.Duration))

	return &Result{
		EpisodePath:    episodePath,
		TranscriptPath: transcriptPath,
		Timeline:       assembly.Timeline,
		Stats:          stats,
	}, nil
}

// Populate warms the segment cache for a script without assembling an
// episode: every speech segment is resolved (synthesized and normalized on a
// miss) and the scratch clips are discarded.
func (g *Generator) Populate(ctx context.Context, scriptText string) (Stats, error) {
	segments, err := script.Parse(scriptText)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrValidation, "populate", "parse", "", err)
	}

	if err := os.MkdirAll(g.cfg.Paths.WorkDir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create work directory: %w", err)
	}
	runDir, err := os.MkdirTemp(g.cfg.Paths.WorkDir, "populate-")
	if err != nil {
		return Stats{}, fmt.Errorf("create run directory: %w", err)
	}
	defer os.RemoveAll(runDir)

	resolutions := g.resolveAll(ctx, runDir, segments)

	stats := Stats{TotalSegments: len(segments)}
	var failures []error
	for i, res := range resolutions {
		if res.err != nil {
			failures = append(failures, fmt.Errorf("segment %d (%s): %w", i, segments[i].Speaker, res.err))
			continue
		}
		switch res.item.Kind {
		case script.KindSpeech:
			stats.SpeechSegments++
		case script.KindPause:
			stats.PauseSegments++
		}
		if res.cacheHit {
			stats.CacheHits++
		}
		if res.synthCall {
			stats.SynthesisCalls++
		}
		if res.singlePass {
			stats.SinglePassRuns++
		}
	}
	if len(failures) > 0 {
		return stats, services.Wrap(services.ErrExternalTool, "populate", "resolve",
			fmt.Sprintf("%d of %d segments failed", len(failures), len(segments)),
			errors.Join(failures...))
	}
	return stats, nil
}

// resolveAll resolves every segment, dispatching speech segments to a
// bounded pool. Results land in script order; assembly stays sequential.
func (g *Generator) resolveAll(ctx context.Context, runDir string, segments []script.Segment) []resolution {
	limit := g.cfg.Synthesis.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	results := make([]resolution, len(segments))

	var wg sync.WaitGroup
	for i, seg := range segments {
		if !seg.IsSpeech() {
			results[i] = resolution{item: Item{Kind: script.KindPause}}
			continue
		}
		wg.Add(1)
		go func(i int, seg script.Segment) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = g.resolveSpeech(ctx, runDir, i, seg)
		}(i, seg)
	}
	wg.Wait()
	return results
}

// resolveSpeech produces the normalized clip for one utterance. The cache is
// probed exactly once; the hit or miss outcome flows into the run stats.
func (g *Generator) resolveSpeech(ctx context.Context, runDir string, index int, seg script.Segment) resolution {
	req, err := buildRequest(g.cfg, seg.Speaker, seg.Text)
	if err != nil {
		return resolution{err: err}
	}
	key := req.Fingerprint()
	clipPath := filepath.Join(runDir, fmt.Sprintf("segment_%03d.mp3", index))
	item := Item{Kind: script.KindSpeech, Speaker: seg.Speaker, Text: seg.Text, Path: clipPath}

	data, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		return resolution{err: fmt.Errorf("cache get: %w", err)}
	}
	if ok {
		if err := os.WriteFile(clipPath, data, 0o644); err != nil {
			return resolution{err: fmt.Errorf("write cached clip: %w", err)}
		}
		g.logger.Debug("cache hit",
			logging.Int(logging.FieldSegmentIndex, index),
			logging.String(logging.FieldCacheKey, key))
		return resolution{item: item, cacheHit: true}
	}

	g.logger.Debug("cache miss, synthesizing",
		logging.Int(logging.FieldSegmentIndex, index),
		logging.String(logging.FieldSpeaker, string(seg.Speaker)),
		logging.String(logging.FieldCacheKey, key))

	raw, err := g.synth.Synthesize(ctx, req)
	if err != nil {
		return resolution{synthCall: true, err: fmt.Errorf("synthesize: %w", err)}
	}

	singlePass := false
	if g.cfg.Normalization.Enabled {
		rawPath := clipPath + ".raw"
		if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
			return resolution{synthCall: true, err: fmt.Errorf("write raw clip: %w", err)}
		}
		mode, err := g.normalizer.Normalize(ctx, rawPath, clipPath)
		os.Remove(rawPath)
		if err != nil {
			return resolution{synthCall: true, err: err}
		}
		singlePass = mode == audio.ModeSinglePass
	} else {
		if err := os.WriteFile(clipPath, raw, 0o644); err != nil {
			return resolution{synthCall: true, err: fmt.Errorf("write clip: %w", err)}
		}
	}

	normalized, err := os.ReadFile(clipPath)
	if err != nil {
		return resolution{synthCall: true, err: fmt.Errorf("read normalized clip: %w", err)}
	}
	if err := g.cache.Put(ctx, key, normalized); err != nil {
		return resolution{synthCall: true, err: fmt.Errorf("cache put: %w", err)}
	}
	return resolution{item: item, synthCall: true, singlePass: singlePass}
}
