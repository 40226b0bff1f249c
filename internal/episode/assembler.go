package episode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"strollcast/internal/logging"
	"strollcast/internal/media/ffmpeg"
	"strollcast/internal/media/ffprobe"
	"strollcast/internal/script"
	"strollcast/internal/services"
	"strollcast/internal/transcript"
)

// Item is one entry in assembly order: a speech clip on disk, or a pause.
type Item struct {
	Kind    script.Kind
	Speaker script.Speaker
	Text    string
	Path    string // resolved clip path, speech only
}

// Assembly is the outcome of concatenation: the timeline for the transcript
// and the total playback duration of the episode.
type Assembly struct {
	Timeline []transcript.Cue
	Duration time.Duration
}

// Assembler concatenates resolved clips into one episode. It inserts a short
// silence after every utterance and a longer one for section pauses, and
// maintains the running clock the timeline is derived from. Clips from
// heterogeneous sources must share the configured sample rate and channel
// layout; a mismatch aborts the run instead of producing a corrupt
// concatenation.
type Assembler struct {
	tool         *ffmpeg.Tool
	probe        *ffprobe.Inspector
	enc          ffmpeg.EncodeParams
	utteranceGap time.Duration
	sectionGap   time.Duration
	logger       *slog.Logger
}

// NewAssembler constructs an assembler. A nil logger disables logging.
func NewAssembler(tool *ffmpeg.Tool, probe *ffprobe.Inspector, enc ffmpeg.EncodeParams, utteranceGap, sectionGap time.Duration, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		tool:         tool,
		probe:        probe,
		enc:          enc,
		utteranceGap: utteranceGap,
		sectionGap:   sectionGap,
		logger:       logging.NewComponentLogger(logger, "assembler"),
	}
}

// Assemble concatenates the items in order into outputPath. workDir holds
// the generated silence clips and the concat list.
func (a *Assembler) Assemble(ctx context.Context, workDir string, items []Item, outputPath string) (Assembly, error) {
	if len(items) == 0 {
		return Assembly{}, services.Wrap(services.ErrValidation, "assemble", "", "no items to assemble", nil)
	}

	utteranceSilence, err := a.silenceClip(ctx, workDir, "gap_utterance.mp3", a.utteranceGap)
	if err != nil {
		return Assembly{}, err
	}
	sectionSilence, err := a.silenceClip(ctx, workDir, "gap_section.mp3", a.sectionGap)
	if err != nil {
		return Assembly{}, err
	}

	var (
		clock    time.Duration
		timeline []transcript.Cue
		entries  []string
	)
	for i, item := range items {
		switch item.Kind {
		case script.KindSpeech:
			duration, err := a.inspectClip(ctx, i, item)
			if err != nil {
				return Assembly{}, err
			}
			timeline = append(timeline, transcript.Cue{
				Speaker: item.Speaker.DisplayName(),
				Text:    item.Text,
				Start:   clock,
				End:     clock + duration,
			})
			entries = append(entries, item.Path, utteranceSilence)
			clock += duration + a.utteranceGap
		case script.KindPause:
			entries = append(entries, sectionSilence)
			clock += a.sectionGap
		default:
			return Assembly{}, services.Wrap(services.ErrValidation, "assemble", "", fmt.Sprintf("unknown segment kind %q at position %d", item.Kind, i), nil)
		}
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, entries); err != nil {
		return Assembly{}, services.Wrap(services.ErrValidation, "assemble", "concat list", "write failed", err)
	}
	if err := a.tool.Concat(ctx, listPath, outputPath, a.enc); err != nil {
		return Assembly{}, services.Wrap(services.ErrExternalTool, "assemble", "concat", "concatenation failed", err)
	}

	a.logger.Info("episode assembled",
		logging.String("output", outputPath),
		logging.Int("clips", len(entries)),
		logging.Duration("duration", clock))
	return Assembly{Timeline: timeline, Duration: clock}, nil
}

// inspectClip returns the clip duration after confirming its stream
// parameters match the configured encoding.
func (a *Assembler) inspectClip(ctx context.Context, index int, item Item) (time.Duration, error) {
	result, err := a.probe.Inspect(ctx, item.Path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "assemble", "inspect", fmt.Sprintf("segment %d", index), err)
	}
	params, err := result.AudioParams()
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "assemble", "inspect", fmt.Sprintf("segment %d (%s)", index, item.Speaker), err)
	}
	if params.SampleRate != a.enc.SampleRate || params.Channels != a.enc.Channels {
		return 0, services.Wrap(services.ErrValidation, "assemble", "encoding check",
			fmt.Sprintf("segment %d (%s) has %s, expected %dHz/%dch", index, item.Speaker, params, a.enc.SampleRate, a.enc.Channels), nil)
	}
	seconds := result.DurationSeconds()
	if seconds <= 0 {
		return 0, services.Wrap(services.ErrValidation, "assemble", "inspect", fmt.Sprintf("segment %d has no duration", index), nil)
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond, nil
}

func (a *Assembler) silenceClip(ctx context.Context, workDir, name string, gap time.Duration) (string, error) {
	path := filepath.Join(workDir, name)
	if err := a.tool.Silence(ctx, path, int(gap.Milliseconds()), a.enc); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assemble", "silence", name, err)
	}
	return path, nil
}

// writeConcatList writes a concat-demuxer list. Paths are single-quoted with
// embedded quotes escaped the way the demuxer expects.
func writeConcatList(path string, entries []string) error {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(entry, "'", `'\''`))
		b.WriteString("'\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
