package audio

import (
	"context"
	"log/slog"

	"strollcast/internal/logging"
	"strollcast/internal/media/ffmpeg"
	"strollcast/internal/services"
)

// Mode reports which loudnorm form produced a clip.
type Mode string

const (
	// ModeTwoPass is the measured linear correction, the normal outcome.
	ModeTwoPass Mode = "two-pass"
	// ModeSinglePass is the dynamic fallback used when measurement fails.
	ModeSinglePass Mode = "single-pass"
)

// Normalizer brings clips to a shared loudness target using ffmpeg's loudnorm
// filter. The preferred protocol is two passes: measure, then apply a linear
// correction derived from the measured statistics. If the measurement pass
// fails the clip falls back to single-pass dynamic normalization rather than
// failing the segment.
type Normalizer struct {
	tool   *ffmpeg.Tool
	target ffmpeg.LoudnessTarget
	enc    ffmpeg.EncodeParams
	logger *slog.Logger
}

// NewNormalizer constructs a normalizer. A nil logger disables logging.
func NewNormalizer(tool *ffmpeg.Tool, target ffmpeg.LoudnessTarget, enc ffmpeg.EncodeParams, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Normalizer{
		tool:   tool,
		target: target,
		enc:    enc,
		logger: logging.NewComponentLogger(logger, "normalizer"),
	}
}

// Normalize reads the clip at input, applies loudness normalization, and
// writes the result to output. It reports which loudnorm form was used so
// callers can surface the fallback in their run summary.
func (n *Normalizer) Normalize(ctx context.Context, input, output string) (Mode, error) {
	stats, err := n.tool.MeasureLoudness(ctx, input, n.target)
	if err != nil {
		n.logger.Warn("loudness measurement failed, using single-pass fallback",
			logging.String("input", input),
			logging.Error(err))
		if err := n.tool.NormalizeSinglePass(ctx, input, output, n.target, n.enc); err != nil {
			return "", services.Wrap(services.ErrExternalTool, "normalize", "single-pass", "loudnorm fallback failed", err)
		}
		return ModeSinglePass, nil
	}

	n.logger.Debug("loudness measured",
		logging.String("input", input),
		logging.String("input_i", stats.InputI),
		logging.String("input_tp", stats.InputTP),
		logging.String("target_offset", stats.TargetOffset))

	if err := n.tool.Normalize(ctx, input, output, n.target, stats, n.enc); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "normalize", "correct", "loudnorm correction failed", err)
	}
	return ModeTwoPass, nil
}
