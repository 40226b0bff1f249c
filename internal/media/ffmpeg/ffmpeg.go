package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes ffmpeg and returns combined stdout+stderr. Loudnorm prints
// its measurement JSON to stderr, so both streams are needed. Tests
// substitute a fake to exercise argument construction and parsing.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LoudnessTarget describes the EBU R128 targets passed to loudnorm.
type LoudnessTarget struct {
	IntegratedLUFS float64
	TruePeak       float64
	LoudnessRange  float64
}

// LoudnessStats is the measurement block loudnorm emits at the end of its
// first pass. Values arrive as strings and are fed back verbatim into the
// correction pass.
type LoudnessStats struct {
	InputI            string `json:"input_i"`
	InputTP           string `json:"input_tp"`
	InputLRA          string `json:"input_lra"`
	InputThresh       string `json:"input_thresh"`
	OutputI           string `json:"output_i"`
	OutputTP          string `json:"output_tp"`
	OutputLRA         string `json:"output_lra"`
	OutputThresh      string `json:"output_thresh"`
	NormalizationType string `json:"normalization_type"`
	TargetOffset      string `json:"target_offset"`
}

// EncodeParams controls the output encoding for generated and assembled audio.
type EncodeParams struct {
	SampleRate int
	Channels   int
	Bitrate    string
}

// Tool wraps an ffmpeg binary.
type Tool struct {
	binary string
	runner Runner
}

// NewTool creates a tool for the given binary; empty means "ffmpeg".
func NewTool(binary string) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Tool{binary: binary, runner: defaultRunner}
}

// WithRunner sets a custom command runner (for testing).
func (t *Tool) WithRunner(runner Runner) *Tool {
	if runner != nil {
		t.runner = runner
	}
	return t
}

func (t *Tool) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	output, err := t.runner(ctx, t.binary, args...)
	if err != nil {
		return output, fmt.Errorf("ffmpeg %s: %w: %s", op, err, tail(string(output)))
	}
	return output, nil
}

func loudnormFilter(target LoudnessTarget, extra ...string) string {
	parts := []string{
		fmt.Sprintf("I=%g", target.IntegratedLUFS),
		fmt.Sprintf("TP=%g", target.TruePeak),
		fmt.Sprintf("LRA=%g", target.LoudnessRange),
	}
	parts = append(parts, extra...)
	return "loudnorm=" + strings.Join(parts, ":")
}

// MeasureLoudness runs the loudnorm analysis pass and parses the JSON
// measurement block from the command output.
func (t *Tool) MeasureLoudness(ctx context.Context, path string, target LoudnessTarget) (LoudnessStats, error) {
	args := []string{
		"-hide_banner", "-nostdin",
		"-i", path,
		"-af", loudnormFilter(target, "print_format=json"),
		"-f", "null", "-",
	}
	output, err := t.run(ctx, "measure", args...)
	if err != nil {
		return LoudnessStats{}, err
	}
	stats, err := parseLoudnormJSON(string(output))
	if err != nil {
		return LoudnessStats{}, fmt.Errorf("ffmpeg measure: %w", err)
	}
	return stats, nil
}

// Normalize runs the loudnorm correction pass using measured statistics from
// a prior analysis pass, applying linear gain so the audio character is
// preserved.
func (t *Tool) Normalize(ctx context.Context, input, output string, target LoudnessTarget, stats LoudnessStats, enc EncodeParams) error {
	filter := loudnormFilter(target,
		"measured_I="+stats.InputI,
		"measured_TP="+stats.InputTP,
		"measured_LRA="+stats.InputLRA,
		"measured_thresh="+stats.InputThresh,
		"offset="+stats.TargetOffset,
		"linear=true",
	)
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", input,
		"-af", filter,
	}
	args = append(args, encodeArgs(enc, "libmp3lame")...)
	args = append(args, output)
	_, err := t.run(ctx, "normalize", args...)
	return err
}

// NormalizeSinglePass applies loudnorm in its dynamic single-pass form. Used
// as a fallback when the analysis pass fails on a clip.
func (t *Tool) NormalizeSinglePass(ctx context.Context, input, output string, target LoudnessTarget, enc EncodeParams) error {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", input,
		"-af", loudnormFilter(target),
	}
	args = append(args, encodeArgs(enc, "libmp3lame")...)
	args = append(args, output)
	_, err := t.run(ctx, "normalize single-pass", args...)
	return err
}

// Silence writes a silent MP3 clip of the given duration.
func (t *Tool) Silence(ctx context.Context, output string, durationMS int, enc EncodeParams) error {
	if durationMS <= 0 {
		return errors.New("ffmpeg silence: duration must be positive")
	}
	layout := "mono"
	if enc.Channels == 2 {
		layout = "stereo"
	}
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=%s", enc.SampleRate, layout),
		"-t", fmt.Sprintf("%.3f", float64(durationMS)/1000.0),
	}
	args = append(args, encodeArgs(enc, "libmp3lame")...)
	args = append(args, output)
	_, err := t.run(ctx, "silence", args...)
	return err
}

// Concat joins the clips in the concat-demuxer list file and re-encodes the
// result as AAC into the output container.
func (t *Tool) Concat(ctx context.Context, listPath, output string, enc EncodeParams) error {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
	}
	args = append(args, encodeArgs(enc, "aac")...)
	args = append(args, output)
	_, err := t.run(ctx, "concat", args...)
	return err
}

func encodeArgs(enc EncodeParams, codec string) []string {
	args := []string{"-c:a", codec}
	if enc.Bitrate != "" {
		args = append(args, "-b:a", enc.Bitrate)
	}
	if enc.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", enc.SampleRate))
	}
	if enc.Channels > 0 {
		args = append(args, "-ac", fmt.Sprintf("%d", enc.Channels))
	}
	return args
}

// parseLoudnormJSON extracts the trailing measurement block from loudnorm
// output. The block is the last brace-delimited object ffmpeg prints.
func parseLoudnormJSON(output string) (LoudnessStats, error) {
	start := strings.LastIndex(output, "{")
	if start < 0 {
		return LoudnessStats{}, errors.New("no measurement block in output")
	}
	end := strings.Index(output[start:], "}")
	if end < 0 {
		return LoudnessStats{}, errors.New("unterminated measurement block in output")
	}
	block := output[start : start+end+1]

	var stats LoudnessStats
	if err := json.Unmarshal([]byte(block), &stats); err != nil {
		return LoudnessStats{}, fmt.Errorf("decode measurement block: %w", err)
	}
	if stats.InputI == "" || stats.InputThresh == "" {
		return LoudnessStats{}, errors.New("measurement block missing input statistics")
	}
	return stats, nil
}

// tail returns the last few lines of command output for error messages.
func tail(output string) string {
	output = strings.TrimSpace(output)
	lines := strings.Split(output, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
