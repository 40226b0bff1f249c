package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Runner executes ffprobe and returns its combined output. Tests substitute
// a fake to exercise parsing without the binary.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Inspector wraps an ffprobe binary.
type Inspector struct {
	binary string
	runner Runner
}

// NewInspector creates an inspector for the given binary; empty means "ffprobe".
func NewInspector(binary string) *Inspector {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Inspector{binary: binary, runner: defaultRunner}
}

// WithRunner sets a custom command runner (for testing).
func (i *Inspector) WithRunner(runner Runner) *Inspector {
	if runner != nil {
		i.runner = runner
	}
	return i
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func (i *Inspector) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
	output, err := i.runner(ctx, i.binary, args...)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// DurationSeconds returns the duration in seconds for the audio at path.
func (i *Inspector) DurationSeconds(ctx context.Context, path string) (float64, error) {
	result, err := i.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, fmt.Errorf("ffprobe: no usable duration for %s", path)
	}
	return duration, nil
}

// AudioParams describes the stream properties that must stay uniform across
// every clip fed into a single concatenation.
type AudioParams struct {
	CodecName  string
	SampleRate int
	Channels   int
}

func (p AudioParams) String() string {
	return fmt.Sprintf("%s/%dHz/%dch", p.CodecName, p.SampleRate, p.Channels)
}

// AudioParams extracts the first audio stream's parameters.
func (r Result) AudioParams() (AudioParams, error) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		rate := int(parseFloat(stream.SampleRate))
		if rate <= 0 || stream.Channels <= 0 {
			return AudioParams{}, fmt.Errorf("ffprobe: incomplete audio stream parameters (rate=%q channels=%d)", stream.SampleRate, stream.Channels)
		}
		return AudioParams{
			CodecName:  stream.CodecName,
			SampleRate: rate,
			Channels:   stream.Channels,
		}, nil
	}
	return AudioParams{}, errors.New("ffprobe: no audio stream found")
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 && !math.IsNaN(d) {
		return d
	}
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			if d := parseFloat(stream.Duration); d > 0 && !math.IsNaN(d) {
				return d
			}
		}
	}
	return 0
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
