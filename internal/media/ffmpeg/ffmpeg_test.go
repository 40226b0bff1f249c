package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const measureOutput = `size=N/A time=00:00:04.20 bitrate=N/A speed= 112x
[Parsed_loudnorm_0 @ 0x55d9c]
{
	"input_i" : "-23.47",
	"input_tp" : "-5.12",
	"input_lra" : "6.30",
	"input_thresh" : "-33.76",
	"output_i" : "-16.02",
	"output_tp" : "-1.62",
	"output_lra" : "5.90",
	"output_thresh" : "-26.28",
	"normalization_type" : "dynamic",
	"target_offset" : "0.02"
}`

var target = LoudnessTarget{IntegratedLUFS: -16, TruePeak: -1.5, LoudnessRange: 11}

var enc = EncodeParams{SampleRate: 44100, Channels: 1, Bitrate: "128k"}

type call struct {
	name string
	args []string
}

func recordingRunner(output string, err error, calls *[]call) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name: name, args: args})
		return []byte(output), err
	}
}

func argString(calls []call) string {
	if len(calls) == 0 {
		return ""
	}
	return strings.Join(calls[len(calls)-1].args, " ")
}

func TestMeasureLoudnessParsesStats(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner(measureOutput, nil, &calls))

	stats, err := tool.MeasureLoudness(context.Background(), "in.mp3", target)
	if err != nil {
		t.Fatalf("MeasureLoudness returned error: %v", err)
	}
	if stats.InputI != "-23.47" || stats.InputThresh != "-33.76" || stats.TargetOffset != "0.02" {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	args := argString(calls)
	if !strings.Contains(args, "loudnorm=I=-16:TP=-1.5:LRA=11:print_format=json") {
		t.Fatalf("expected loudnorm analysis filter, got %q", args)
	}
	if !strings.Contains(args, "-f null -") {
		t.Fatalf("expected null muxer, got %q", args)
	}
}

func TestMeasureLoudnessMissingBlock(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("frame= 100 fps=0.0", nil, &calls))
	if _, err := tool.MeasureLoudness(context.Background(), "in.mp3", target); err == nil {
		t.Fatal("expected error when output has no measurement block")
	}
}

func TestMeasureLoudnessCommandFailure(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("in.mp3: No such file or directory", errors.New("exit status 1"), &calls))
	_, err := tool.MeasureLoudness(context.Background(), "in.mp3", target)
	if err == nil {
		t.Fatal("expected error from failing runner")
	}
	if !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected command output in error, got %v", err)
	}
}

func TestNormalizeFeedsMeasuredStats(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("", nil, &calls))

	stats := LoudnessStats{
		InputI:       "-23.47",
		InputTP:      "-5.12",
		InputLRA:     "6.30",
		InputThresh:  "-33.76",
		TargetOffset: "0.02",
	}
	if err := tool.Normalize(context.Background(), "in.mp3", "out.mp3", target, stats, enc); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	args := argString(calls)
	for _, want := range []string{
		"measured_I=-23.47",
		"measured_TP=-5.12",
		"measured_LRA=6.30",
		"measured_thresh=-33.76",
		"offset=0.02",
		"linear=true",
		"-c:a libmp3lame",
		"-b:a 128k",
		"-ar 44100",
		"-ac 1",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected args to contain %q, got %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "out.mp3") {
		t.Fatalf("expected output path last, got %q", args)
	}
}

func TestNormalizeSinglePassOmitsMeasuredStats(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("", nil, &calls))

	if err := tool.NormalizeSinglePass(context.Background(), "in.mp3", "out.mp3", target, enc); err != nil {
		t.Fatalf("NormalizeSinglePass returned error: %v", err)
	}

	args := argString(calls)
	if strings.Contains(args, "measured_I") || strings.Contains(args, "linear=true") {
		t.Fatalf("single-pass filter should not carry measured stats, got %q", args)
	}
	if !strings.Contains(args, "loudnorm=I=-16:TP=-1.5:LRA=11") {
		t.Fatalf("expected plain loudnorm filter, got %q", args)
	}
}

func TestSilenceArguments(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("", nil, &calls))

	if err := tool.Silence(context.Background(), "gap.mp3", 800, enc); err != nil {
		t.Fatalf("Silence returned error: %v", err)
	}
	args := argString(calls)
	for _, want := range []string{"anullsrc=r=44100:cl=mono", "-t 0.800", "-c:a libmp3lame"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected args to contain %q, got %q", want, args)
		}
	}
}

func TestSilenceStereoLayout(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("", nil, &calls))
	stereo := EncodeParams{SampleRate: 48000, Channels: 2, Bitrate: "192k"}

	if err := tool.Silence(context.Background(), "gap.mp3", 300, stereo); err != nil {
		t.Fatalf("Silence returned error: %v", err)
	}
	if args := argString(calls); !strings.Contains(args, "anullsrc=r=48000:cl=stereo") {
		t.Fatalf("expected stereo layout, got %q", args)
	}
}

func TestSilenceRejectsNonPositiveDuration(t *testing.T) {
	var calls []call
	tool := NewTool("").WithRunner(recordingRunner("", nil, &calls))
	if err := tool.Silence(context.Background(), "gap.mp3", 0, enc); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if len(calls) != 0 {
		t.Fatal("runner should not be invoked for invalid duration")
	}
}

func TestConcatArguments(t *testing.T) {
	var calls []call
	tool := NewTool("ffmpeg-custom").WithRunner(recordingRunner("", nil, &calls))

	if err := tool.Concat(context.Background(), "list.txt", "episode.m4a", enc); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}
	if calls[0].name != "ffmpeg-custom" {
		t.Fatalf("unexpected binary: %s", calls[0].name)
	}
	args := argString(calls)
	for _, want := range []string{"-f concat", "-safe 0", "-i list.txt", "-c:a aac", "-b:a 128k", "-ar 44100", "-ac 1"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected args to contain %q, got %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "episode.m4a") {
		t.Fatalf("expected output path last, got %q", args)
	}
}

func TestParseLoudnormJSONIgnoresLeadingBraces(t *testing.T) {
	output := "[info] {garbage} noise\n" + measureOutput
	stats, err := parseLoudnormJSON(output)
	if err != nil {
		t.Fatalf("parseLoudnormJSON returned error: %v", err)
	}
	if stats.InputI != "-23.47" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
