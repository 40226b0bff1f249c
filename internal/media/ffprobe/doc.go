// Package ffprobe shells out to ffprobe to inspect audio clips: durations
// for timeline accumulation and stream parameters for the encoding
// consistency check before concatenation.
package ffprobe
