// Package ffmpeg wraps the ffmpeg binary for the audio operations the
// pipeline needs: loudness measurement and correction, silence generation,
// and concat-demuxer assembly into the final container.
package ffmpeg
