// Package transcript renders episode timelines as WebVTT with voice-tagged
// cues, suitable for podcast players that display synchronized text.
package transcript
