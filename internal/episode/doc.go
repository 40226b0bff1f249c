// Package episode drives the generation pipeline: it resolves each script
// segment to a normalized audio clip (from cache or fresh synthesis),
// assembles the clips into one continuous episode with timed silence, and
// accumulates the timeline the transcript is rendered from. It also provides
// the verification mode that reports missing cache entries without
// synthesizing anything.
package episode
