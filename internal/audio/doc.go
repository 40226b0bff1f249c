// Package audio implements loudness normalization for synthesized clips.
// Every clip is brought to the same integrated loudness target before it is
// cached, so cached and freshly synthesized segments are interchangeable.
package audio
