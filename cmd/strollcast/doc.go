// Command strollcast generates podcast episodes from dialogue scripts:
// synthesizing speech per segment through a content-addressed cache,
// normalizing loudness, assembling timed audio with a WebVTT transcript, and
// optionally publishing the results.
package main
