// Package synthesis defines the synthesis request model, its
// content-addressed fingerprint, and the ElevenLabs text-to-speech client.
//
// The fingerprint must stay byte-compatible with the keys already present in
// the shared segment cache, which were produced by a Python implementation
// using json.dumps(..., sort_keys=True). See Request.CanonicalJSON.
package synthesis
