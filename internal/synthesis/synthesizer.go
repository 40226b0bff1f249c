package synthesis

import "context"

// Synthesizer produces raw audio bytes for one speech segment. The pipeline
// invokes it only when the segment cache reports the fingerprint absent.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}
