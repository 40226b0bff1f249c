package episode

import (
	"context"
	"fmt"
	"log/slog"

	"strollcast/internal/config"
	"strollcast/internal/logging"
	"strollcast/internal/script"
	"strollcast/internal/segmentcache"
	"strollcast/internal/services"
)

// Missing identifies one speech segment whose cache entry is absent.
type Missing struct {
	Index   int
	Speaker script.Speaker
	Key     string
}

// Report is the outcome of a verification pass.
type Report struct {
	SpeechSegments int
	Cached         int
	Missing        []Missing
}

// Complete reports whether every required cache entry exists.
func (r Report) Complete() bool {
	return len(r.Missing) == 0
}

// Verifier checks cache completeness for a script without synthesizing
// anything. It derives the same fingerprints generation would and probes the
// cache for each.
type Verifier struct {
	cfg    *config.Config
	cache  segmentcache.Store
	logger *slog.Logger
}

// NewVerifier constructs a verifier. A nil logger disables logging.
func NewVerifier(cfg *config.Config, cache segmentcache.Store, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Verifier{cfg: cfg, cache: cache, logger: logging.NewComponentLogger(logger, "verifier")}
}

// Verify parses the script and reports which segment fingerprints are absent
// from the cache, in segment order. It never calls the synthesizer.
func (v *Verifier) Verify(ctx context.Context, scriptText string) (Report, error) {
	segments, err := script.Parse(scriptText)
	if err != nil {
		return Report{}, services.Wrap(services.ErrValidation, "verify", "parse", "", err)
	}

	var report Report
	for i, seg := range segments {
		if !seg.IsSpeech() {
			continue
		}
		report.SpeechSegments++
		req, err := buildRequest(v.cfg, seg.Speaker, seg.Text)
		if err != nil {
			return Report{}, err
		}
		key := req.Fingerprint()
		ok, err := v.cache.Has(ctx, key)
		if err != nil {
			return Report{}, fmt.Errorf("cache probe for segment %d: %w", i, err)
		}
		if ok {
			report.Cached++
			continue
		}
		report.Missing = append(report.Missing, Missing{Index: i, Speaker: seg.Speaker, Key: key})
	}

	v.logger.Info("verification complete",
		logging.Int("speech_segments", report.SpeechSegments),
		logging.Int("cached", report.Cached),
		logging.Int("missing", len(report.Missing)))
	return report, nil
}
