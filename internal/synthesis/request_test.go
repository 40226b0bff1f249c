package synthesis

import "testing"

func baseRequest() Request {
	return Request{
		Text:            "Hello there.",
		VoiceID:         "gP8LZQ3GGokV0MP5JYjg",
		ModelID:         "eleven_turbo_v2_5",
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		Normalized:      true,
		TargetLUFS:      -16,
	}
}

// The canonical form and the derived keys are pinned: entries already in the
// shared segment cache were written under these exact values, and a drift
// here would silently orphan the whole corpus.
func TestCanonicalJSONPinned(t *testing.T) {
	want := `{"lufs": -16, "model_id": "eleven_turbo_v2_5", "normalized": true, ` +
		`"similarity_boost": 0.75, "stability": 0.5, "style": 0.0, ` +
		`"text": "Hello there.", "voice_id": "gP8LZQ3GGokV0MP5JYjg"}`
	if got := baseRequest().CanonicalJSON(); got != want {
		t.Fatalf("canonical form drifted:\n got %s\nwant %s", got, want)
	}
}

func TestFingerprintPinned(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "normalized",
			req:  baseRequest(),
			want: "8c7ce8fe7a81200d22935c7f1aa29835a52c560e20eda84ef25308f216315c7d",
		},
		{
			name: "unnormalized",
			req: func() Request {
				r := baseRequest()
				r.Normalized = false
				return r
			}(),
			want: "ede3fc35928f31abc2ef71729d97df68001df203dc3c5778e9bd1e9588f4cbda",
		},
		{
			name: "second voice",
			req: func() Request {
				r := baseRequest()
				r.Text = "Hi Eric!"
				r.VoiceID = "21m00Tcm4TlvDq8ikWAM"
				return r
			}(),
			want: "dacf27fab00f307f195710a6c70b1a39c7dc27ae833a0873bcf96e040544ed5e",
		},
		{
			name: "non-ascii and html-unsafe text",
			req: func() Request {
				r := baseRequest()
				r.Text = "Café \"quotes\" & <tags> \U0001F600"
				r.VoiceID = "v1"
				return r
			}(),
			want: "c792fb30fc04c854e8b90e05920234275017cbaee96ec6a05ee26439ba731ea4",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Fingerprint(); got != tc.want {
				t.Fatalf("Fingerprint = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	first := baseRequest().Fingerprint()
	if len(first) != 64 {
		t.Fatalf("fingerprint length = %d, want 64", len(first))
	}
	for i := 0; i < 20; i++ {
		if got := baseRequest().Fingerprint(); got != first {
			t.Fatalf("run %d produced %s, first run produced %s", i, got, first)
		}
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	// Populate equal-valued requests through different construction orders.
	var a Request
	a.TargetLUFS = -16
	a.Normalized = true
	a.Style = 0
	a.SimilarityBoost = 0.75
	a.Stability = 0.5
	a.ModelID = "eleven_turbo_v2_5"
	a.VoiceID = "gP8LZQ3GGokV0MP5JYjg"
	a.Text = "Hello there."

	if a.Fingerprint() != baseRequest().Fingerprint() {
		t.Fatal("equal-valued requests produced different fingerprints")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := baseRequest()
	mutations := map[string]func(*Request){
		"text":             func(r *Request) { r.Text = "Hello there" },
		"voice":            func(r *Request) { r.VoiceID = "other" },
		"model":            func(r *Request) { r.ModelID = "eleven_multilingual_v2" },
		"stability":        func(r *Request) { r.Stability = 0.6 },
		"similarity_boost": func(r *Request) { r.SimilarityBoost = 0.8 },
		"style":            func(r *Request) { r.Style = 0.1 },
		"normalized flag":  func(r *Request) { r.Normalized = false },
		"loudness target":  func(r *Request) { r.TargetLUFS = -14 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			changed := base
			mutate(&changed)
			if changed.Fingerprint() == base.Fingerprint() {
				t.Fatalf("changing %s did not change the fingerprint", name)
			}
		})
	}
}

func TestFingerprintIgnoresTargetWhenUnnormalized(t *testing.T) {
	a := baseRequest()
	a.Normalized = false
	a.TargetLUFS = -16

	b := a
	b.TargetLUFS = -14

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("loudness target leaked into the key of an unnormalized request")
	}
}
