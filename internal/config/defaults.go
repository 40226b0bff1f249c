package config

const (
	defaultWorkDir   = "~/.local/share/strollcast/work"
	defaultOutputDir = "~/.local/share/strollcast/episodes"
	defaultLogDir    = "~/.local/share/strollcast/logs"
	defaultCacheDir  = "~/.cache/strollcast/segments"

	// Voice identities for the two hosts. Keys derived from these values
	// address the shared segment cache, so they must stay stable.
	defaultEricVoiceID = "gP8LZQ3GGokV0MP5JYjg"
	defaultMayaVoiceID = "21m00Tcm4TlvDq8ikWAM"

	defaultSynthesisBaseURL        = "https://api.elevenlabs.io/v1"
	defaultSynthesisModelID        = "eleven_turbo_v2_5"
	defaultSynthesisStability      = 0.5
	defaultSynthesisSimilarity     = 0.75
	defaultSynthesisStyle          = 0.0
	defaultSynthesisTimeoutSeconds = 60
	defaultSynthesisMaxConcurrent  = 4

	defaultTargetLUFS    = -16.0
	defaultTruePeak      = -1.5
	defaultLoudnessRange = 11.0

	defaultUtteranceGapMS = 300
	defaultSectionGapMS   = 800
	defaultSampleRate     = 44100
	defaultChannels       = 1
	defaultBitrate        = "128k"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"

	defaultStorageRegion = "auto"
	defaultCacheBucket   = "strollcast-cache"
	defaultOutputBucket  = "strollcast-output"

	defaultCatalogPath = "~/.local/share/strollcast/catalog.db"

	defaultScriptGenBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultScriptGenModel          = "anthropic/claude-sonnet-4"
	defaultScriptGenReferer        = "https://github.com/strollcast/strollcast"
	defaultScriptGenTitle          = "Strollcast Script Generator"
	defaultScriptGenTimeoutSeconds = 300

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Cache: Cache{
			Dir: defaultCacheDir,
		},
		Voices: Voices{
			Eric: defaultEricVoiceID,
			Maya: defaultMayaVoiceID,
		},
		Synthesis: Synthesis{
			BaseURL:         defaultSynthesisBaseURL,
			ModelID:         defaultSynthesisModelID,
			Stability:       defaultSynthesisStability,
			SimilarityBoost: defaultSynthesisSimilarity,
			Style:           defaultSynthesisStyle,
			UseSpeakerBoost: true,
			TimeoutSeconds:  defaultSynthesisTimeoutSeconds,
			MaxConcurrent:   defaultSynthesisMaxConcurrent,
		},
		Normalization: Normalization{
			Enabled:       true,
			TargetLUFS:    defaultTargetLUFS,
			TruePeak:      defaultTruePeak,
			LoudnessRange: defaultLoudnessRange,
		},
		Assembly: Assembly{
			UtteranceGapMS: defaultUtteranceGapMS,
			SectionGapMS:   defaultSectionGapMS,
			SampleRate:     defaultSampleRate,
			Channels:       defaultChannels,
			Bitrate:        defaultBitrate,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
		},
		Storage: Storage{
			Region:       defaultStorageRegion,
			CacheBucket:  defaultCacheBucket,
			OutputBucket: defaultOutputBucket,
		},
		Catalog: Catalog{
			Enabled: true,
			Path:    defaultCatalogPath,
		},
		ScriptGen: ScriptGen{
			BaseURL:        defaultScriptGenBaseURL,
			Model:          defaultScriptGenModel,
			Referer:        defaultScriptGenReferer,
			Title:          defaultScriptGenTitle,
			TimeoutSeconds: defaultScriptGenTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
