package script

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes spoken segments from section-break pauses.
type Kind string

const (
	KindSpeech Kind = "speech"
	KindPause  Kind = "pause"
)

// Speaker identifies one of the fixed podcast hosts.
type Speaker string

const (
	SpeakerEric Speaker = "ERIC"
	SpeakerMaya Speaker = "MAYA"
)

// Speakers returns the closed set of recognized speakers in a stable order.
func Speakers() []Speaker {
	return []Speaker{SpeakerEric, SpeakerMaya}
}

// ParseSpeaker maps a script label to a recognized speaker.
func ParseSpeaker(label string) (Speaker, bool) {
	switch Speaker(strings.ToUpper(strings.TrimSpace(label))) {
	case SpeakerEric:
		return SpeakerEric, true
	case SpeakerMaya:
		return SpeakerMaya, true
	default:
		return "", false
	}
}

var titleCaser = cases.Title(language.English)

// DisplayName renders the speaker label for transcripts ("ERIC" -> "Eric").
func (s Speaker) DisplayName() string {
	return titleCaser.String(strings.ToLower(string(s)))
}

// Segment is one atomic unit of a parsed script. Speech segments carry a
// speaker and non-empty cleaned text; pause segments carry neither.
type Segment struct {
	Kind    Kind
	Speaker Speaker
	Text    string
}

// IsSpeech reports whether the segment carries an utterance.
func (s Segment) IsSpeech() bool {
	return s.Kind == KindSpeech
}
