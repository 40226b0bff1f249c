package script

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyScript indicates a script that produced zero usable segments.
// Generating a zero-length episode would be silently wrong, so callers must
// treat this as fatal.
var ErrEmptyScript = errors.New("script: no speech or pause segments found")

// sectionHeaderPrefix marks topic transitions that become pause segments.
const sectionHeaderPrefix = "## ["

var speakerLine = regexp.MustCompile(`^\*\*([A-Z]+):\*\*\s*(.*)$`)

// Parse turns raw script markdown into an ordered segment list.
//
// Lines from speakers outside the recognized set are discarded silently, as
// is any other markup the grammar does not know about. A script that yields
// no segments at all returns ErrEmptyScript.
func Parse(content string) ([]Segment, error) {
	var segments []Segment

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if match := speakerLine.FindStringSubmatch(line); match != nil {
			speaker, ok := ParseSpeaker(match[1])
			if !ok {
				continue
			}
			text := CleanUtterance(match[2])
			if text == "" {
				continue
			}
			segments = append(segments, Segment{
				Kind:    KindSpeech,
				Speaker: speaker,
				Text:    text,
			})
			continue
		}

		if strings.HasPrefix(line, sectionHeaderPrefix) {
			segments = append(segments, Segment{Kind: KindPause})
		}
	}

	if len(segments) == 0 {
		return nil, ErrEmptyScript
	}
	return segments, nil
}

// SpeechCount returns the number of speech segments in the list.
func SpeechCount(segments []Segment) int {
	count := 0
	for _, segment := range segments {
		if segment.IsSpeech() {
			count++
		}
	}
	return count
}
