package transcript

import (
	"fmt"
	"strings"
	"time"
)

// Cue is one spoken utterance with its position on the episode timeline.
// Pauses never become cues; they only widen the gap between neighbours.
type Cue struct {
	Speaker string
	Text    string
	Start   time.Duration
	End     time.Duration
}

// WebVTT renders the cues as a WebVTT document. Cues are numbered
// sequentially from 1 and each payload carries a voice tag so players can
// attribute lines to speakers.
func WebVTT(cues []Cue) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", Timestamp(cue.Start), Timestamp(cue.End))
		fmt.Fprintf(&b, "<v %s>%s\n\n", cue.Speaker, cue.Text)
	}
	return b.String()
}

// Timestamp formats a duration as HH:MM:SS.mmm, the WebVTT long form.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMS := d.Milliseconds()
	hours := totalMS / 3_600_000
	minutes := (totalMS % 3_600_000) / 60_000
	seconds := (totalMS % 60_000) / 1000
	millis := totalMS % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
