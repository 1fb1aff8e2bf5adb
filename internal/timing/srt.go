package timing

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteSRT writes segments with translated text as SubRip cues. Segments
// whose translation is empty are skipped; cue numbers stay contiguous.
func WriteSRT(w io.Writer, segments []Segment) error {
	bw := bufio.NewWriter(w)
	cue := 0
	for _, seg := range segments {
		text := strings.TrimSpace(seg.TranslatedText)
		if text == "" {
			continue
		}
		cue++
		if cue > 1 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n", cue, formatSRTTimestamp(seg.Start), formatSRTTimestamp(seg.End))
		bw.WriteString(text)
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
