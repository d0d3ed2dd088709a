package orchestrator

import (
	"math"
	"strings"

	"github.com/maastricht-university/emotion-timeline/audio"
)

// SegmentTrack cuts the track into one chunk per transcript segment, in
// segment order. Offsets are rounded to the nearest sample and clipped to the
// track, so a segment running past the end yields a shorter waveform.
func SegmentTrack(track *audio.Track, segs []Segment) []Chunk {
	if len(segs) == 0 {
		return nil
	}
	out := make([]Chunk, 0, len(segs))
	for _, s := range segs {
		from := track.Offset(s.Start)
		to := track.Offset(s.End)
		out = append(out, Chunk{
			Start:    round2(s.Start),
			End:      round2(s.End),
			Text:     strings.TrimSpace(s.Text),
			Waveform: track.Slice(from, to),
		})
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
