package audio

import "math"

// DefaultSampleRate is the rate shared by the segmenter and both classifiers.
const DefaultSampleRate = 16000

// Track is a mono waveform held in memory.
type Track struct {
	Samples    []float32 // normalised to [-1, 1]
	SampleRate int
	// Source is the file the track was decoded from, if any.
	Source string
}

// Len returns the number of samples.
func (t *Track) Len() int { return len(t.Samples) }

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(len(t.Samples)) / float64(t.SampleRate)
}

// Offset converts a timestamp in seconds to a sample index, rounding to the
// nearest sample and clipping to [0, Len()].
func (t *Track) Offset(sec float64) int {
	n := int(math.Round(sec * float64(t.SampleRate)))
	if n < 0 {
		return 0
	}
	if n > len(t.Samples) {
		return len(t.Samples)
	}
	return n
}

// Slice returns the samples in [start, end). The result shares memory with the
// track but has its capacity capped so appends never write into the track.
func (t *Track) Slice(start, end int) []float32 {
	if start > end {
		start = end
	}
	return t.Samples[start:end:end]
}
