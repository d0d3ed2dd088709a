package orchestrator

import (
	"math"
	"sort"

	"github.com/maastricht-university/emotion-timeline/emotion"
)

// Summarize computes the dominant emotion by speaking time, the mean
// confidence and each emotion's share of speaking time.
func Summarize(timeline []TimelineEntry) Summary {
	sum := Summary{Dominant: emotion.Neutral}
	if len(timeline) == 0 {
		return sum
	}

	byLabel := map[emotion.Label]float64{}
	total, conf := 0.0, 0.0
	for _, e := range timeline {
		d := math.Max(0, e.EndTime-e.StartTime)
		byLabel[e.Emotion] += d
		total += d
		conf += e.Confidence
	}
	sum.AverageConfidence = emotion.Round3(conf / float64(len(timeline)))
	sum.SpeechSeconds = round2(total)

	// ties go to the alphabetically first label
	labels := make([]emotion.Label, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	sum.Dominant = labels[0]
	for _, l := range labels[1:] {
		if byLabel[l] > byLabel[sum.Dominant] {
			sum.Dominant = l
		}
	}

	if total > 0 {
		sum.Share = make(map[emotion.Label]float64, len(byLabel))
		for l, d := range byLabel {
			sum.Share[l] = emotion.Round3(d / total)
		}
	}
	return sum
}
