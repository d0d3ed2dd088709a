package orchestrator

import (
	"time"

	"github.com/maastricht-university/emotion-timeline/emotion"
)

// Segment is one transcribed sentence with its timing in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Chunk is a Segment together with the audio it covers.
type Chunk struct {
	Start    float64 // sec, 2 decimals
	End      float64 // sec, 2 decimals
	Text     string
	Waveform []float32
}

// TimelineEntry is the fused emotion for one chunk.
type TimelineEntry struct {
	StartTime  float64       `json:"start_time"`
	EndTime    float64       `json:"end_time"`
	Text       string        `json:"text"`
	Emotion    emotion.Label `json:"emotion"`
	Confidence float64       `json:"confidence"`

	// explain output only
	AudioPred emotion.Prediction `json:"-"`
	TextPred  emotion.Prediction `json:"-"`
	Rule      emotion.Rule       `json:"-"`
}

// Summary aggregates a timeline.
type Summary struct {
	Dominant          emotion.Label             `json:"dominant_emotion"`
	AverageConfidence float64                   `json:"average_confidence"`
	SpeechSeconds     float64                   `json:"speech_seconds"`
	Share             map[emotion.Label]float64 `json:"emotion_share,omitempty"` // label -> share of speech time
}

// Result is one complete analysis of an audio file.
type Result struct {
	RunID       string          `json:"run_id"`
	AudioPath   string          `json:"audio_path,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Timeline    []TimelineEntry `json:"timeline"`
	Summary     Summary         `json:"summary"`
}
