package emotion

import (
	"context"
	"fmt"
	"strings"
)

// MinChunkSeconds is the shortest audio the acoustic adapter will classify.
const MinChunkSeconds = 0.3

// AcousticModel is the external acoustic classification capability. It
// returns its native top label and the class probability distribution.
type AcousticModel interface {
	ClassifyAudio(ctx context.Context, waveform []float32, sampleRate int) (string, []float64, error)
}

// SentimentModel is the external text classification capability.
type SentimentModel interface {
	ClassifyText(ctx context.Context, text string) (string, float64, error)
}

// AudioClassifier adapts an AcousticModel to the canonical vocabulary.
type AudioClassifier struct {
	model      AcousticModel
	sampleRate int
}

func NewAudioClassifier(m AcousticModel, sampleRate int) *AudioClassifier {
	return &AudioClassifier{model: m, sampleRate: sampleRate}
}

// Classify returns the acoustic prediction for one chunk. Chunks shorter than
// MinChunkSeconds are not sent to the model and yield {neutral, 0}.
func (c *AudioClassifier) Classify(ctx context.Context, waveform []float32) (Prediction, error) {
	if float64(len(waveform)) < float64(c.sampleRate)*MinChunkSeconds {
		return Prediction{Label: Neutral, Confidence: 0}, nil
	}

	native, probs, err := c.model.ClassifyAudio(ctx, waveform, c.sampleRate)
	if err != nil {
		return Prediction{}, err
	}
	label, err := MapAudioLabel(native)
	if err != nil {
		return Prediction{}, err
	}
	if len(probs) == 0 {
		return Prediction{}, fmt.Errorf("emotion: acoustic model returned no probabilities")
	}
	top := probs[0]
	for _, p := range probs[1:] {
		if p > top {
			top = p
		}
	}
	if top < 0 || top > 1 {
		return Prediction{}, fmt.Errorf("emotion: acoustic probability %v out of range", top)
	}
	return Prediction{Label: label, Confidence: Round3(top)}, nil
}

// TextClassifier adapts a SentimentModel to the canonical vocabulary.
type TextClassifier struct {
	model SentimentModel
}

func NewTextClassifier(m SentimentModel) *TextClassifier {
	return &TextClassifier{model: m}
}

// Classify returns the textual prediction for one chunk. Blank text yields
// {neutral, 0} without calling the model.
func (c *TextClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return Prediction{Label: Neutral, Confidence: 0}, nil
	}

	polarity, score, err := c.model.ClassifyText(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	label, err := MapTextLabel(polarity)
	if err != nil {
		return Prediction{}, err
	}
	if score < 0 || score > 1 {
		return Prediction{}, fmt.Errorf("emotion: sentiment score %v out of range", score)
	}
	return Prediction{Label: label, Confidence: Round3(score)}, nil
}
