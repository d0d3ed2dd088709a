// Package emotion holds the canonical emotion vocabulary, the adapters that
// map each model's native labels onto it, and the fusion policy that
// reconciles the acoustic and textual predictions for one sentence.
package emotion

import (
	"errors"
	"fmt"
	"math"
)

// Label is one of the canonical emotions both modalities map into.
type Label string

const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Angry   Label = "angry"
	Neutral Label = "neutral"
)

// Labels lists the canonical vocabulary.
var Labels = []Label{Happy, Sad, Angry, Neutral}

// Valid reports whether l is part of the canonical vocabulary.
func (l Label) Valid() bool {
	switch l {
	case Happy, Sad, Angry, Neutral:
		return true
	}
	return false
}

// Prediction is one modality's judgement for one chunk.
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Modality names the source of a prediction.
type Modality string

const (
	Acoustic Modality = "audio"
	Textual  Modality = "text"
)

// audioLabels maps the acoustic model's native vocabulary.
var audioLabels = map[string]Label{
	"neu": Neutral,
	"hap": Happy,
	"ang": Angry,
	"sad": Sad,
}

// textLabels maps sentiment polarity. There is no entry yielding Angry.
var textLabels = map[string]Label{
	"POSITIVE": Happy,
	"NEGATIVE": Sad,
	"NEUTRAL":  Neutral,
}

// ErrContractViolation matches any ContractViolation via errors.Is.
var ErrContractViolation = errors.New("emotion: contract violation")

// ContractViolation reports a model label outside the expected vocabulary.
type ContractViolation struct {
	Modality Modality
	Label    string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("emotion: %s model returned unmapped label %q", e.Modality, e.Label)
}

func (e *ContractViolation) Is(target error) bool { return target == ErrContractViolation }

// MapAudioLabel maps an acoustic model label onto the canonical set.
func MapAudioLabel(native string) (Label, error) {
	l, ok := audioLabels[native]
	if !ok {
		return "", &ContractViolation{Modality: Acoustic, Label: native}
	}
	return l, nil
}

// MapTextLabel maps a sentiment polarity onto the canonical set.
func MapTextLabel(polarity string) (Label, error) {
	l, ok := textLabels[polarity]
	if !ok {
		return "", &ContractViolation{Modality: Textual, Label: polarity}
	}
	return l, nil
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }
