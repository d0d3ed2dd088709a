package emotion

import (
	"context"
	"errors"
	"testing"
)

type fakeAcoustic struct {
	label string
	probs []float64
	err   error
	calls int
}

func (f *fakeAcoustic) ClassifyAudio(_ context.Context, _ []float32, _ int) (string, []float64, error) {
	f.calls++
	return f.label, f.probs, f.err
}

type fakeSentiment struct {
	label string
	score float64
	err   error
	calls int
}

func (f *fakeSentiment) ClassifyText(_ context.Context, _ string) (string, float64, error) {
	f.calls++
	return f.label, f.score, f.err
}

func TestAudioClassifierShortChunkFloor(t *testing.T) {
	m := &fakeAcoustic{label: "ang", probs: []float64{0.9}}
	c := NewAudioClassifier(m, 16000)

	for _, n := range []int{0, 1, 4799} {
		wave := make([]float32, n)
		for i := range wave {
			wave[i] = 0.9
		}
		got, err := c.Classify(context.Background(), wave)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if got != (Prediction{Label: Neutral, Confidence: 0}) {
			t.Errorf("n=%d: got %+v, want neutral/0", n, got)
		}
	}
	if m.calls != 0 {
		t.Fatalf("model called %d times for short chunks", m.calls)
	}

	if _, err := c.Classify(context.Background(), make([]float32, 4800)); err != nil {
		t.Fatal(err)
	}
	if m.calls != 1 {
		t.Fatalf("model calls = %d, want 1 at the floor", m.calls)
	}
}

func TestAudioClassifierMapsAndRounds(t *testing.T) {
	cases := []struct {
		native string
		want   Label
	}{
		{"neu", Neutral},
		{"hap", Happy},
		{"ang", Angry},
		{"sad", Sad},
	}
	for _, tc := range cases {
		m := &fakeAcoustic{label: tc.native, probs: []float64{0.1, 0.61849, 0.2}}
		got, err := NewAudioClassifier(m, 16000).Classify(context.Background(), make([]float32, 16000))
		if err != nil {
			t.Fatalf("%s: %v", tc.native, err)
		}
		if got.Label != tc.want || got.Confidence != 0.618 {
			t.Errorf("%s: got %+v, want %s/0.618", tc.native, got, tc.want)
		}
	}
}

func TestAudioClassifierUnmappedLabel(t *testing.T) {
	m := &fakeAcoustic{label: "fear", probs: []float64{0.9}}
	_, err := NewAudioClassifier(m, 16000).Classify(context.Background(), make([]float32, 16000))
	var cv *ContractViolation
	if !errors.As(err, &cv) {
		t.Fatalf("err = %v, want ContractViolation", err)
	}
	if cv.Modality != Acoustic || cv.Label != "fear" {
		t.Errorf("violation = %+v", cv)
	}
	if !errors.Is(err, ErrContractViolation) {
		t.Error("errors.Is(err, ErrContractViolation) = false")
	}
}

func TestAudioClassifierPropagatesModelError(t *testing.T) {
	boom := errors.New("boom")
	m := &fakeAcoustic{err: boom}
	_, err := NewAudioClassifier(m, 16000).Classify(context.Background(), make([]float32, 16000))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestAudioClassifierEmptyDistribution(t *testing.T) {
	m := &fakeAcoustic{label: "hap"}
	if _, err := NewAudioClassifier(m, 16000).Classify(context.Background(), make([]float32, 16000)); err == nil {
		t.Fatal("expected error for empty probabilities")
	}
}

func TestTextClassifierMapping(t *testing.T) {
	cases := []struct {
		polarity string
		want     Label
	}{
		{"POSITIVE", Happy},
		{"NEGATIVE", Sad},
		{"NEUTRAL", Neutral},
	}
	for _, tc := range cases {
		m := &fakeSentiment{label: tc.polarity, score: 0.99987}
		got, err := NewTextClassifier(m).Classify(context.Background(), "some words")
		if err != nil {
			t.Fatalf("%s: %v", tc.polarity, err)
		}
		if got.Label != tc.want || got.Confidence != 1 {
			t.Errorf("%s: got %+v, want %s/1", tc.polarity, got, tc.want)
		}
	}
}

func TestTextClassifierNeverAngry(t *testing.T) {
	m := &fakeSentiment{label: "ANGRY", score: 0.9}
	_, err := NewTextClassifier(m).Classify(context.Background(), "grr")
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("err = %v, want contract violation", err)
	}
}

func TestTextClassifierBlankText(t *testing.T) {
	m := &fakeSentiment{label: "POSITIVE", score: 0.9}
	got, err := NewTextClassifier(m).Classify(context.Background(), "  \t")
	if err != nil {
		t.Fatal(err)
	}
	if got != (Prediction{Label: Neutral}) || m.calls != 0 {
		t.Fatalf("got %+v calls=%d, want neutral/0 without a model call", got, m.calls)
	}
}
