package audio

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

type ratePair struct{ from, to int }

// delays caches the measured filter delay per conversion, in output samples.
var delays sync.Map

// Resample converts mono samples from one rate to another. Equal rates return
// the input unchanged. The output holds exactly round(len(in)*to/from)
// samples, aligned with the input in time.
func Resample(in []float32, from, to int) ([]float32, error) {
	if from == to || len(in) == 0 {
		return in, nil
	}
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("audio: invalid resample %d -> %d", from, to)
	}

	input := make([]float64, len(in))
	for i, s := range in {
		input[i] = float64(s)
	}
	output, err := resampleAll(input, from, to)
	if err != nil {
		return nil, err
	}
	delay, err := filterDelay(from, to)
	if err != nil {
		return nil, err
	}
	if delay > len(output) {
		delay = len(output)
	}
	output = output[delay:]

	want := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	out := make([]float32, want)
	for i := 0; i < want && i < len(output); i++ {
		s := output[i]
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		out[i] = float32(s)
	}
	return out, nil
}

// resampleAll runs input through a fresh resampler and flushes the filter
// tail.
func resampleAll(input []float64, from, to int) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: create resampler: %w", err)
	}
	out, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("audio: resample: %w", err)
	}
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("audio: resample flush: %w", err)
	}
	return append(out, tail...), nil
}

// filterDelay measures how many output samples the resampler shifts its
// signal by: the position of the peak response to an impulse at sample 0.
func filterDelay(from, to int) (int, error) {
	key := ratePair{from, to}
	if d, ok := delays.Load(key); ok {
		return d.(int), nil
	}
	impulse := make([]float64, from/10+64)
	impulse[0] = 1
	resp, err := resampleAll(impulse, from, to)
	if err != nil {
		return 0, err
	}
	peak, best := 0, 0.0
	for i, s := range resp {
		if a := math.Abs(s); a > best {
			peak, best = i, a
		}
	}
	delays.Store(key, peak)
	return peak, nil
}
