package clients

import (
	"context"
	"fmt"
	"sort"
)

// --- Acoustic emotion (/classify) ---
type AudioEmoReq struct {
	SampleRate int       `json:"sample_rate"`
	Waveform   []float32 `json:"waveform"`
}
type AudioEmoResp struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
}

func (h *HTTP) AudioEmotion(ctx context.Context, url string, waveform []float32, sampleRate int) (*AudioEmoResp, error) {
	var out AudioEmoResp
	req := AudioEmoReq{SampleRate: sampleRate, Waveform: waveform}
	if err := h.postJSON(ctx, "audio emotion", url+"/classify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcousticService binds an acoustic model endpoint.
type AcousticService struct {
	HTTP *HTTP
	URL  string
}

// ClassifyAudio returns the native top label and the class probabilities in
// label order.
func (s *AcousticService) ClassifyAudio(ctx context.Context, waveform []float32, sampleRate int) (string, []float64, error) {
	resp, err := s.HTTP.AudioEmotion(ctx, s.URL, waveform, sampleRate)
	if err != nil {
		return "", nil, err
	}
	if resp.Label == "" {
		return "", nil, fmt.Errorf("audio emotion: response without label")
	}
	keys := make([]string, 0, len(resp.Probabilities))
	for k := range resp.Probabilities {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	probs := make([]float64, len(keys))
	for i, k := range keys {
		probs[i] = resp.Probabilities[k]
	}
	return resp.Label, probs, nil
}
