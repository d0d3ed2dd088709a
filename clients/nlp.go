package clients

import (
	"context"
	"fmt"
)

// --- Text sentiment (/sentiment) ---
type SentimentReq struct {
	Text string `json:"text"`
}
type SentimentScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (h *HTTP) Sentiment(ctx context.Context, url, text string) ([]SentimentScore, error) {
	var out []SentimentScore
	if err := h.postJSON(ctx, "sentiment", url+"/sentiment", SentimentReq{Text: text}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SentimentService binds a sentiment model endpoint.
type SentimentService struct {
	HTTP *HTTP
	URL  string
}

// ClassifyText returns the top polarity label and its score.
func (s *SentimentService) ClassifyText(ctx context.Context, text string) (string, float64, error) {
	scores, err := s.HTTP.Sentiment(ctx, s.URL, text)
	if err != nil {
		return "", 0, err
	}
	if len(scores) == 0 {
		return "", 0, fmt.Errorf("sentiment: empty response")
	}
	return scores[0].Label, scores[0].Score, nil
}
