package clients

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maastricht-university/emotion-timeline/audio"
)

// OpenAIASR transcribes through the OpenAI audio API.
type OpenAIASR struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAIASR builds a Whisper client. An empty baseURL uses the public API.
func NewOpenAIASR(apiKey, baseURL, model, language string) *OpenAIASR {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIASR{client: openai.NewClientWithConfig(cfg), model: model, language: language}
}

func (o *OpenAIASR) Transcribe(ctx context.Context, track *audio.Track) (*ASRResp, error) {
	wavPath, cleanup, err := trackFile(track)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: wavPath,
		Language: o.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai asr: %w", err)
	}

	out := &ASRResp{Language: resp.Language, Segments: make([]TransSeg, 0, len(resp.Segments))}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, TransSeg{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}
