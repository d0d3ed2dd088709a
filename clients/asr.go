package clients

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/maastricht-university/emotion-timeline/audio"
)

type TransSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// ASR uploads the track to {url}/transcribe asking for word-level timing.
func (h *HTTP) ASR(ctx context.Context, url string, track *audio.Track) (*ASRResp, error) {
	wavPath, cleanup, err := trackFile(track)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.WriteField("word_timestamps", "true"); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out ASRResp
	if err := h.do(ctx, "asr", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// trackFile returns a WAV file holding the track: its source file when it has
// one, otherwise a temporary encoding removed by cleanup.
func trackFile(track *audio.Track) (string, func(), error) {
	if track.Source != "" {
		return track.Source, func() {}, nil
	}
	f, err := os.CreateTemp("", "emotion-*.wav")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }
	if err := audio.Encode(f, track); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// ASRService binds a transcription endpoint.
type ASRService struct {
	HTTP *HTTP
	URL  string
}

func (s *ASRService) Transcribe(ctx context.Context, track *audio.Track) (*ASRResp, error) {
	return s.HTTP.ASR(ctx, s.URL, track)
}
