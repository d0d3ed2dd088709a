package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maastricht-university/emotion-timeline/audio"
)

func TestASRUploadsWavWithWordTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("word_timestamps"); got != "true" {
			t.Errorf("word_timestamps = %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		head := make([]byte, 4)
		io.ReadFull(f, head)
		if string(head) != "RIFF" {
			t.Errorf("upload is not a wav: %q", head)
		}
		w.Write([]byte(`{"language":"en","segments":[{"start":0,"end":2.5,"text":" I am so happy today"}]}`))
	}))
	defer srv.Close()

	svc := &ASRService{HTTP: NewHTTP(), URL: srv.URL}
	track := &audio.Track{SampleRate: 16000, Samples: make([]float32, 1600)}
	resp, err := svc.Transcribe(context.Background(), track)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(resp.Segments) != 1 || resp.Segments[0].End != 2.5 || resp.Language != "en" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestAcousticServiceReturnsDistribution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AudioEmoReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.SampleRate != 16000 || len(req.Waveform) != 3 {
			t.Errorf("req = %+v", req)
		}
		w.Write([]byte(`{"label":"hap","probabilities":{"neu":0.1,"hap":0.62,"ang":0.08,"sad":0.2}}`))
	}))
	defer srv.Close()

	svc := &AcousticService{HTTP: NewHTTP(), URL: srv.URL}
	label, probs, err := svc.ClassifyAudio(context.Background(), []float32{0, 0.1, 0.2}, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if label != "hap" || len(probs) != 4 {
		t.Fatalf("label=%s probs=%v", label, probs)
	}
	// sorted by label: ang, hap, neu, sad
	if probs[1] != 0.62 {
		t.Errorf("probs = %v", probs)
	}
}

func TestSentimentServiceEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc := &SentimentService{HTTP: NewHTTP(), URL: srv.URL}
	if _, _, err := svc.ClassifyText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty sentiment response")
	}
}

func TestSentimentServiceTopLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SentimentReq
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "I am so happy today" {
			t.Errorf("text = %q", req.Text)
		}
		w.Write([]byte(`[{"label":"POSITIVE","score":0.91}]`))
	}))
	defer srv.Close()

	svc := &SentimentService{HTTP: NewHTTP(), URL: srv.URL}
	label, score, err := svc.ClassifyText(context.Background(), "I am so happy today")
	if err != nil {
		t.Fatal(err)
	}
	if label != "POSITIVE" || score != 0.91 {
		t.Fatalf("got %s/%v", label, score)
	}
}

func TestNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP().Sentiment(context.Background(), srv.URL, "x")
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("err = %v", err)
	}
}

func TestTimeoutOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	h := NewHTTP(WithTimeout(20 * time.Millisecond))
	if _, err := h.Sentiment(context.Background(), srv.URL, "x"); err == nil {
		t.Fatal("expected timeout")
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"NEUTRAL","score":0.5}]`))
	}))
	defer srv.Close()

	h := NewHTTP(WithRateLimit(0.001))
	if _, err := h.Sentiment(context.Background(), srv.URL, "first"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.Sentiment(ctx, srv.URL, "second"); err == nil {
		t.Fatal("expected the limiter to give up on the deadline")
	}
}

func TestPublishTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timeline" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	resp, err := NewHTTP().PublishTimeline(context.Background(), srv.URL, map[string]any{"run_id": "x"})
	if err != nil || resp.Status != "ok" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}

func TestOpenAIASRSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task":"transcribe","language":"english","duration":4,"text":"Hi. Bye.",
			"segments":[{"id":0,"start":0,"end":1.2,"text":" Hi."},{"id":1,"start":1.2,"end":4,"text":" Bye."}]}`))
	}))
	defer srv.Close()

	asr := NewOpenAIASR("test-key", srv.URL+"/v1", "", "")
	track := &audio.Track{SampleRate: 16000, Samples: make([]float32, 64000)}
	resp, err := asr.Transcribe(context.Background(), track)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(resp.Segments) != 2 || resp.Segments[1].Start != 1.2 || resp.Segments[1].Text != " Bye." {
		t.Fatalf("segments = %+v", resp.Segments)
	}
}
