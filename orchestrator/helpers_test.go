package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maastricht-university/emotion-timeline/emotion"
)

func TestSummarize(t *testing.T) {
	timeline := []TimelineEntry{
		{StartTime: 0, EndTime: 1, Emotion: emotion.Happy, Confidence: 0.9},
		{StartTime: 1, EndTime: 4, Emotion: emotion.Sad, Confidence: 0.5},
		{StartTime: 4, EndTime: 5, Emotion: emotion.Happy, Confidence: 0.7},
	}
	s := Summarize(timeline)
	if s.Dominant != emotion.Sad {
		t.Errorf("dominant = %s, want sad", s.Dominant)
	}
	if s.AverageConfidence != 0.7 {
		t.Errorf("average = %v, want 0.7", s.AverageConfidence)
	}
	if s.SpeechSeconds != 5 {
		t.Errorf("speech = %v, want 5", s.SpeechSeconds)
	}
	if s.Share[emotion.Sad] != 0.6 || s.Share[emotion.Happy] != 0.4 {
		t.Errorf("share = %v", s.Share)
	}
}

func TestSummarizeTieBreaksAlphabetically(t *testing.T) {
	s := Summarize([]TimelineEntry{
		{StartTime: 0, EndTime: 2, Emotion: emotion.Sad, Confidence: 1},
		{StartTime: 2, EndTime: 4, Emotion: emotion.Angry, Confidence: 1},
	})
	if s.Dominant != emotion.Angry {
		t.Fatalf("dominant = %s, want angry", s.Dominant)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Dominant != emotion.Neutral || s.AverageConfidence != 0 || s.Share != nil {
		t.Fatalf("summary = %+v", s)
	}
}

func TestTimelineEntryJSONShape(t *testing.T) {
	e := TimelineEntry{
		StartTime: 0, EndTime: 2.5, Text: "I am so happy today", Emotion: emotion.Happy, Confidence: 0.765,
		AudioPred: emotion.Prediction{Label: emotion.Happy, Confidence: 0.62},
		Rule:      emotion.RuleAgreement,
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"start_time":0,"end_time":2.5,"text":"I am so happy today","emotion":"happy","confidence":0.765}`
	if string(b) != want {
		t.Fatalf("json = %s\nwant   %s", b, want)
	}
}

func TestSaveResult(t *testing.T) {
	root := filepath.Join(t.TempDir(), "outputs")
	res := &Result{
		RunID:       "0123456789abcdef",
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Timeline:    []TimelineEntry{{StartTime: 0, EndTime: 1, Text: "hi", Emotion: emotion.Neutral}},
	}
	path, err := SaveResult(root, res)
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if filepath.Base(path) != "emotion_20261017-093000_01234567.json" {
		t.Errorf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.RunID != res.RunID || len(back.Timeline) != 1 || !strings.Contains(string(b), `"timeline"`) {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestWriteResultReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	res := &Result{RunID: "r", Timeline: []TimelineEntry{{Text: "hi", Emotion: emotion.Neutral}}}
	if err := WriteResult("/dev/full", res); err == nil {
		t.Fatal("write to a full device reported success")
	}
}
