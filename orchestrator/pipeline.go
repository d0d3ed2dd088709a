package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/emotion-timeline/audio"
	"github.com/maastricht-university/emotion-timeline/clients"
	cfg "github.com/maastricht-university/emotion-timeline/config"
	"github.com/maastricht-university/emotion-timeline/emotion"
)

// Transcriber is the external speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, track *audio.Track) (*clients.ASRResp, error)
}

type Options struct {
	SampleRate int
	Workers    int           // chunks classified concurrently, <= 1 is sequential
	Timeout    time.Duration // per run, 0 = none
}

type Pipeline struct {
	asr        Transcriber
	audio      *emotion.AudioClassifier
	text       *emotion.TextClassifier
	sampleRate int
	workers    int
	timeout    time.Duration
}

func New(asr Transcriber, am emotion.AcousticModel, sm emotion.SentimentModel, opts Options) *Pipeline {
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}
	return &Pipeline{
		asr:        asr,
		audio:      emotion.NewAudioClassifier(am, opts.SampleRate),
		text:       emotion.NewTextClassifier(sm),
		sampleRate: opts.SampleRate,
		workers:    opts.Workers,
		timeout:    opts.Timeout,
	}
}

// NewPipeline wires the configured model services.
func NewPipeline(c *cfg.Root, log logrus.FieldLogger) *Pipeline {
	h := clients.NewHTTP(
		clients.WithTimeout(cfg.DurSeconds(c.Services.Timeout)),
		clients.WithRateLimit(c.Services.RateLimit),
		clients.WithLogger(log),
	)
	var asr Transcriber = &clients.ASRService{HTTP: h, URL: c.Services.ASR.URL}
	if c.Services.ASR.Provider == cfg.ProviderOpenAI {
		asr = clients.NewOpenAIASR(c.Services.ASR.APIKey, c.Services.ASR.BaseURL, c.Services.ASR.Model, c.Services.ASR.Language)
	}
	return New(
		asr,
		&clients.AcousticService{HTTP: h, URL: c.Services.AudioEmotion.URL},
		&clients.SentimentService{HTTP: h, URL: c.Services.Sentiment.URL},
		Options{
			SampleRate: c.Audio.SampleRate,
			Workers:    c.Pipeline.Workers,
			Timeout:    cfg.DurSeconds(c.Pipeline.Timeout),
		},
	)
}

// SampleRate is the rate tracks must be loaded at.
func (p *Pipeline) SampleRate() int { return p.sampleRate }

// Analyze loads a WAV or MP3 file and runs the pipeline on it.
func (p *Pipeline) Analyze(ctx context.Context, audioPath string) (*Result, error) {
	track, err := audio.Load(audioPath, p.sampleRate)
	if err != nil {
		return nil, &InputError{Path: audioPath, Err: err}
	}
	timeline, err := p.Run(ctx, track)
	if err != nil {
		return nil, err
	}
	return &Result{
		RunID:       uuid.NewString(),
		AudioPath:   audioPath,
		GeneratedAt: time.Now(),
		Timeline:    timeline,
		Summary:     Summarize(timeline),
	}, nil
}

// Run transcribes the track, classifies every sentence by voice and by text
// and returns one fused entry per sentence in transcript order. On any
// failure no timeline is returned.
func (p *Pipeline) Run(ctx context.Context, track *audio.Track) ([]TimelineEntry, error) {
	if track == nil || track.Len() == 0 {
		return nil, &InputError{Err: audio.ErrEmpty}
	}
	if track.SampleRate != p.sampleRate {
		return nil, &InputError{Path: track.Source, Err: fmt.Errorf("sample rate %d, want %d", track.SampleRate, p.sampleRate)}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	asr, err := p.asr.Transcribe(ctx, track)
	if err != nil {
		return nil, adapterError(StageTranscribe, -1, err)
	}

	segs := make([]Segment, 0, len(asr.Segments))
	for _, s := range asr.Segments {
		segs = append(segs, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	chunks := SegmentTrack(track, segs)

	timeline := make([]TimelineEntry, len(chunks))
	if p.workers <= 1 {
		for i := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if timeline[i], err = p.classify(ctx, i, chunks[i]); err != nil {
				return nil, err
			}
		}
		return timeline, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := p.classify(gctx, i, chunks[i])
			if err != nil {
				return err
			}
			timeline[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return timeline, nil
}

func (p *Pipeline) classify(ctx context.Context, i int, c Chunk) (TimelineEntry, error) {
	ap, err := p.audio.Classify(ctx, c.Waveform)
	if err != nil {
		return TimelineEntry{}, adapterError(StageAudio, i, err)
	}
	tp, err := p.text.Classify(ctx, c.Text)
	if err != nil {
		return TimelineEntry{}, adapterError(StageText, i, err)
	}
	f := emotion.Fuse(ap, tp)
	return TimelineEntry{
		StartTime:  c.Start,
		EndTime:    c.End,
		Text:       c.Text,
		Emotion:    f.Label,
		Confidence: f.Confidence,
		AudioPred:  ap,
		TextPred:   tp,
		Rule:       f.Rule,
	}, nil
}

// IsTimeout reports whether err came from a run exceeding its deadline.
func IsTimeout(err error) bool { return errors.Is(err, context.DeadlineExceeded) }
