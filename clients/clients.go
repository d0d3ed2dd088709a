package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTP talks to the model services. A single value is safe for concurrent use.
type HTTP struct {
	c       *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

type Option func(*HTTP)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.c.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(h *HTTP) {
		if perSecond > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *HTTP) {
		if l != nil {
			h.log = l
		}
	}
}

func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{
		c:   &http.Client{Timeout: 60 * time.Second},
		log: logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// do sends req and decodes a 200 JSON response into out. name prefixes errors.
func (h *HTTP) do(ctx context.Context, name string, req *http.Request, out any) error {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s rate limit: %w", name, err)
		}
	}

	t0 := time.Now()
	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	h.log.WithFields(logrus.Fields{
		"service": name,
		"url":     req.URL.String(),
		"status":  resp.StatusCode,
		"elapsed": time.Since(t0).Round(time.Millisecond),
	}).Debug("model service call")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s %s: %s", name, resp.Status, bytes.TrimSpace(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}

func (h *HTTP) postJSON(ctx context.Context, name, url string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s encode: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(ctx, name, req, out)
}
