package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url"`
}
type ASR struct {
	URL      string `yaml:"url"`
	Provider string `yaml:"provider"`           // "http" or "openai"
	BaseURL  string `yaml:"base_url,omitempty"` // openai only, empty = public API
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	Language string `yaml:"language,omitempty"`
}
type Services struct {
	ASR          ASR     `yaml:"asr"`
	AudioEmotion Service `yaml:"audio_emotion"`
	Sentiment    Service `yaml:"sentiment"`
	Dashboard    Service `yaml:"dashboard"`
	Timeout      int     `yaml:"timeout"`    // seconds per request
	RateLimit    float64 `yaml:"rate_limit"` // requests per second, 0 = unlimited
}
type Audio struct {
	SampleRate int `yaml:"sample_rate"`
}
type Server struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
		Workers int    `yaml:"workers"`
		Timeout int    `yaml:"timeout"` // seconds per run, 0 = none
	} `yaml:"pipeline"`
	Audio    Audio    `yaml:"audio"`
	Services Services `yaml:"services"`
	Server   Server   `yaml:"server"`
	Paths    struct {
		Outputs string `yaml:"outputs"`
	} `yaml:"paths"`
}

const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// Default returns the configuration used when no file is found.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "emotion-timeline"
	c.Pipeline.Version = "0.1.0"
	c.Pipeline.LogLvl = "info"
	c.Pipeline.Workers = 1
	c.Pipeline.Timeout = 300
	c.Audio.SampleRate = 16000
	c.Services.ASR = ASR{URL: "http://localhost:8001", Provider: ProviderHTTP}
	c.Services.AudioEmotion.URL = "http://localhost:8002"
	c.Services.Sentiment.URL = "http://localhost:8003"
	c.Services.Timeout = 60
	c.Server.Addr = ":5000"
	c.Server.MaxUploadMB = 50
	c.Paths.Outputs = "outputs"
	return &c
}

// Load reads path, or when empty the first config found under the
// CONFIG_ENV guesses. Without any file the defaults are returned.
func Load(path string) (*Root, error) {
	if path != "" {
		return loadFile(path)
	}
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	var guess []string = []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	}
	for _, p := range guess {
		cfg, err := loadFile(p)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

func loadFile(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overlays values set in v (environment variables or bound flags) onto
// the config. Keys are the dotted YAML paths, e.g. "services.asr.url".
func (c *Root) Apply(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	str("pipeline.log_level", &c.Pipeline.LogLvl)
	num("pipeline.workers", &c.Pipeline.Workers)
	num("pipeline.timeout", &c.Pipeline.Timeout)
	num("audio.sample_rate", &c.Audio.SampleRate)
	str("services.asr.url", &c.Services.ASR.URL)
	str("services.asr.provider", &c.Services.ASR.Provider)
	str("services.asr.base_url", &c.Services.ASR.BaseURL)
	str("services.asr.model", &c.Services.ASR.Model)
	str("services.asr.api_key", &c.Services.ASR.APIKey)
	str("services.asr.language", &c.Services.ASR.Language)
	str("services.audio_emotion.url", &c.Services.AudioEmotion.URL)
	str("services.sentiment.url", &c.Services.Sentiment.URL)
	str("services.dashboard.url", &c.Services.Dashboard.URL)
	num("services.timeout", &c.Services.Timeout)
	if v.IsSet("services.rate_limit") {
		c.Services.RateLimit = v.GetFloat64("services.rate_limit")
	}
	str("server.addr", &c.Server.Addr)
	num("server.max_upload_mb", &c.Server.MaxUploadMB)
	str("paths.outputs", &c.Paths.Outputs)
}

// NewViper returns a viper instance reading EMOTION_* environment variables,
// e.g. EMOTION_SERVICES_ASR_URL for services.asr.url.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("emotion")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate reports the first invalid setting.
func (c *Root) Validate() error {
	switch {
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	case c.Pipeline.Workers < 1:
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	case c.Pipeline.Timeout < 0:
		return fmt.Errorf("pipeline.timeout must not be negative")
	}
	switch c.Services.ASR.Provider {
	case ProviderHTTP:
		if c.Services.ASR.URL == "" {
			return errors.New("services.asr.url is required for the http provider")
		}
	case ProviderOpenAI:
		if c.Services.ASR.APIKey == "" {
			return errors.New("services.asr.api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown services.asr.provider %q", c.Services.ASR.Provider)
	}
	if c.Services.AudioEmotion.URL == "" {
		return errors.New("services.audio_emotion.url is required")
	}
	if c.Services.Sentiment.URL == "" {
		return errors.New("services.sentiment.url is required")
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Root) YAML() ([]byte, error) { return yaml.Marshal(c) }

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
