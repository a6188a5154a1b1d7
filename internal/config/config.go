// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"` // empty disables auth
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	ScriptModel     string `yaml:"script_model"`
	SpeechModel     string `yaml:"speech_model"`
	SpeechVoice     string `yaml:"speech_voice"`
	TranscribeModel string `yaml:"transcribe_model"`
}

type StorageConfig struct {
	Bucket       string        `yaml:"bucket"`
	CDNDomain    string        `yaml:"cdn_domain"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type TranscodeConfig struct {
	Role             string        `yaml:"role"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	OutputRetries    int           `yaml:"output_retries"`
	OutputRetryDelay time.Duration `yaml:"output_retry_delay"`
	MaxPollDuration  time.Duration `yaml:"max_poll_duration"`
}

type WorkerConfig struct {
	Concurrency int           `yaml:"concurrency"` // parallel queue consumers
	IdleBackoff time.Duration `yaml:"idle_backoff"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Worker    WorkerConfig    `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port <= 0 {
		cfg.Web.Port = 8080
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.ScriptModel == "" {
		cfg.AI.ScriptModel = "gpt-4o-mini"
	}
	if cfg.AI.SpeechModel == "" {
		cfg.AI.SpeechModel = "tts-1"
	}
	if cfg.AI.SpeechVoice == "" {
		cfg.AI.SpeechVoice = "alloy"
	}
	if cfg.AI.TranscribeModel == "" {
		cfg.AI.TranscribeModel = "whisper-1"
	}
	if cfg.Storage.SignedURLTTL <= 0 {
		cfg.Storage.SignedURLTTL = time.Hour
	}
	if cfg.Transcode.PollInterval <= 0 {
		cfg.Transcode.PollInterval = 10 * time.Second
	}
	if cfg.Transcode.OutputRetries <= 0 {
		cfg.Transcode.OutputRetries = 10
	}
	if cfg.Transcode.OutputRetryDelay <= 0 {
		cfg.Transcode.OutputRetryDelay = 5 * time.Second
	}
	if cfg.Transcode.MaxPollDuration <= 0 {
		cfg.Transcode.MaxPollDuration = 2 * time.Hour
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 2
	}
	if cfg.Worker.IdleBackoff <= 0 {
		cfg.Worker.IdleBackoff = time.Second
	}

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Storage.Bucket == "" {
		return nil, errors.New("storage.bucket is required")
	}
	if !dev && cfg.AI.APIKey == "" {
		return nil, errors.New("ai.api_key is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
