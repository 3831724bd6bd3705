package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig  `yaml:"server"`
	Backend    BackendConfig `yaml:"backend"`
	Engine     EngineConfig  `yaml:"engine"`
	Storage    StorageConfig `yaml:"storage"`
	Logging    LoggingConfig `yaml:"logging"`
	ModelsRoot string        `yaml:"models_root"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// BackendConfig selects the detection backend and its load policy.
type BackendConfig struct {
	ObjectModelPath string `yaml:"object_model_path"`
	FaceModelPath   string `yaml:"face_model_path"`
	LibraryPath     string `yaml:"library_path"`
	InputWidth      int    `yaml:"input_width"`
	InputHeight     int    `yaml:"input_height"`
	UseCUDA         bool   `yaml:"use_cuda"`
	CUDADeviceID    int    `yaml:"cuda_device_id"`

	MaxLoadAttempts  int `yaml:"max_load_attempts"`
	RetryBackoffSecs int `yaml:"retry_backoff_secs"`
	LoadTimeoutSecs  int `yaml:"load_timeout_secs"`
}

// EngineConfig controls the analysis loop.
type EngineConfig struct {
	Module    string  `yaml:"module"` // empty = run every module
	FrameRate float64 `yaml:"frame_rate"`
	FramesDir string  `yaml:"frames_dir"` // replay source; empty = blank frames
	Pattern   string  `yaml:"pattern"`
	MockSeed  int64   `yaml:"mock_seed"`
}

type StorageConfig struct {
	AlertDBPath string `yaml:"alert_db_path"` // empty disables persistence
}

type LoggingConfig struct {
	Level           string `yaml:"level"`
	LogTickTimes    bool   `yaml:"log_tick_times"`
	BufferedLogging bool   `yaml:"buffered_logging"`
	SampleRate      int    `yaml:"sample_rate"`
	AutoFlush       bool   `yaml:"auto_flush"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.resolvePaths()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8090"
	}
	if cfg.Backend.InputWidth == 0 {
		cfg.Backend.InputWidth = 640
	}
	if cfg.Backend.InputHeight == 0 {
		cfg.Backend.InputHeight = 640
	}
	if cfg.Backend.MaxLoadAttempts == 0 {
		cfg.Backend.MaxLoadAttempts = 3
	}
	if cfg.Backend.RetryBackoffSecs == 0 {
		cfg.Backend.RetryBackoffSecs = 2
	}
	if cfg.Backend.LoadTimeoutSecs == 0 {
		cfg.Backend.LoadTimeoutSecs = 30
	}
	if cfg.Engine.FrameRate == 0 {
		cfg.Engine.FrameRate = 15
	}
	if cfg.Engine.Pattern == "" {
		cfg.Engine.Pattern = "*.png"
	}
	if cfg.Engine.MockSeed == 0 {
		cfg.Engine.MockSeed = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (cfg *Config) resolvePaths() {
	if cfg.ModelsRoot == "" {
		return
	}
	if cfg.Backend.ObjectModelPath != "" && !filepath.IsAbs(cfg.Backend.ObjectModelPath) {
		cfg.Backend.ObjectModelPath = filepath.Join(cfg.ModelsRoot, cfg.Backend.ObjectModelPath)
	}
	if cfg.Backend.FaceModelPath != "" && !filepath.IsAbs(cfg.Backend.FaceModelPath) {
		cfg.Backend.FaceModelPath = filepath.Join(cfg.ModelsRoot, cfg.Backend.FaceModelPath)
	}
}
