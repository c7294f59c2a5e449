// Package config reads the TOML configuration file and resolves it,
// together with flags and environment, into Settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields tell
// "unset" apart from zero values so defaults and flags can fill gaps.
type FileConfig struct {
	Learner   LearnerConfig   `toml:"learner"`
	Narration NarrationConfig `toml:"narration"`
	Challenge ChallengeConfig `toml:"challenge"`
	Training  TrainingConfig  `toml:"training"`
	Sync      SyncConfig      `toml:"sync"`
	Content   ContentConfig   `toml:"content"`
	Log       LogConfig       `toml:"log"`
}

// LearnerConfig maps learner settings.
type LearnerConfig struct {
	Name   *string `toml:"name"`
	Locale *string `toml:"locale"`
}

// NarrationConfig maps narration settings.
type NarrationConfig struct {
	Mode    *string `toml:"mode"`    // off, caption or command
	Command *string `toml:"command"` // e.g. "espeak -v {locale}"
}

// ChallengeConfig maps challenge settings.
type ChallengeConfig struct {
	Easy   *time.Duration `toml:"easy"`
	Medium *time.Duration `toml:"medium"`
	Hard   *time.Duration `toml:"hard"`
	Policy *string        `toml:"policy"`
	Length *int           `toml:"length"`
}

// TrainingConfig maps training settings.
type TrainingConfig struct {
	FallbackWait *time.Duration `toml:"fallback-wait"`
}

// SyncConfig maps the remote analytics collector.
type SyncConfig struct {
	Endpoint  *string `toml:"endpoint"`
	Token     *string `toml:"token"`
	BatchSize *int    `toml:"batch-size"`
	OnExit    *bool   `toml:"on-exit"`
}

// ContentConfig maps content settings.
type ContentConfig struct {
	Dir *string `toml:"dir"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
