package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Narration modes.
const (
	NarrationOff     = "off"
	NarrationCaption = "caption"
	NarrationCommand = "command"
)

// Settings is the fully resolved configuration.
type Settings struct {
	Learner string
	Locale  string

	NarrationMode    string
	NarrationCommand string

	ChallengeDurations map[int]time.Duration
	ChallengePolicy    string
	ChallengeLength    int

	FallbackWait time.Duration

	SyncEndpoint  string
	SyncToken     string
	SyncBatchSize int
	SyncOnExit    bool

	ContentDir string

	LogLevel string
	LogFile  string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Locale:        "en",
		NarrationMode: NarrationCaption,
		ChallengeDurations: map[int]time.Duration{
			1: 45 * time.Second,
			2: 30 * time.Second,
			3: 20 * time.Second,
		},
		ChallengePolicy: "endless",
		FallbackWait:    3 * time.Second,
		SyncBatchSize:   200,
		ContentDir:      DefaultContentDir(),
		LogLevel:        "info",
		LogFile:         DefaultLogPath(),
	}
}

// Resolve layers the file over the defaults, then the environment.
func Resolve(fc FileConfig) (Settings, error) {
	s := Defaults()

	setString(&s.Learner, fc.Learner.Name)
	setString(&s.Locale, fc.Learner.Locale)
	setString(&s.NarrationMode, fc.Narration.Mode)
	setString(&s.NarrationCommand, fc.Narration.Command)
	setDuration(s.ChallengeDurations, 1, fc.Challenge.Easy)
	setDuration(s.ChallengeDurations, 2, fc.Challenge.Medium)
	setDuration(s.ChallengeDurations, 3, fc.Challenge.Hard)
	setString(&s.ChallengePolicy, fc.Challenge.Policy)
	if fc.Challenge.Length != nil {
		s.ChallengeLength = *fc.Challenge.Length
	}
	if fc.Training.FallbackWait != nil {
		s.FallbackWait = *fc.Training.FallbackWait
	}
	setString(&s.SyncEndpoint, fc.Sync.Endpoint)
	setString(&s.SyncToken, fc.Sync.Token)
	if fc.Sync.BatchSize != nil {
		s.SyncBatchSize = *fc.Sync.BatchSize
	}
	if fc.Sync.OnExit != nil {
		s.SyncOnExit = *fc.Sync.OnExit
	}
	setString(&s.ContentDir, fc.Content.Dir)
	setString(&s.LogLevel, fc.Log.Level)
	setString(&s.LogFile, fc.Log.File)

	if v := os.Getenv("MATHBLOCKS_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("MATHBLOCKS_SYNC_TOKEN"); v != "" {
		s.SyncToken = v
	}

	return s, s.Validate()
}

// Validate checks enumerations and ranges.
func (s Settings) Validate() error {
	switch s.NarrationMode {
	case NarrationOff, NarrationCaption, NarrationCommand:
	default:
		return fmt.Errorf("narration mode %q: want off, caption or command", s.NarrationMode)
	}
	if s.NarrationMode == NarrationCommand && strings.TrimSpace(s.NarrationCommand) == "" {
		return fmt.Errorf("narration mode command needs narration.command")
	}
	switch s.ChallengePolicy {
	case "endless", "fixed_length":
	default:
		return fmt.Errorf("challenge policy %q: want endless or fixed_length", s.ChallengePolicy)
	}
	if s.ChallengeLength < 0 {
		return fmt.Errorf("challenge length must not be negative")
	}
	for level, d := range s.ChallengeDurations {
		if d < time.Second {
			return fmt.Errorf("challenge duration for level %d must be at least 1s", level)
		}
	}
	if s.FallbackWait <= 0 {
		return fmt.Errorf("training fallback wait must be positive")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(m map[int]time.Duration, level int, v *time.Duration) {
	if v != nil {
		m[level] = *v
	}
}
