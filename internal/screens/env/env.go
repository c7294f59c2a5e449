// Package env carries the collaborators every screen shares: content,
// the scheduler, persistence and the signed-in learner.
package env

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/config"
	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/narration"
	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/schedule"
	"github.com/abhisek/mathblocks/internal/store"
)

// Env is shared by all screens of one program run.
type Env struct {
	Library  content.Library
	Sched    *schedule.Scheduler
	Settings config.Settings
	Events   *analytics.Logger
	Narrator narration.Narrator
	Learners store.LearnerRepo
	Results  store.ChallengeRepo
	Rand     *rand.Rand
	Log      zerolog.Logger

	user  *analytics.User
	boxes map[string]*playbox.Playbox
}

// User returns the signed-in learner, or nil.
func (e *Env) User() *analytics.User { return e.user }

// LastLearner returns the configured or most recently seen learner name.
func (e *Env) LastLearner() string {
	if e.Settings.Learner != "" {
		return e.Settings.Learner
	}
	if e.Learners == nil {
		return ""
	}
	name, err := e.Learners.Last(context.Background())
	if err != nil {
		e.Log.Warn().Err(err).Msg("read last learner")
		return ""
	}
	return name
}

// SignIn starts a new session for name. Model instances from an earlier
// session are dropped.
func (e *Env) SignIn(name string) {
	e.user = &analytics.User{Name: name, SessionID: uuid.NewString()}
	e.boxes = nil
	if e.Learners != nil && name != "" {
		if err := e.Learners.Touch(context.Background(), name); err != nil {
			e.Log.Warn().Err(err).Msg("record learner")
		}
	}
	e.Events.LogEvent(context.Background(), "session_start", e.user, nil)
}

// Playbox returns the instance for model, creating it on first use.
func (e *Env) Playbox(model string) (*playbox.Playbox, error) {
	if pb, ok := e.boxes[model]; ok {
		return pb, nil
	}
	pack, ok := e.Library[model]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", model)
	}
	pb := playbox.New(playbox.FromPack(pack), e.Sched, playbox.Config{
		Narrator:     e.Narrator,
		Locale:       e.Settings.Locale,
		Events:       e.Events,
		User:         e.user,
		Results:      e.Results,
		FallbackWait: e.Settings.FallbackWait,
		Durations:    challenge.Durations(e.Settings.ChallengeDurations),
		Policy:       challenge.Policy(e.Settings.ChallengePolicy),
		Length:       e.Settings.ChallengeLength,
		Rand:         e.Rand,
		Log:          e.Log,
	})
	if e.boxes == nil {
		e.boxes = make(map[string]*playbox.Playbox)
	}
	e.boxes[model] = pb
	return pb, nil
}

// Best returns the best recorded challenge score for model.
func (e *Env) Best(model string) (*store.ChallengeResult, error) {
	if e.Results == nil {
		return nil, nil
	}
	return e.Results.Best(context.Background(), model)
}
