package env

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathblocks/internal/config"
	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/schedule"
)

type learners struct {
	touched []string
	last    string
}

func (l *learners) Touch(_ context.Context, name string) error {
	l.touched = append(l.touched, name)
	return nil
}

func (l *learners) Last(context.Context) (string, error) { return l.last, nil }

func newEnv(t *testing.T) (*Env, *learners) {
	t.Helper()
	lib, err := content.Builtin()
	require.NoError(t, err)
	l := &learners{last: "Ravi"}
	return &Env{
		Library:  lib,
		Sched:    schedule.New(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Settings: config.Defaults(),
		Learners: l,
		Log:      zerolog.Nop(),
	}, l
}

func TestLastLearner(t *testing.T) {
	e, _ := newEnv(t)
	assert.Equal(t, "Ravi", e.LastLearner())

	e.Settings.Learner = "Mina"
	assert.Equal(t, "Mina", e.LastLearner())
}

func TestSignIn(t *testing.T) {
	e, l := newEnv(t)
	e.SignIn("Asha")
	require.NotNil(t, e.User())
	assert.Equal(t, "Asha", e.User().Name)
	assert.NotEmpty(t, e.User().SessionID)
	assert.Equal(t, []string{"Asha"}, l.touched)
}

func TestPlayboxCached(t *testing.T) {
	e, _ := newEnv(t)
	e.SignIn("Asha")

	a, err := e.Playbox("place-value")
	require.NoError(t, err)
	b, err := e.Playbox("place-value")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, modes.Welcome, a.Mode())

	_, err = e.Playbox("abacus")
	assert.Error(t, err)

	e.SignIn("Ravi")
	c, err := e.Playbox("place-value")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
