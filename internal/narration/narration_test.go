package narration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaption(t *testing.T) {
	c := &Caption{}
	c.Speak("Drag ten ones", "en")
	assert.Equal(t, "Drag ten ones", c.Line())
	c.Cancel()
	assert.Empty(t, c.Line())
}

func TestTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	tee := Tee{a, b}
	tee.Speak("hello", "en")
	tee.Cancel()
	assert.Equal(t, []string{"hello"}, a.Lines)
	assert.Equal(t, 1, b.Cancels)
}

func TestCommand_ExpandsLocaleAndAppendsText(t *testing.T) {
	c := NewCommand("espeak -v {locale}", zerolog.Nop())

	var mu sync.Mutex
	var gotName string
	var gotArgs []string
	c.run = func(_ context.Context, name string, args ...string) error {
		mu.Lock()
		defer mu.Unlock()
		gotName, gotArgs = name, args
		return nil
	}

	c.Speak("Well done", "en-GB")
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "espeak", gotName)
	assert.Equal(t, []string{"-v", "en-GB", "Well done"}, gotArgs)
}

func TestCommand_NewLineCancelsPrevious(t *testing.T) {
	c := NewCommand("say", zerolog.Nop())

	started := make(chan context.Context, 2)
	c.run = func(ctx context.Context, _ string, _ ...string) error {
		started <- ctx
		<-ctx.Done()
		return ctx.Err()
	}

	c.Speak("first", "en")
	first := <-started
	c.Speak("second", "en")
	second := <-started

	<-first.Done()
	require.Error(t, first.Err())
	assert.NoError(t, second.Err())

	c.Cancel()
	c.Wait()
	assert.Error(t, second.Err())
}

func TestCommand_FailuresAreSwallowed(t *testing.T) {
	c := NewCommand("missing-tts", zerolog.Nop())
	c.run = func(context.Context, string, ...string) error {
		return errors.New("exec: not found")
	}
	c.Speak("hi", "en")
	c.Wait()
}

func TestCommand_EmptyCommandIsSilent(t *testing.T) {
	c := NewCommand("", zerolog.Nop())
	c.Speak("hi", "en")
	c.Cancel()
	c.Wait()
}
