// Package narration speaks step text aloud or shows it as a caption.
//
// Narrators are fire-and-forget: Speak never blocks on speech and never
// reports failure to the caller.
package narration

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Narrator is the speech capability used by the training runner.
type Narrator interface {
	Speak(text, locale string)
	Cancel()
}

// Silent discards everything.
type Silent struct{}

func (Silent) Speak(string, string) {}
func (Silent) Cancel()              {}

// Caption keeps the line currently being narrated so the UI can show it.
type Caption struct {
	mu     sync.Mutex
	line   string
	locale string
}

func (c *Caption) Speak(text, locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line, c.locale = text, locale
}

func (c *Caption) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line = ""
}

// Line returns the current caption, empty when nothing is narrated.
func (c *Caption) Line() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

// Command runs an external text-to-speech program per line, e.g.
// "espeak -v {locale}". The text is passed as the final argument. A new
// line or Cancel kills the previous process.
type Command struct {
	name string
	args []string
	log  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	run    func(ctx context.Context, name string, args ...string) error
}

// NewCommand parses a command line such as "say -v {locale}".
func NewCommand(cmdline string, log zerolog.Logger) *Command {
	fields := strings.Fields(cmdline)
	c := &Command{log: log, run: runCommand}
	if len(fields) > 0 {
		c.name, c.args = fields[0], fields[1:]
	}
	return c
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (c *Command) Speak(text, locale string) {
	if c.name == "" || strings.TrimSpace(text) == "" {
		return
	}
	args := make([]string, 0, len(c.args)+1)
	for _, a := range c.args {
		args = append(args, strings.ReplaceAll(a, "{locale}", locale))
	}
	args = append(args, text)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.run(ctx, c.name, args...); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Str("command", c.name).Msg("narration failed")
		}
	}()
}

func (c *Command) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Wait blocks until every spawned process has exited.
func (c *Command) Wait() {
	c.wg.Wait()
}

// Tee fans out to several narrators.
type Tee []Narrator

func (t Tee) Speak(text, locale string) {
	for _, n := range t {
		n.Speak(text, locale)
	}
}

func (t Tee) Cancel() {
	for _, n := range t {
		n.Cancel()
	}
}

// Recorder remembers every call. It is meant for tests.
type Recorder struct {
	mu      sync.Mutex
	Lines   []string
	Cancels int
}

func (r *Recorder) Speak(text, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, text)
}

func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cancels++
}
