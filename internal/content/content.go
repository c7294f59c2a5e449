// Package content loads the static tables each model runs on: the
// training script, the challenge question pool and the info text.
//
// Tables ship embedded in the binary. A directory of YAML files can
// replace any of them per model.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/training"
)

// SupportedMajor is the content format major version this build reads.
const SupportedMajor = "v1"

// MaxFileSize caps a single content file.
const MaxFileSize = 1 << 20

// ErrUnsupportedVersion is returned for content written for another
// major format version.
var ErrUnsupportedVersion = errors.New("unsupported content version")

//go:embed data/*.yaml
var builtin embed.FS

// TrainingDoc is the training section of a content file.
type TrainingDoc struct {
	Name  string          `yaml:"name"`
	Steps []training.Step `yaml:"steps"`
}

// Pack is the content for one model.
type Pack struct {
	Version   string               `yaml:"version"`
	Model     string               `yaml:"model"`
	Title     string               `yaml:"title"`
	Info      string               `yaml:"info"`
	Training  TrainingDoc          `yaml:"training"`
	Questions []challenge.Question `yaml:"questions"`

	Source string           `yaml:"-"`
	Layout board.Layout     `yaml:"-"`
	Script *training.Script `yaml:"-"`
}

// Library maps model name to its pack.
type Library map[string]*Pack

// Models returns the model names in display order: built-in layouts
// first, then anything else alphabetically.
func (l Library) Models() []string {
	var out []string
	seen := make(map[string]bool)
	for _, layout := range board.Layouts() {
		if _, ok := l[layout.Name]; ok {
			out = append(out, layout.Name)
			seen[layout.Name] = true
		}
	}
	var rest []string
	for name := range l {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Parse decodes and validates one content file.
func Parse(source string, data []byte) (*Pack, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s: file exceeds %d bytes", source, MaxFileSize)
	}
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: parse: %w", source, err)
	}
	p.Source = source
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &p, nil
}

func (p *Pack) validate() error {
	v := p.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid version %q", p.Version)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, p.Version, SupportedMajor)
	}
	p.Version = v

	layout, ok := board.LayoutByName(p.Model)
	if !ok {
		return fmt.Errorf("unknown model %q", p.Model)
	}
	p.Layout = layout

	name := p.Training.Name
	if name == "" {
		name = p.Model
	}
	script, err := training.NewScript(name, layout, p.Training.Steps)
	if err != nil {
		return err
	}
	p.Script = script

	ids := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if ids[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		ids[q.ID] = true
	}
	return nil
}

// Builtin loads the embedded tables.
func Builtin() (Library, error) {
	return loadFS(builtin, "data")
}

// Load returns the embedded tables with any packs found in overrideDir
// replacing them per model. An empty or missing directory is not an
// error.
func Load(overrideDir string) (Library, error) {
	lib, err := Builtin()
	if err != nil {
		return nil, err
	}
	if overrideDir == "" {
		return lib, nil
	}
	if _, err := os.Stat(overrideDir); errors.Is(err, fs.ErrNotExist) {
		return lib, nil
	}
	extra, err := LoadDir(overrideDir)
	if err != nil {
		return nil, err
	}
	for model, p := range extra {
		lib[model] = p
	}
	return lib, nil
}

// LoadDir loads every *.yaml file in dir.
func LoadDir(dir string) (Library, error) {
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, dir string) (Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	lib := make(Library)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.ToSlash(filepath.Join(dir, e.Name()))
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		p, err := Parse(e.Name(), data)
		if err != nil {
			return nil, err
		}
		if prev, ok := lib[p.Model]; ok {
			return nil, fmt.Errorf("model %q defined twice (%s, %s)", p.Model, prev.Source, p.Source)
		}
		lib[p.Model] = p
	}
	return lib, nil
}

// Marshal encodes a pack back to YAML, e.g. after generating questions.
func Marshal(p *Pack) ([]byte, error) {
	return yaml.Marshal(p)
}
