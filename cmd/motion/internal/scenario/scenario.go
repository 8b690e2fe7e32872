// Package scenario loads scripted update cycles and replays them through
// layout schedulers.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/errors"
)

// SupportedMajor is the scenario schema major version this package reads.
const SupportedMajor = "v1"

// Scenario is a scripted sequence of update cycles.
type Scenario struct {
	Version string `yaml:"version" toml:"version"`
	// Trees are named layout order cells shared by the elements that
	// reference them.
	Trees    map[string]int `yaml:"trees" toml:"trees"`
	Elements []ElementSpec  `yaml:"elements" toml:"elements"`
	Cycles   []CycleSpec    `yaml:"cycles" toml:"cycles"`
}

// ElementSpec declares an element. An empty Group makes it standalone.
type ElementSpec struct {
	Name     string    `yaml:"name" toml:"name"`
	LayoutID string    `yaml:"layout_id" toml:"layout_id"`
	Group    string    `yaml:"group" toml:"group"`
	Tree     string    `yaml:"tree" toml:"tree"`
	Depth    int       `yaml:"depth" toml:"depth"`
	Box      []float64 `yaml:"box" toml:"box"`
	Drag     bool      `yaml:"drag" toml:"drag"`
	Layout   bool      `yaml:"layout" toml:"layout"`
}

// CycleSpec is one update cycle. Mounts, unmounts, tree orders and element
// changes are all applied by the cycle's commit.
type CycleSpec struct {
	Mount   []string        `yaml:"mount" toml:"mount"`
	Unmount []string        `yaml:"unmount" toml:"unmount"`
	Trees   map[string]int  `yaml:"trees" toml:"trees"`
	Set     []ElementChange `yaml:"set" toml:"set"`
}

// ElementChange mutates an element during a commit.
type ElementChange struct {
	Element  string    `yaml:"element" toml:"element"`
	LayoutID *string   `yaml:"layout_id" toml:"layout_id"`
	Box      []float64 `yaml:"box" toml:"box"`
}

// Load reads a scenario from a .yaml, .yml or .toml file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("scenario.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a scenario. format is a file extension such as ".toml".
func Parse(data []byte, format string) (*Scenario, error) {
	var s Scenario
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, configError("scenario.Parse", fmt.Errorf("failed to parse yaml: %w", err))
		}
	case ".toml":
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, configError("scenario.Parse", fmt.Errorf("failed to parse toml: %w", err))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, configError("scenario.Parse", fmt.Errorf("unknown toml keys: %v", undecoded))
		}
	default:
		return nil, configError("scenario.Parse", fmt.Errorf("unsupported scenario format %q", format))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the schema version and that every reference resolves.
func (s *Scenario) Validate() error {
	fail := func(format string, args ...any) error {
		return configError("scenario.Validate", fmt.Errorf(format, args...))
	}

	if !semver.IsValid(s.Version) {
		return fail("version %q is not a semantic version", s.Version)
	}
	if major := semver.Major(s.Version); major != SupportedMajor {
		return fail("version %s is not supported (want %s.x.y)", s.Version, SupportedMajor)
	}

	names := make(map[string]bool, len(s.Elements))
	for i, e := range s.Elements {
		if e.Name == "" {
			return fail("elements[%d] has no name", i)
		}
		if names[e.Name] {
			return fail("element %q declared twice", e.Name)
		}
		names[e.Name] = true
		if e.Tree != "" {
			if _, ok := s.Trees[e.Tree]; !ok {
				return fail("element %q references unknown tree %q", e.Name, e.Tree)
			}
		}
		if len(e.Box) != 0 && len(e.Box) != 4 {
			return fail("element %q box must be [left, top, width, height]", e.Name)
		}
	}

	for i, c := range s.Cycles {
		for _, name := range append(append([]string{}, c.Mount...), c.Unmount...) {
			if !names[name] {
				return fail("cycles[%d] references unknown element %q", i, name)
			}
		}
		for tree := range c.Trees {
			if _, ok := s.Trees[tree]; !ok {
				return fail("cycles[%d] references unknown tree %q", i, tree)
			}
		}
		for _, change := range c.Set {
			if !names[change.Element] {
				return fail("cycles[%d] changes unknown element %q", i, change.Element)
			}
			if len(change.Box) != 0 && len(change.Box) != 4 {
				return fail("cycles[%d] box for %q must be [left, top, width, height]", i, change.Element)
			}
		}
	}
	return nil
}

func configError(op string, err error) error {
	return &errors.MotionError{Op: op, Kind: errors.KindConfig, Err: err}
}
