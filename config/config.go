package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rui/inter"
	"rui/log"
)

// Run describes one interpreter run. Every field can also be given on the
// command line, which takes precedence.
type Run struct {
	Program  string `yaml:"program"`
	Ascii    bool   `yaml:"ascii"`
	Prompt   bool   `yaml:"prompt"`
	Debug    bool   `yaml:"debug"`
	MaxTicks uint64 `yaml:"max_ticks"`
	LogLevel string `yaml:"log_level"`
	Input    Inputs `yaml:"input"`
}

// Inputs is the pre-supplied input queue. Values may be written as YAML
// integers or strings, so that they are not limited to 64 bits.
type Inputs []*big.Int

func (in *Inputs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*in = nil
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: input must be a list", node.Line)
	}
	values := make(Inputs, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: input values must be numbers", item.Line)
		}
		v, err := inter.ParseValue(item.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		values = append(values, v)
	}
	*in = values
	return nil
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed: " + strings.Join(e.Issues, "; ")
}

// Load reads a run configuration. A relative program path is resolved
// against the directory of the configuration file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	run, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if run.Program != "" && !filepath.IsAbs(run.Program) {
		run.Program = filepath.Join(filepath.Dir(path), run.Program)
	}
	return run, nil
}

// Parse decodes and validates a run configuration. Unknown keys are errors.
func Parse(data []byte) (*Run, error) {
	run := &Run{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(run); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *Run) Validate() error {
	var issues []string
	if _, err := log.ParseLogLevel(r.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("log_level %q: %v", r.LogLevel, err))
	}
	if r.Program != "" && strings.TrimSpace(r.Program) == "" {
		issues = append(issues, "program must not be blank")
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Mode returns the output mode selected by Ascii.
func (r *Run) Mode() inter.Mode {
	if r.Ascii {
		return inter.Unicode
	}
	return inter.Numeric
}
