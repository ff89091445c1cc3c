package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/wwbasic/pkg/logger"
	"github.com/zurustar/wwbasic/pkg/value"
)

// RunConfig is the YAML run configuration:
//
//	log_level: debug
//	log_format: json
//	encoding: shift-jis
//	max_call_depth: 200
//	strict: true
//	files: [main.bas, lib/]
//	globals:
//	  debug: true
//	  limit: 10
//	  greeting: hello
type RunConfig struct {
	LogLevel     string         `yaml:"log_level"`
	LogFormat    string         `yaml:"log_format"`
	Encoding     string         `yaml:"encoding"`
	MaxCallDepth int            `yaml:"max_call_depth"`
	Strict       *bool          `yaml:"strict"`
	Files        []string       `yaml:"files"`
	Globals      map[string]any `yaml:"globals"`

	dir string
}

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Source string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: %s", e.Source, e.Issues[0])
	}
	return fmt.Sprintf("%s: %d problems:\n  - %s", e.Source, len(e.Issues), strings.Join(e.Issues, "\n  - "))
}

// LoadRunConfig reads and validates a run configuration file. Unknown keys
// are rejected.
func LoadRunConfig(path string) (*RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	rc, err := DecodeRunConfig(f, path)
	if err != nil {
		return nil, err
	}
	rc.dir = filepath.Dir(path)
	return rc, nil
}

// DecodeRunConfig decodes a run configuration from r. name is used in
// error messages.
func DecodeRunConfig(r io.Reader, name string) (*RunConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	rc := &RunConfig{}
	if err := dec.Decode(rc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	if err := rc.Validate(name); err != nil {
		return nil, err
	}
	return rc, nil
}

// Validate checks every field and reports all problems at once.
func (rc *RunConfig) Validate(name string) error {
	var issues []string

	if rc.LogLevel != "" {
		if _, err := logger.ParseLevel(rc.LogLevel); err != nil {
			issues = append(issues, fmt.Sprintf("log_level: %v", err))
		}
	}
	if rc.LogFormat != "" && !strings.EqualFold(rc.LogFormat, "text") && !strings.EqualFold(rc.LogFormat, "json") {
		issues = append(issues, fmt.Sprintf("log_format: must be text or json, got %q", rc.LogFormat))
	}
	if rc.Encoding != "" && !validEncoding(rc.Encoding) {
		issues = append(issues, fmt.Sprintf("encoding: unsupported encoding %q", rc.Encoding))
	}
	if rc.MaxCallDepth < 0 {
		issues = append(issues, fmt.Sprintf("max_call_depth: must not be negative, got %d", rc.MaxCallDepth))
	}
	for i, f := range rc.Files {
		if strings.TrimSpace(f) == "" {
			issues = append(issues, fmt.Sprintf("files[%d]: empty path", i))
		}
	}

	names := make([]string, 0, len(rc.Globals))
	for n := range rc.Globals {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if !isIdentifier(n) {
			issues = append(issues, fmt.Sprintf("globals: %q is not a valid identifier", n))
		}
		switch v := rc.Globals[n].(type) {
		case bool, int, int64, string:
		default:
			issues = append(issues, fmt.Sprintf("globals.%s: unsupported value %v (%T), want bool, integer or string", n, v, v))
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Source: name, Issues: issues}
	}
	return nil
}

// ResolvedFiles returns Files relative to the directory of the
// configuration file.
func (rc *RunConfig) ResolvedFiles() []string {
	out := make([]string, len(rc.Files))
	for i, f := range rc.Files {
		if rc.dir != "" && !filepath.IsAbs(f) {
			f = filepath.Join(rc.dir, f)
		}
		out[i] = f
	}
	return out
}

// GlobalValues converts Globals into interpreter values.
func (rc *RunConfig) GlobalValues() map[string]value.Value {
	if len(rc.Globals) == 0 {
		return nil
	}
	out := make(map[string]value.Value, len(rc.Globals))
	for n, v := range rc.Globals {
		out[n] = value.FromAny(v)
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '.'):
		default:
			return false
		}
	}
	return true
}
