package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Results  []ScenarioSummary `json:"results"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioSummary is the outcome of one scenario file.
type ScenarioSummary struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Pass bool   `json:"pass"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	Name   string   `json:"name,omitempty"`
	Path   string   `json:"path"`
	Errors []string `json:"errors"`
}

type suiteConfig struct {
	filter    string
	goldenDir string
	update    bool
}

// SuiteOption configures RunDir.
type SuiteOption func(*suiteConfig)

// WithFilter runs only scenarios whose file name, without extension,
// matches the glob pattern.
func WithFilter(pattern string) SuiteOption {
	return func(c *suiteConfig) {
		c.filter = pattern
	}
}

// WithGoldenDir compares each trace with <dir>/<name>.golden. With update
// the golden files are rewritten instead.
func WithGoldenDir(dir string, update bool) SuiteOption {
	return func(c *suiteConfig) {
		c.goldenDir = dir
		c.update = update
	}
}

// RunDir loads and runs every scenario file in dir, in file name order.
// A scenario that fails to load, run, pass or match its golden trace
// counts as failed; the error return is reserved for an unreadable
// directory or a bad filter.
func RunDir(ctx context.Context, dir string, opts ...SuiteOption) (*SuiteResult, error) {
	var cfg suiteConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{Results: []ScenarioSummary{}}
	for _, path := range paths {
		if cfg.filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			matched, err := filepath.Match(cfg.filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		result.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(ScenarioFailure{
				Path:   path,
				Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}

		runResult, err := Run(ctx, scenario)
		if err != nil {
			result.fail(ScenarioFailure{
				Name:   scenario.Name,
				Path:   path,
				Errors: []string{fmt.Sprintf("scenario execution failed: %v", err)},
			})
			continue
		}

		errs := runResult.Errors
		if cfg.goldenDir != "" {
			if err := cfg.golden(scenario.Name, runResult); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			result.fail(ScenarioFailure{Name: scenario.Name, Path: path, Errors: errs})
			continue
		}

		result.Passed++
		result.Results = append(result.Results, ScenarioSummary{Name: scenario.Name, Path: path, Pass: true})
	}

	return result, nil
}

func (r *SuiteResult) fail(f ScenarioFailure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
	r.Results = append(r.Results, ScenarioSummary{Name: f.Name, Path: f.Path})
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

// golden compares (or, when updating, writes) the scenario's trace.
func (c suiteConfig) golden(name string, result *Result) error {
	path := filepath.Join(c.goldenDir, name+".golden")
	trace := result.TraceText(name)

	if c.update {
		if err := os.MkdirAll(c.goldenDir, 0755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, trace, 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no golden file at %s (run with --update to create it)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, trace) {
		return fmt.Errorf("trace does not match golden file %s (run with --update to regenerate)", path)
	}
	return nil
}
