// Package config loads hornlog session configuration from YAML: solver
// settings, the clause store location, and an optional inline theory.
//
// A full configuration file looks like:
//
//	solver:
//	  workers: 4
//	  trace: true
//	store:
//	  path: family.db
//	theory:
//	  clauses:
//	    - father(abe, homer).
//	    - father(homer, bart).
//	    - parent(X, Y) :- father(X, Y).
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
)

// ErrInvalid is the base error for configuration that loads but cannot
// be used.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the root configuration document.
type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Store  StoreConfig  `yaml:"store"`
	Theory TheoryConfig `yaml:"theory"`
}

// SolverConfig selects evaluation behavior.
type SolverConfig struct {
	// Workers is the number of concurrent branches per goal; 0 or 1
	// means sequential, order-preserving evaluation.
	Workers int `yaml:"workers"`

	// Trace enables debug-level proof tracing.
	Trace bool `yaml:"trace"`
}

// StoreConfig locates the persistent clause store. An empty path means
// no persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// TheoryConfig carries clauses inline, one clause per entry in parse
// notation.
type TheoryConfig struct {
	Clauses []string `yaml:"clauses"`
}

// Default returns the configuration used when no file is given:
// sequential evaluation, no tracing, no store, empty theory.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{Workers: 1},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that no later stage can repair.
func (c *Config) Validate() error {
	if c.Solver.Workers < 0 {
		return fmt.Errorf("%w: solver.workers must not be negative, got %d",
			ErrInvalid, c.Solver.Workers)
	}
	for i, src := range c.Theory.Clauses {
		if _, err := parse.Clause(src); err != nil {
			return fmt.Errorf("%w: theory.clauses[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// BuildKnowledgeBase parses the inline theory into a fresh knowledge
// base, in listed order.
func (c *Config) BuildKnowledgeBase() (*hornlog.KnowledgeBase, error) {
	kb := hornlog.NewKnowledgeBase()
	for i, src := range c.Theory.Clauses {
		clause, err := parse.Clause(src)
		if err != nil {
			return nil, fmt.Errorf("config: theory.clauses[%d]: %w", i, err)
		}
		if err := kb.AddClause(clause); err != nil {
			return nil, fmt.Errorf("config: theory.clauses[%d]: %w", i, err)
		}
	}
	return kb, nil
}
