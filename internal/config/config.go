// Package config holds the parameters of a dimension sweep.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/caiodallaqua/orthosphere/internal/bound"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_NUM_VECTORS  uint32  = 100
	DEFAULT_TOLERANCE    float64 = 2.0
	DEFAULT_MAX_ATTEMPTS uint32  = 3

	// Phase 2 progress is reported every this many accepted vectors.
	DEFAULT_PROGRESS_EVERY int = 100
)

// Config holds one sweep's parameters. The zero value is not usable; start
// from Default.
type Config struct {
	// Dimensions to sweep, in report order.
	Dimensions []uint32 `yaml:"dimensions"`

	Angles AnglesConfig `yaml:"angles"`
	Search SearchConfig `yaml:"search"`

	// Bound policy name, "doubling" or "rankin".
	Policy string `yaml:"policy,omitempty"`

	// Seed for reproducible runs. Nil draws a random seed per work unit.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Number of dimensions processed concurrently. 1 runs sequentially.
	Workers int `yaml:"workers,omitempty"`
}

// AnglesConfig drives Phase 1, the pairwise angle distribution.
type AnglesConfig struct {
	NumVectors     uint32 `yaml:"num_vectors"`
	FoldReflection bool   `yaml:"fold_reflection"`
}

// SearchConfig drives Phase 2, the near-orthogonal set search.
type SearchConfig struct {
	Tolerance   float64 `yaml:"tolerance"`
	MaxAttempts uint32  `yaml:"max_attempts"`

	// Total sample cap per dimension, zero for none.
	MaxSamples    uint64 `yaml:"max_samples,omitempty"`
	ProgressEvery int    `yaml:"progress_every,omitempty"`
}

// DefaultDimensions returns 2, 3 and the powers of two from 4 to 65536.
func DefaultDimensions() []uint32 {
	dims := []uint32{2, 3}
	for power := 2; power <= 16; power++ {
		dims = append(dims, uint32(1)<<power)
	}

	return dims
}

func Default() *Config {
	return &Config{
		Dimensions: DefaultDimensions(),
		Angles: AnglesConfig{
			NumVectors:     DEFAULT_NUM_VECTORS,
			FoldReflection: false,
		},
		Search: SearchConfig{
			Tolerance:     DEFAULT_TOLERANCE,
			MaxAttempts:   DEFAULT_MAX_ATTEMPTS,
			ProgressEvery: DEFAULT_PROGRESS_EVERY,
		},
		Policy:  bound.DOUBLING.String(),
		Workers: 1,
	}
}

// LoadFromFile reads a YAML file on top of Default, so omitted fields keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigNotFoundError{RequestedPath: path}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Dimensions) == 0 {
		return &invalidFieldError{"dimensions", "at least one dimension is required"}
	}

	if slices.Contains(c.Dimensions, 0) {
		return &invalidFieldError{"dimensions", "dimensions must be positive"}
	}

	if c.Angles.NumVectors < 2 {
		return &invalidFieldError{"angles.num_vectors", "at least 2 vectors are needed to form a pair"}
	}

	if !(c.Search.Tolerance > 0 && c.Search.Tolerance < 90) {
		return &invalidFieldError{"search.tolerance", "must be in (0, 90) degrees"}
	}

	if c.Search.MaxAttempts < 1 {
		return &invalidFieldError{"search.max_attempts", "must be at least 1"}
	}

	if c.Search.ProgressEvery < 0 {
		return &invalidFieldError{"search.progress_every", "cannot be negative"}
	}

	if _, err := bound.ParsePolicy(c.Policy); err != nil {
		return &invalidFieldError{"policy", err.Error()}
	}

	if c.Workers < 1 {
		return &invalidFieldError{"workers", "must be at least 1"}
	}

	return nil
}

// BoundPolicy returns the parsed Policy. Call Validate first.
func (c *Config) BoundPolicy() bound.Policy {
	policy, _ := bound.ParsePolicy(c.Policy)
	return policy
}

// ParseDimensions parses a comma separated list such as "2,3,4,8".
func ParseDimensions(list string) ([]uint32, error) {
	var dims []uint32

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		dim, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %w", field, err)
		}

		dims = append(dims, uint32(dim))
	}

	if len(dims) == 0 {
		return nil, &invalidFieldError{"dimensions", "at least one dimension is required"}
	}

	return dims, nil
}
