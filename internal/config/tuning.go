package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for clustering defaults.
// The schema matches the /api/cluster request parameters so the same JSON
// can be used for startup configuration and for request bodies.
type TuningConfig struct {
	// Engine params
	Eps    *float64 `json:"eps,omitempty"`
	MinPts *int     `json:"min_pts,omitempty"`

	// Sweep params. The spec strings are either comma-separated values
	// ("0.1,0.2,0.3") or a range "min:max:step".
	SweepEps    *string `json:"sweep_eps,omitempty"`
	SweepMinPts *string `json:"sweep_min_pts,omitempty"`
	MinClusters *int    `json:"min_clusters,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file keep their compiled
// defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/gen-points/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid. Sweep spec
// strings are not parsed here; consumers report spec errors when they
// expand the grid.
func (c *TuningConfig) Validate() error {
	if c.Eps != nil {
		if *c.Eps < 0 {
			return fmt.Errorf("eps must be >= 0, got %f", *c.Eps)
		}
	}

	if c.MinPts != nil {
		if *c.MinPts < 1 {
			return fmt.Errorf("min_pts must be >= 1, got %d", *c.MinPts)
		}
	}

	if c.MinClusters != nil {
		if *c.MinClusters < 0 {
			return fmt.Errorf("min_clusters must be >= 0, got %d", *c.MinClusters)
		}
	}

	return nil
}

// GetEps returns the eps value or the default.
func (c *TuningConfig) GetEps() float64 {
	if c.Eps == nil {
		return 0.3 // default
	}
	return *c.Eps
}

// GetMinPts returns the min_pts value or the default.
func (c *TuningConfig) GetMinPts() int {
	if c.MinPts == nil {
		return 3 // default
	}
	return *c.MinPts
}

// GetSweepEps returns the sweep_eps spec string or the default grid.
func (c *TuningConfig) GetSweepEps() string {
	if c.SweepEps == nil || *c.SweepEps == "" {
		return "0.1,0.2,0.3,0.5"
	}
	return *c.SweepEps
}

// GetSweepMinPts returns the sweep_min_pts spec string or the default grid.
func (c *TuningConfig) GetSweepMinPts() string {
	if c.SweepMinPts == nil || *c.SweepMinPts == "" {
		return "3,5,10"
	}
	return *c.SweepMinPts
}

// GetMinClusters returns the min_clusters value or the default.
func (c *TuningConfig) GetMinClusters() int {
	if c.MinClusters == nil {
		return 1
	}
	return *c.MinClusters
}
