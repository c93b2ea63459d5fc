package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PipelineConfig represents the root configuration for a segmentation
// run. All fields are pointers so a partial JSON file only overrides
// what it names; the Get* methods supply defaults for the rest.
type PipelineConfig struct {
	// Threshold params
	CorrectionFactor *float64 `json:"correction_factor,omitempty"`
	MinThreshold     *int     `json:"min_threshold,omitempty"`
	MaxThreshold     *int     `json:"max_threshold,omitempty"`
	FillHoles        *bool    `json:"fill_holes,omitempty"`

	// Label params
	Connectivity *int `json:"connectivity,omitempty"` // 4 or 8

	// Expansion params
	ExpansionRadius *int `json:"expansion_radius,omitempty"`

	// Catalog params
	ObjectName *string `json:"object_name,omitempty"`

	// Channel combination params
	CombineWeightA *int `json:"combine_weight_a,omitempty"`
	CombineWeightB *int `json:"combine_weight_b,omitempty"`

	// Figure output
	Plot *bool `json:"plot,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPipelineConfig returns a PipelineConfig with all fields set to
// nil. Use LoadPipelineConfig to load actual values from a file.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is
// under the max file size. Fields omitted from the JSON retain their
// defaults, so partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
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

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	if c.CorrectionFactor != nil && *c.CorrectionFactor <= 0 {
		return fmt.Errorf("correction_factor must be positive, got %f", *c.CorrectionFactor)
	}

	if c.MinThreshold != nil {
		if *c.MinThreshold < 0 || *c.MinThreshold > 65535 {
			return fmt.Errorf("min_threshold must be in [0, 65535], got %d", *c.MinThreshold)
		}
	}
	if c.MaxThreshold != nil {
		if *c.MaxThreshold < 0 || *c.MaxThreshold > 65535 {
			return fmt.Errorf("max_threshold must be in [0, 65535], got %d", *c.MaxThreshold)
		}
	}
	if c.MinThreshold != nil && c.MaxThreshold != nil && *c.MinThreshold > *c.MaxThreshold {
		return fmt.Errorf("min_threshold %d exceeds max_threshold %d", *c.MinThreshold, *c.MaxThreshold)
	}

	if c.Connectivity != nil {
		if *c.Connectivity != 4 && *c.Connectivity != 8 {
			return fmt.Errorf("connectivity must be 4 or 8, got %d", *c.Connectivity)
		}
	}

	if c.ExpansionRadius != nil && *c.ExpansionRadius < 0 {
		return fmt.Errorf("expansion_radius must be non-negative, got %d", *c.ExpansionRadius)
	}

	if c.CombineWeightA != nil && *c.CombineWeightA < 1 {
		return fmt.Errorf("combine_weight_a must be at least 1, got %d", *c.CombineWeightA)
	}
	if c.CombineWeightB != nil && *c.CombineWeightB < 1 {
		return fmt.Errorf("combine_weight_b must be at least 1, got %d", *c.CombineWeightB)
	}

	if c.ObjectName != nil && *c.ObjectName == "" {
		return fmt.Errorf("object_name must not be empty when set")
	}

	return nil
}

// GetCorrectionFactor returns the correction_factor value or the default.
func (c *PipelineConfig) GetCorrectionFactor() float64 {
	if c.CorrectionFactor == nil {
		return 1.0 // default: use the automatic level unchanged
	}
	return *c.CorrectionFactor
}

// GetMinThreshold returns the min_threshold value, or nil when no
// lower clamp is configured.
func (c *PipelineConfig) GetMinThreshold() *uint16 {
	if c.MinThreshold == nil {
		return nil
	}
	v := uint16(*c.MinThreshold)
	return &v
}

// GetMaxThreshold returns the max_threshold value, or nil when no
// upper clamp is configured.
func (c *PipelineConfig) GetMaxThreshold() *uint16 {
	if c.MaxThreshold == nil {
		return nil
	}
	v := uint16(*c.MaxThreshold)
	return &v
}

// GetFillHoles returns the fill_holes value or the default.
func (c *PipelineConfig) GetFillHoles() bool {
	if c.FillHoles == nil {
		return true // default: filled masks
	}
	return *c.FillHoles
}

// GetConnectivity returns the connectivity value or the default.
func (c *PipelineConfig) GetConnectivity() int {
	if c.Connectivity == nil {
		return 8
	}
	return *c.Connectivity
}

// GetExpansionRadius returns the expansion_radius value or the default.
func (c *PipelineConfig) GetExpansionRadius() int {
	if c.ExpansionRadius == nil {
		return 0 // default: no expansion
	}
	return *c.ExpansionRadius
}

// GetObjectName returns the object_name value or the default.
func (c *PipelineConfig) GetObjectName() string {
	if c.ObjectName == nil {
		return "objects"
	}
	return *c.ObjectName
}

// GetCombineWeightA returns the combine_weight_a value or the default.
func (c *PipelineConfig) GetCombineWeightA() int {
	if c.CombineWeightA == nil {
		return 1
	}
	return *c.CombineWeightA
}

// GetCombineWeightB returns the combine_weight_b value or the default.
func (c *PipelineConfig) GetCombineWeightB() int {
	if c.CombineWeightB == nil {
		return 1
	}
	return *c.CombineWeightB
}

// GetPlot returns the plot value or the default.
func (c *PipelineConfig) GetPlot() bool {
	if c.Plot == nil {
		return false // default: no figures
	}
	return *c.Plot
}
