package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyPipelineConfig()

	if cfg.GetCorrectionFactor() != 1.0 {
		t.Errorf("GetCorrectionFactor() = %f, want 1.0", cfg.GetCorrectionFactor())
	}
	if cfg.GetMinThreshold() != nil {
		t.Errorf("GetMinThreshold() = %v, want nil", cfg.GetMinThreshold())
	}
	if cfg.GetMaxThreshold() != nil {
		t.Errorf("GetMaxThreshold() = %v, want nil", cfg.GetMaxThreshold())
	}
	if cfg.GetFillHoles() != true {
		t.Errorf("GetFillHoles() = %v, want true", cfg.GetFillHoles())
	}
	if cfg.GetConnectivity() != 8 {
		t.Errorf("GetConnectivity() = %d, want 8", cfg.GetConnectivity())
	}
	if cfg.GetExpansionRadius() != 0 {
		t.Errorf("GetExpansionRadius() = %d, want 0", cfg.GetExpansionRadius())
	}
	if cfg.GetObjectName() != "objects" {
		t.Errorf("GetObjectName() = %q, want \"objects\"", cfg.GetObjectName())
	}
	if cfg.GetCombineWeightA() != 1 || cfg.GetCombineWeightB() != 1 {
		t.Errorf("combine weights = %d, %d, want 1, 1",
			cfg.GetCombineWeightA(), cfg.GetCombineWeightB())
	}
	if cfg.GetPlot() != false {
		t.Errorf("GetPlot() = %v, want false", cfg.GetPlot())
	}
}

func TestLoadPipelineConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.json")

	testJSON := `{
  "correction_factor": 0.8,
  "min_threshold": 120,
  "max_threshold": 4000,
  "fill_holes": false,
  "connectivity": 4,
  "expansion_radius": 3,
  "object_name": "nuclei",
  "plot": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPipelineConfig(configPath)
	if err != nil {
		t.Fatalf("LoadPipelineConfig failed: %v", err)
	}

	if cfg.GetCorrectionFactor() != 0.8 {
		t.Errorf("GetCorrectionFactor() = %f, want 0.8", cfg.GetCorrectionFactor())
	}
	if minT := cfg.GetMinThreshold(); minT == nil || *minT != 120 {
		t.Errorf("GetMinThreshold() = %v, want 120", minT)
	}
	if maxT := cfg.GetMaxThreshold(); maxT == nil || *maxT != 4000 {
		t.Errorf("GetMaxThreshold() = %v, want 4000", maxT)
	}
	if cfg.GetFillHoles() != false {
		t.Errorf("GetFillHoles() = %v, want false", cfg.GetFillHoles())
	}
	if cfg.GetConnectivity() != 4 {
		t.Errorf("GetConnectivity() = %d, want 4", cfg.GetConnectivity())
	}
	if cfg.GetExpansionRadius() != 3 {
		t.Errorf("GetExpansionRadius() = %d, want 3", cfg.GetExpansionRadius())
	}
	if cfg.GetObjectName() != "nuclei" {
		t.Errorf("GetObjectName() = %q, want \"nuclei\"", cfg.GetObjectName())
	}
	if cfg.GetPlot() != true {
		t.Errorf("GetPlot() = %v, want true", cfg.GetPlot())
	}

	// Omitted fields keep their defaults
	if cfg.GetCombineWeightA() != 1 {
		t.Errorf("GetCombineWeightA() = %d, want default 1", cfg.GetCombineWeightA())
	}
}

func TestLoadPipelineConfigPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	if err := os.WriteFile(configPath, []byte(`{"expansion_radius": 5}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPipelineConfig(configPath)
	if err != nil {
		t.Fatalf("LoadPipelineConfig failed: %v", err)
	}

	if cfg.GetExpansionRadius() != 5 {
		t.Errorf("GetExpansionRadius() = %d, want 5", cfg.GetExpansionRadius())
	}
	if cfg.GetCorrectionFactor() != 1.0 {
		t.Errorf("GetCorrectionFactor() = %f, want default 1.0", cfg.GetCorrectionFactor())
	}
}

func TestLoadPipelineConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadPipelineConfig("pipeline.yaml")
	if err == nil || !strings.Contains(err.Error(), ".json extension") {
		t.Errorf("Expected extension error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  *PipelineConfig
	}{
		{"zero correction factor", &PipelineConfig{CorrectionFactor: ptrFloat64(0)}},
		{"negative correction factor", &PipelineConfig{CorrectionFactor: ptrFloat64(-0.5)}},
		{"min above uint16 range", &PipelineConfig{MinThreshold: ptrInt(70000)}},
		{"min above max", &PipelineConfig{MinThreshold: ptrInt(500), MaxThreshold: ptrInt(100)}},
		{"bad connectivity", &PipelineConfig{Connectivity: ptrInt(6)}},
		{"negative radius", &PipelineConfig{ExpansionRadius: ptrInt(-1)}},
		{"zero combine weight", &PipelineConfig{CombineWeightA: ptrInt(0)}},
		{"empty object name", &PipelineConfig{ObjectName: ptrString("")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := &PipelineConfig{
		CorrectionFactor: ptrFloat64(1.2),
		MinThreshold:     ptrInt(100),
		MaxThreshold:     ptrInt(60000),
		FillHoles:        ptrBool(true),
		Connectivity:     ptrInt(8),
		ExpansionRadius:  ptrInt(2),
		ObjectName:       ptrString("cells"),
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
