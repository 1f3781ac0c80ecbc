package config

import (
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "OCR_LANGUAGES", "OCR_ENGINE_VARIABLES", "OCR_CONFIDENCE_THRESHOLD", "OCR_DATA_PROFILE"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if want := []string{"chi_sim", "eng"}; !reflect.DeepEqual(cfg.Languages, want) {
		t.Errorf("Languages = %v, want %v", cfg.Languages, want)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %f, want 0.5", cfg.ConfidenceThreshold)
	}
	if cfg.TessdataPrefix != "" {
		t.Errorf("TessdataPrefix = %q, want platform default", cfg.TessdataPrefix)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9100")
	t.Setenv("OCR_LANGUAGES", "eng")
	t.Setenv("OCR_CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("OCR_ENGINE_VARIABLES", "preserve_interword_spaces=1, user_defined_dpi=300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if want := []string{"eng"}; !reflect.DeepEqual(cfg.Languages, want) {
		t.Errorf("Languages = %v, want %v", cfg.Languages, want)
	}
	if cfg.ConfidenceThreshold != 0.7 {
		t.Errorf("ConfidenceThreshold = %f, want 0.7", cfg.ConfidenceThreshold)
	}
	want := map[string]string{"preserve_interword_spaces": "1", "user_defined_dpi": "300"}
	if !reflect.DeepEqual(cfg.EngineVariables, want) {
		t.Errorf("EngineVariables = %v, want %v", cfg.EngineVariables, want)
	}
}

func TestLoadUnparsableThresholdFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_CONFIDENCE_THRESHOLD", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %f, want default 0.5", cfg.ConfidenceThreshold)
	}
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_CONFIDENCE_THRESHOLD", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for threshold above 1")
	}
}

func TestResolveTessdataPrefix(t *testing.T) {
	if got := resolveTessdataPrefix(""); got != "" {
		t.Errorf("empty profile resolved to %q", got)
	}

	// Unresolvable profiles degrade to the platform default, never error
	if got := resolveTessdataPrefix("/nonexistent/profile/path"); got != "" {
		t.Errorf("missing profile resolved to %q, want empty", got)
	}

	dir := t.TempDir()
	if got := resolveTessdataPrefix(dir); got != dir {
		t.Errorf("existing directory resolved to %q, want %q", got, dir)
	}
}
