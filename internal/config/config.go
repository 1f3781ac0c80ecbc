/**
 * Configuration for the OCR recognition service
 *
 * Loads configuration from environment variables once at startup.
 * The resulting Config is immutable for the process lifetime and is
 * passed explicitly into the pipeline; nothing reads the environment
 * during request processing.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds service configuration
type Config struct {
	// HTTP server port
	Port int

	// Recognition languages, e.g. ["chi_sim", "eng"]
	Languages []string

	// Base engine configuration variables, e.g. "preserve_interword_spaces=1"
	EngineVariables map[string]string

	// Mean-confidence threshold below which the per-character retry runs
	ConfidenceThreshold float64

	// Preferred language-data profile name (resolved to TessdataPrefix)
	DataProfile string

	// Resolved language-data directory; empty means the platform default
	TessdataPrefix string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnvAsIntOrDefault("PORT", 8000),
		Languages:           splitLanguages(getEnvOrDefault("OCR_LANGUAGES", "chi_sim+eng")),
		EngineVariables:     parseEngineVariables(getEnvOrDefault("OCR_ENGINE_VARIABLES", "")),
		ConfidenceThreshold: getEnvAsFloatOrDefault("OCR_CONFIDENCE_THRESHOLD", 0.5),
		DataProfile:         getEnvOrDefault("OCR_DATA_PROFILE", ""),
	}

	cfg.TessdataPrefix = resolveTessdataPrefix(cfg.DataProfile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("OCR_CONFIDENCE_THRESHOLD must be between 0 and 1, got %f", c.ConfidenceThreshold)
	}

	return nil
}

// splitLanguages splits a tesseract-style language spec ("chi_sim+eng")
func splitLanguages(spec string) []string {
	parts := strings.Split(spec, "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}

// parseEngineVariables parses "key=value,key=value" into a variable map
func parseEngineVariables(spec string) map[string]string {
	vars := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = value
	}
	return vars
}

// resolveTessdataPrefix resolves a language-data profile to a directory on
// disk. A profile that does not resolve degrades to the platform default
// (empty prefix); it is never a fatal error.
func resolveTessdataPrefix(profile string) string {
	if profile == "" {
		return ""
	}

	candidates := []string{
		profile,
		filepath.Join("/usr/share/tesseract-ocr", profile, "tessdata"),
		filepath.Join("/usr/local/share", profile, "tessdata"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
