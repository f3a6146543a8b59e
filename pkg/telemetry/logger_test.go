package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steelpath.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.WithScenario("baseline").WithRunID("run-1").Info("scenario started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"scenario":"baseline"`) {
		t.Errorf("Expected scenario field in log output, got %s", out)
	}
	if !strings.Contains(out, `"run_id":"run-1"`) {
		t.Errorf("Expected run_id field in log output, got %s", out)
	}
}

func TestNewLogger_LevelFiltersOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steelpath.log")
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info lines to be filtered, got %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("Expected warn line in output, got %s", out)
	}
}

func TestLogger_ContextRoundTrip(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	ctx := logger.WithContext(context.Background())
	if got := FromContext(ctx); got != logger {
		t.Error("Expected logger retrieved from context to be the stored instance")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("Expected a fallback logger for a bare context")
	}
}

func TestParseLogLevel_UnknownDefaultsToInfo(t *testing.T) {
	if got := parseLogLevel("chatty"); got.String() != "info" {
		t.Errorf("Expected unknown level to default to info, got %s", got)
	}
}

func TestConfig_Validate_Default(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate_MissingServiceName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing service name")
	}
}

func TestConfig_Validate_BadExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unsupported exporter")
	}
}

func TestConfig_Validate_SamplingRateBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.SamplingRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for out-of-range sampling rate")
	}
}

func TestConfig_Validate_MetricsAddressRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.ListenAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing metrics listen address")
	}
}
