package internal

import (
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLogseqConfig_Timeout(t *testing.T) {
	cfg := LogseqConfig{TimeoutSeconds: 10}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Timeout())
	}
}

func TestLogseqConfig_MissingURL(t *testing.T) {
	cfg := LogseqConfig{TimeoutSeconds: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing URL should fail validation")
	}
}

func TestLogseqConfig_ZeroTimeout(t *testing.T) {
	cfg := LogseqConfig{URL: "http://127.0.0.1:12315/api"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero timeout should fail validation")
	}
}

func TestRegistryConfig_MissingPath(t *testing.T) {
	cfg := RegistryConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing registry path should fail validation")
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Template.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch the empty template path")
	}
}
