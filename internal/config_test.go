package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestStorageConfig_DefaultsToPathMode(t *testing.T) {
	cfg := StorageConfig{DefaultRoot: "./notes", StateDB: "./state.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Mode != StorageModePath {
		t.Errorf("mode = %q, want %q", cfg.Mode, StorageModePath)
	}
	if cfg.Flat() {
		t.Error("path mode should not report flat")
	}
}

func TestStorageConfig_FlatModeSkipsRoot(t *testing.T) {
	cfg := StorageConfig{Mode: StorageModeFlat, StateDB: "./state.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("flat mode without a root should pass: %v", err)
	}
	if !cfg.Flat() {
		t.Error("flat mode should report flat")
	}
}

func TestStorageConfig_PathModeRequiresRoot(t *testing.T) {
	cfg := StorageConfig{Mode: StorageModePath, StateDB: "./state.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("path mode without default_root should fail")
	}
}

func TestStorageConfig_RequiresStateDB(t *testing.T) {
	cfg := StorageConfig{Mode: StorageModePath, DefaultRoot: "./notes"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing state_db should fail")
	}
}

func TestStorageConfig_InvalidMode(t *testing.T) {
	cfg := StorageConfig{Mode: "cloud", DefaultRoot: "./notes", StateDB: "./state.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown mode should fail")
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 8080}
	if err := cfg.Validate(); err != nil {
		t.Errorf("port 8080 should pass: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
}

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full validation must reach the auth section")
	}
}
