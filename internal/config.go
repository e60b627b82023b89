package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage modes.
const (
	// StorageModePath serves notes from real directories (path or
	// document-tree roots).
	StorageModePath = "path"
	// StorageModeFlat forces the flat key-value backend, for hosts with
	// no real file access.
	StorageModeFlat = "flat"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig holds note storage configuration.
//
// Mode selects the storage family:
//   - "path" (default): notes live under DefaultRoot, or a persisted
//     root override (which may be a document-tree locator).
//   - "flat": notes live in the flat key-value store; no directories.
type StorageConfig struct {
	Mode        string `yaml:"mode"`
	DefaultRoot string `yaml:"default_root"`
	// StateDB is the SQLite file backing preferences and the flat
	// store.
	StateDB string `yaml:"state_db"`
	// ProviderDB, when set, enables the document-tree backend backed by
	// this SQLite file.
	ProviderDB string `yaml:"provider_db"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = StorageModePath
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(StorageModePath, StorageModeFlat)),
		validation.Field(&c.StateDB, validation.Required),
	); err != nil {
		return err
	}
	if c.Mode == StorageModePath && c.DefaultRoot == "" {
		return fmt.Errorf("storage: mode is %q but default_root is empty", StorageModePath)
	}
	return nil
}

// Flat reports whether the flat key-value backend is forced.
func (c *StorageConfig) Flat() bool {
	return c.Mode == StorageModeFlat
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Mode:        StorageModePath,
			DefaultRoot: "./notes",
			StateDB:     "./lagu.db",
			ProviderDB:  "./lagu-docs.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
