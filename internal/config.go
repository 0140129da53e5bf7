package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Library  LibraryConfig     `yaml:"library"`
	Registry RegistryConfig    `yaml:"registry"`
	Template TemplateConfig    `yaml:"template"`
	Logseq   LogseqConfig      `yaml:"logseq"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	if err := c.Template.Validate(); err != nil {
		return err
	}
	return c.Logseq.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// LibraryConfig points at the Apple Books databases. Empty paths mean
// auto-discovery under the Apple Books container directory.
type LibraryConfig struct {
	BooksPath       string `yaml:"books_path"`
	AnnotationsPath string `yaml:"annotations_path"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	// Both paths optional: discovery handles the common case.
	return nil
}

// RegistryConfig holds the path to the user-edited book registry.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the registry configuration.
func (c *RegistryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TemplateConfig holds the path to the user-edited page template.
type TemplateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the template configuration.
func (c *TemplateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LogseqConfig holds the Logseq HTTP API endpoint settings.
//
// Token is required by Logseq when its API server has an authorization
// token configured; it is sent as a Bearer token on every call.
type LogseqConfig struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call request timeout.
func (c *LogseqConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the Logseq configuration.
func (c *LogseqConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1), validation.Max(300)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Registry: RegistryConfig{
			Path: "./registry.yaml",
		},
		Template: TemplateConfig{
			Path: "./template.md",
		},
		Logseq: LogseqConfig{
			URL:            "http://127.0.0.1:12315/api",
			TimeoutSeconds: 10,
		},
	}
}
