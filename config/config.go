// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/fonts"
	"github.com/buffalographics/fleet-spec-sheet/pdf/text"
	"github.com/buffalographics/fleet-spec-sheet/sheet"
	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrUnexpectedField    = errors.New("unexpected field in configuration")
	ErrInvalidConfigType  = errors.New("configuration must be a dictionary")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfigurationError
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	list, err := EnsureStrings(raw, fmt.Sprintf("line %d", value.Line))
	if err != nil {
		return err
	}
	*l = list
	return nil
}

// SheetConfig holds the text printed on generated pages and the run
// defaults.
type SheetConfig struct {
	// HeaderText is the title printed at the top of every page.
	HeaderText string `yaml:"header-text" json:"header_text,omitempty"`

	// HeaderAlign places the header title: left, center or right.
	HeaderAlign string `yaml:"header-align" json:"header_align,omitempty"`

	// PageName is the name of the first generated page.
	PageName string `yaml:"page-name" json:"page_name,omitempty"`

	DefaultCustomer string `yaml:"default-customer" json:"default_customer,omitempty"`
	DefaultVehicle  string `yaml:"default-vehicle" json:"default_vehicle,omitempty"`

	// Workers bounds concurrent image loading and layout. Zero means one
	// per CPU.
	Workers int `yaml:"workers" json:"workers,omitempty"`
}

// SetDefaults sets default values for the sheet configuration.
func (c *SheetConfig) SetDefaults() {
	if c.HeaderText == "" {
		c.HeaderText = sheet.DefaultHeaderText
	}
	if c.HeaderAlign == "" {
		c.HeaderAlign = text.AlignLeft.String()
	}
	if c.PageName == "" {
		c.PageName = sheet.DefaultPageName
	}
	if c.DefaultVehicle == "" {
		c.DefaultVehicle = details.DefaultVehicle
	}
}

// Validate validates the sheet configuration.
func (c *SheetConfig) Validate() error {
	if c.Workers < 0 {
		return NewConfigError("sheet.workers", "must not be negative")
	}
	if c.HeaderAlign != "" {
		if _, err := text.ParseTextAlign(c.HeaderAlign); err != nil {
			return NewConfigError("sheet.header-align", err.Error())
		}
	}
	return nil
}

// Engine returns a layout engine printing the configured header.
func (c *SheetConfig) Engine() *sheet.Engine {
	e := sheet.NewEngine()
	if c.HeaderText != "" {
		e.HeaderText = c.HeaderText
	}
	// Validate has rejected unknown names; the zero value is left.
	e.HeaderAlign, _ = text.ParseTextAlign(c.HeaderAlign)
	return e
}

// FontsConfig controls where the sheet font is looked up.
type FontsConfig struct {
	// Dirs are searched recursively. Empty means the system font
	// directories.
	Dirs StringList `yaml:"dirs" json:"dirs,omitempty"`

	// Preferred names are matched exactly, in order.
	Preferred StringList `yaml:"preferred" json:"preferred,omitempty"`

	// Contains is the substring fallback.
	Contains string `yaml:"contains" json:"contains,omitempty"`
}

// SetDefaults sets default values for the fonts configuration.
func (c *FontsConfig) SetDefaults() {
	if len(c.Dirs) == 0 {
		c.Dirs = fonts.DefaultFontDirs()
	}
	if len(c.Preferred) == 0 {
		c.Preferred = append(StringList(nil), fonts.DefaultPreferred...)
	}
	if c.Contains == "" {
		c.Contains = fonts.DefaultContains
	}
}

// Resolver returns a font resolver over the configured directories.
func (c *FontsConfig) Resolver(logger *slog.Logger) *fonts.Resolver {
	r := fonts.NewResolver(logger)
	if len(c.Dirs) > 0 {
		r.Dirs = append([]string(nil), c.Dirs...)
	}
	if len(c.Preferred) > 0 {
		r.Preferred = append([]string(nil), c.Preferred...)
	}
	if c.Contains != "" {
		r.Contains = c.Contains
	}
	return r
}

// PreviewConfig controls the PNG preview.
type PreviewConfig struct {
	// Scale is preview pixels per point.
	Scale float64 `yaml:"scale" json:"scale,omitempty"`
}

// MaxPreviewScale bounds the preview resolution.
const MaxPreviewScale = 4.0

// SetDefaults sets default values for the preview configuration.
func (c *PreviewConfig) SetDefaults() {
	if c.Scale == 0 {
		c.Scale = 0.5
	}
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	if c.Scale <= 0 || c.Scale > MaxPreviewScale {
		return NewConfigError("preview.scale", fmt.Sprintf("must be in (0, %g], got %g", MaxPreviewScale, c.Scale))
	}
	return nil
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		return NewConfigError("logging.format", fmt.Sprintf("unknown format %q", c.Format))
	}
	return nil
}

func (c *LoggingConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Level), Err: err}
	}
	return lvl, nil
}

// NewLogger builds the configured logger. stderr and stdout name the
// standard streams; anything else is a file opened for appending. The
// returned closer releases that file and is a no-op otherwise.
func (c *LoggingConfig) NewLogger(stdout, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	lvl, _ := c.level()

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch c.Output {
	case "", "stderr":
		out = stderr
	case "stdout":
		out = stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(c.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// AppConfig contains the complete application configuration.
type AppConfig struct {
	Sheet   *SheetConfig   `yaml:"sheet" json:"sheet,omitempty"`
	Fonts   *FontsConfig   `yaml:"fonts" json:"fonts,omitempty"`
	Logging *LoggingConfig `yaml:"logging" json:"logging,omitempty"`
	Preview *PreviewConfig `yaml:"preview" json:"preview,omitempty"`
}

// Known keys per section, used to reject typos.
var knownKeys = map[string][]string{
	"":        {"sheet", "fonts", "logging", "preview"},
	"sheet":   {"header-text", "header-align", "page-name", "default-customer", "default-vehicle", "workers"},
	"fonts":   {"dirs", "preferred", "contains"},
	"logging": {"level", "format", "output"},
	"preview": {"scale"},
}

// DefaultAppConfig returns the configuration used when no file is given.
func DefaultAppConfig() *AppConfig {
	c := &AppConfig{}
	c.SetDefaults()
	return c
}

// SetDefaults fills every missing section and value.
func (c *AppConfig) SetDefaults() {
	if c.Sheet == nil {
		c.Sheet = &SheetConfig{}
	}
	if c.Fonts == nil {
		c.Fonts = &FontsConfig{}
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	if c.Preview == nil {
		c.Preview = &PreviewConfig{}
	}
	c.Sheet.SetDefaults()
	c.Fonts.SetDefaults()
	c.Logging.SetDefaults()
	c.Preview.SetDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.Sheet.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Preview.Validate()
}

// LoadAppConfig loads the complete application configuration from a file.
func LoadAppConfig(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig parses, defaults and validates configuration from YAML
// data. Keys may use dashes or underscores.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfigType, err)
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	normalized, err := normalizeSection("", raw)
	if err != nil {
		return nil, err
	}
	return LoadConfigFromMap(normalized)
}

func normalizeSection(name string, section map[string]any) (map[string]any, error) {
	supplied := make([]string, 0, len(section))
	out := make(map[string]any, len(section))
	for k, v := range section {
		supplied = append(supplied, k)
		out[normalizeKey(k)] = v
	}
	sort.Strings(supplied)

	configName := name
	if configName == "" {
		configName = "application"
	}
	if err := CheckConfigKeys(configName, knownKeys[name], supplied); err != nil {
		return nil, err
	}

	if name != "" {
		return out, nil
	}
	for key := range knownKeys {
		if key == "" {
			continue
		}
		v, ok := out[key]
		if !ok || v == nil {
			continue
		}
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, NewConfigError(key, fmt.Sprintf("must be a dictionary, got %T", v))
		}
		n, err := normalizeSection(key, sub)
		if err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, nil
}

// LoadConfigFromMap loads configuration from a map with normalized keys.
func LoadConfigFromMap(data map[string]any) (*AppConfig, error) {
	// Marshal to YAML then unmarshal to struct
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config map: %w", err)
	}

	var config AppConfig
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigKeys checks if all provided keys are valid for a given configuration type.
func CheckConfigKeys(configName string, expectedKeys, suppliedKeys []string) error {
	expectedSet := make(map[string]bool)
	for _, k := range expectedKeys {
		// Normalize to use dashes
		expectedSet[normalizeKey(k)] = true
	}

	var unexpected []string
	for _, k := range suppliedKeys {
		normalized := normalizeKey(k)
		if !expectedSet[normalized] {
			unexpected = append(unexpected, k)
		}
	}

	if len(unexpected) > 0 {
		keyWord := "key"
		if len(unexpected) > 1 {
			keyWord = "keys"
		}
		return fmt.Errorf("%w: unexpected %s in configuration for %s: %s",
			ErrUnexpectedField, keyWord, configName, strings.Join(unexpected, ", "))
	}

	return nil
}

// normalizeKey normalizes a configuration key (underscores to dashes).
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// EnsureStrings ensures the input is a slice of strings.
// It accepts either a single string or a slice of strings.
func EnsureStrings(value any, paramName string) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		result := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, NewConfigError(paramName,
					fmt.Sprintf("item %d is not a string (got %T)", i, item))
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, NewConfigError(paramName,
			fmt.Sprintf("must be specified as a list of strings or a string, got %T", value))
	}
}
