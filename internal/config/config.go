// Package config provides configuration types and defaults for sakuga.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adelrodriguez/sakuga/internal/canvas"
	"github.com/adelrodriguez/sakuga/internal/encoder"
	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/render"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/tracing"
)

// Config holds all configuration options for sakuga.
type Config struct {
	Render  RenderConfig   `mapstructure:"render"`
	Style   StyleConfig    `mapstructure:"style"`
	Font    FontConfig     `mapstructure:"font"`
	Output  OutputConfig   `mapstructure:"output"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// RenderConfig holds frame size and timing options.
type RenderConfig struct {
	Width              int           `mapstructure:"width"`               // Minimum frame width in pixels
	Height             int           `mapstructure:"height"`              // Minimum frame height in pixels
	FPS                float64       `mapstructure:"fps"`                 // Frames per second
	BlockDuration      time.Duration `mapstructure:"block_duration"`      // How long each scene is held
	TransitionDuration time.Duration `mapstructure:"transition_duration"` // Length of each transition
	TransitionDrift    float64       `mapstructure:"transition_drift"`    // Vertical slide of added/removed tokens
	Concurrency        int           `mapstructure:"concurrency"`         // Parallel scene measurement, 0 = auto
}

// StyleConfig holds the look of the rendered code.
type StyleConfig struct {
	Theme          string  `mapstructure:"theme"`           // Chroma style name
	FontSize       float64 `mapstructure:"font_size"`       // Font size in pixels
	LineHeight     float64 `mapstructure:"line_height"`     // Line advance in pixels
	Padding        float64 `mapstructure:"padding"`         // Space around the code
	TabReplacement string  `mapstructure:"tab_replacement"` // Replaces each tab
	Foreground     string  `mapstructure:"foreground"`      // Fallback text color
	Background     string  `mapstructure:"background"`      // Fallback background color
}

// FontConfig names optional font files. Empty entries use the embedded Go Mono.
type FontConfig struct {
	Regular    string `mapstructure:"regular"`
	Bold       string `mapstructure:"bold"`
	Italic     string `mapstructure:"italic"`
	BoldItalic string `mapstructure:"bold_italic"`
}

// OutputConfig holds encoder options.
type OutputConfig struct {
	Format string `mapstructure:"format"` // mp4 (default), webm or png
	Ffmpeg string `mapstructure:"ffmpeg"` // ffmpeg binary, looked up on PATH
	Filter string `mapstructure:"filter"` // ffmpeg -vf chain, "null" disables it
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/sakuga/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sakuga", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Render: RenderConfig{
			Width:              1280,
			Height:             720,
			FPS:                30,
			BlockDuration:      2 * time.Second,
			TransitionDuration: 800 * time.Millisecond,
			TransitionDrift:    8,
			Concurrency:        render.DefaultConcurrency(),
		},
		Style: StyleConfig{
			Theme:          "github-dark",
			FontSize:       24,
			LineHeight:     34,
			Padding:        64,
			TabReplacement: "  ",
			Foreground:     "#e6e6e6",
			Background:     "#0b0b0b",
		},
		Output: OutputConfig{
			Format: string(encoder.FormatMP4),
			Ffmpeg: "ffmpeg",
			Filter: encoder.DefaultFilter,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks the whole configuration, returning the first error found.
func Validate(cfg Config) error {
	if err := ValidateRender(cfg.Render); err != nil {
		return err
	}
	if err := ValidateStyle(cfg.Style); err != nil {
		return err
	}
	if err := ValidateOutput(cfg.Output); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateRender checks frame size and timing options.
func ValidateRender(r RenderConfig) error {
	if r.Width <= 0 {
		return fmt.Errorf("render.width must be positive, got %d", r.Width)
	}
	if r.Height <= 0 {
		return fmt.Errorf("render.height must be positive, got %d", r.Height)
	}
	if r.FPS <= 0 {
		return fmt.Errorf("render.fps must be positive, got %g", r.FPS)
	}
	if r.BlockDuration <= 0 {
		return fmt.Errorf("render.block_duration must be positive, got %s", r.BlockDuration)
	}
	if r.TransitionDuration <= 0 {
		return fmt.Errorf("render.transition_duration must be positive, got %s", r.TransitionDuration)
	}
	if r.TransitionDrift < 0 {
		return fmt.Errorf("render.transition_drift must not be negative, got %g", r.TransitionDrift)
	}
	if r.Concurrency < 0 {
		return fmt.Errorf("render.concurrency must not be negative, got %d", r.Concurrency)
	}
	return nil
}

// ValidateStyle checks text and color options. Theme names are checked
// against the highlighter when it is created.
func ValidateStyle(s StyleConfig) error {
	if s.FontSize <= 0 {
		return fmt.Errorf("style.font_size must be positive, got %g", s.FontSize)
	}
	if s.LineHeight <= 0 {
		return fmt.Errorf("style.line_height must be positive, got %g", s.LineHeight)
	}
	if s.Padding < 0 {
		return fmt.Errorf("style.padding must not be negative, got %g", s.Padding)
	}
	if s.Foreground != "" && !paint.ValidHex(s.Foreground) {
		return fmt.Errorf("style.foreground must be a hex color like \"#e6e6e6\", got %q", s.Foreground)
	}
	if s.Background != "" && !paint.ValidHex(s.Background) {
		return fmt.Errorf("style.background must be a hex color like \"#0b0b0b\", got %q", s.Background)
	}
	return nil
}

// ValidateOutput checks encoder options.
func ValidateOutput(o OutputConfig) error {
	if _, err := encoder.ParseFormat(o.Format); err != nil {
		return fmt.Errorf("output.format must be \"mp4\", \"webm\", or \"png\", got %q", o.Format)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" && !slices.Contains(tracing.Exporters, t.Exporter) {
		return fmt.Errorf("tracing.exporter must be one of %s, got %q", strings.Join(tracing.Exporters, ", "), t.Exporter)
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is %q", tracing.ExporterFile)
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is %q", tracing.ExporterOTLP)
		}
	}

	return nil
}

// RenderOptions converts the configuration into pipeline options.
func (c Config) RenderOptions() render.Options {
	return render.Options{
		MinWidth:           c.Render.Width,
		MinHeight:          c.Render.Height,
		FPS:                c.Render.FPS,
		BlockDuration:      c.Render.BlockDuration,
		TransitionDuration: c.Render.TransitionDuration,
		Drift:              c.Render.TransitionDrift,
		FontSize:           c.Style.FontSize,
		Concurrency:        c.Render.Concurrency,
		Scene: scene.Options{
			Padding:        c.Style.Padding,
			LineHeight:     c.Style.LineHeight,
			TabReplacement: c.Style.TabReplacement,
			Foreground:     paint.ParseHex(c.Style.Foreground),
			Background:     paint.ParseHex(c.Style.Background),
		},
	}
}

// FontFiles returns the configured font files.
func (c Config) FontFiles() canvas.FontFiles {
	return canvas.FontFiles{
		Regular:    c.Font.Regular,
		Bold:       c.Font.Bold,
		Italic:     c.Font.Italic,
		BoldItalic: c.Font.BoldItalic,
	}
}

// Format returns the parsed output format.
func (c Config) Format() (encoder.Format, error) {
	return encoder.ParseFormat(c.Output.Format)
}

// FfmpegOptions returns encoder options for writing stream to output.
func (c Config) FfmpegOptions(output string, stream encoder.Stream) encoder.FfmpegOptions {
	format, _ := c.Format()
	return encoder.FfmpegOptions{
		Binary: c.Output.Ffmpeg,
		Format: format,
		Output: output,
		Stream: stream,
		Filter: c.Output.Filter,
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Sakuga Configuration

# Frame size and timing
render:
  width: 1280                 # Minimum frame width; grows to fit the widest scene
  height: 720                 # Minimum frame height; grows to fit the tallest scene
  fps: 30
  block_duration: 2s          # How long each code block is held on screen
  transition_duration: 800ms  # Length of the morph between blocks
  transition_drift: 8         # Pixels added/removed tokens slide vertically
  # concurrency: 4            # Parallel scene measurement (default: min(4, CPUs))

# Look of the rendered code
style:
  theme: github-dark          # Any chroma style (run 'sakuga themes' to list them)
  font_size: 24
  line_height: 34
  padding: 64
  tab_replacement: "  "
  foreground: "#e6e6e6"       # Used when the theme has no text color
  background: "#0b0b0b"       # Used when the theme has no background

# Font files (default: embedded Go Mono)
# Only regular is required; missing variants reuse it.
# font:
#   regular: ~/fonts/JetBrainsMono-Regular.ttf
#   bold: ~/fonts/JetBrainsMono-Bold.ttf
#   italic: ~/fonts/JetBrainsMono-Italic.ttf
#   bold_italic: ~/fonts/JetBrainsMono-BoldItalic.ttf

# Encoder
output:
  format: mp4                 # mp4, webm, or png (a directory of frames)
  ffmpeg: ffmpeg              # ffmpeg binary
  # filter: "null"            # ffmpeg -vf chain; "null" disables the default sharpening

# Distributed tracing of renders
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/sakuga/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
