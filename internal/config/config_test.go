package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/adelrodriguez/sakuga/internal/encoder"
	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/render"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 1280, cfg.Render.Width)
	require.Equal(t, 720, cfg.Render.Height)
	require.Equal(t, 30.0, cfg.Render.FPS)
	require.Equal(t, 2*time.Second, cfg.Render.BlockDuration)
	require.Equal(t, 800*time.Millisecond, cfg.Render.TransitionDuration)
	require.Equal(t, 8.0, cfg.Render.TransitionDrift)
	require.Equal(t, render.DefaultConcurrency(), cfg.Render.Concurrency)

	require.Equal(t, "github-dark", cfg.Style.Theme)
	require.Equal(t, 24.0, cfg.Style.FontSize)
	require.Equal(t, 34.0, cfg.Style.LineHeight)
	require.Equal(t, 64.0, cfg.Style.Padding)
	require.Equal(t, "  ", cfg.Style.TabReplacement)
	require.Equal(t, "#e6e6e6", cfg.Style.Foreground)
	require.Equal(t, "#0b0b0b", cfg.Style.Background)

	require.Equal(t, "mp4", cfg.Output.Format)
	require.False(t, cfg.Tracing.Enabled)

	require.NoError(t, Validate(cfg), "defaults must validate")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Render.Width = 0 }, "render.width must be positive"},
		{"negative height", func(c *Config) { c.Render.Height = -1 }, "render.height must be positive"},
		{"zero fps", func(c *Config) { c.Render.FPS = 0 }, "render.fps must be positive"},
		{"zero block", func(c *Config) { c.Render.BlockDuration = 0 }, "render.block_duration must be positive"},
		{"zero transition", func(c *Config) { c.Render.TransitionDuration = 0 }, "render.transition_duration must be positive"},
		{"negative drift", func(c *Config) { c.Render.TransitionDrift = -2 }, "render.transition_drift must not be negative"},
		{"negative concurrency", func(c *Config) { c.Render.Concurrency = -1 }, "render.concurrency must not be negative"},
		{"zero font size", func(c *Config) { c.Style.FontSize = 0 }, "style.font_size must be positive"},
		{"zero line height", func(c *Config) { c.Style.LineHeight = 0 }, "style.line_height must be positive"},
		{"negative padding", func(c *Config) { c.Style.Padding = -1 }, "style.padding must not be negative"},
		{"bad foreground", func(c *Config) { c.Style.Foreground = "white" }, "style.foreground must be a hex color"},
		{"bad background", func(c *Config) { c.Style.Background = "#12345" }, "style.background must be a hex color"},
		{"bad format", func(c *Config) { c.Output.Format = "gif" }, "output.format must be"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate must be between"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "tracing.exporter must be"},
		{"file path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "file"
			c.Tracing.FilePath = ""
		}, "tracing.file_path is required"},
		{"otlp endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateStyle_ShortHexAndEmpty(t *testing.T) {
	s := Defaults().Style
	s.Foreground = "#fff"
	s.Background = ""
	require.NoError(t, ValidateStyle(s))
}

func TestConfig_RenderOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Render.Concurrency = 3
	opts := cfg.RenderOptions()

	require.Equal(t, 1280, opts.MinWidth)
	require.Equal(t, 720, opts.MinHeight)
	require.Equal(t, 30.0, opts.FPS)
	require.Equal(t, 2*time.Second, opts.BlockDuration)
	require.Equal(t, 800*time.Millisecond, opts.TransitionDuration)
	require.Equal(t, 8.0, opts.Drift)
	require.Equal(t, 24.0, opts.FontSize)
	require.Equal(t, 3, opts.Concurrency)
	require.Equal(t, 64.0, opts.Scene.Padding)
	require.Equal(t, 34.0, opts.Scene.LineHeight)
	require.Equal(t, "  ", opts.Scene.TabReplacement)
	require.Equal(t, paint.ParseHex("#e6e6e6"), opts.Scene.Foreground)
	require.Equal(t, paint.ParseHex("#0b0b0b"), opts.Scene.Background)

	require.NoError(t, opts.Validate())
}

func TestConfig_FfmpegOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Output.Format = "webm"
	cfg.Output.Filter = "null"
	stream := encoder.Stream{Width: 2, Height: 2, FPS: 30}

	opts := cfg.FfmpegOptions("out.webm", stream)
	require.Equal(t, encoder.FormatWebM, opts.Format)
	require.Equal(t, "ffmpeg", opts.Binary)
	require.Equal(t, "null", opts.Filter)
	require.Equal(t, "out.webm", opts.Output)
	require.Equal(t, stream, opts.Stream)
}

func TestConfig_FontFiles(t *testing.T) {
	cfg := Defaults()
	cfg.Font.Regular = "/fonts/a.ttf"
	cfg.Font.BoldItalic = "/fonts/bi.ttf"

	files := cfg.FontFiles()
	require.Equal(t, "/fonts/a.ttf", files.Regular)
	require.Equal(t, "/fonts/bi.ttf", files.BoldItalic)
	require.Empty(t, files.Bold)
}

// The template must decode through viper into the same values as Defaults.
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.Render.BlockDuration, cfg.Render.BlockDuration)
	require.Equal(t, want.Render.TransitionDuration, cfg.Render.TransitionDuration)
	require.Equal(t, want.Style, cfg.Style)
	require.Equal(t, want.Output.Format, cfg.Output.Format)
	require.NoError(t, Validate(cfg))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDefaultTracesFilePath(t *testing.T) {
	path := DefaultTracesFilePath()
	if path == "" {
		t.Skip("no home directory")
	}
	require.True(t, strings.HasSuffix(path, filepath.Join("sakuga", "traces", "traces.jsonl")))
}
