// Package cmd wires the sakuga command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/adelrodriguez/sakuga/internal/config"
	"github.com/adelrodriguez/sakuga/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is the project-level config, checked before the user config.
const localConfigPath = ".sakuga/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	logCleanup func()
	configErr  error
)

var rootCmd = &cobra.Command{
	Use:   "sakuga",
	Short: "Turn code into animated videos",
	Long: `Sakuga renders a sequence of code snippets as a video in which each
snippet morphs into the next: unchanged tokens glide to their new position,
removed tokens fade out and new tokens fade in.

Snippets come from the fenced code blocks of a markdown file, from a YAML
storyboard, or from the git history of a single file.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .sakuga/config.yaml, then ~/.config/sakuga/config.yaml)")
	pf.BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also SAKUGA_DEBUG=1; path from SAKUGA_LOG)")
}

// addRenderFlags registers the flags shared by commands that render video.
func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output", "o", "", "output path (default: <input dir>/<input name>.<format>)")
	f.StringP("format", "f", "", "output format: mp4, webm, or png")
	f.StringP("theme", "t", "", "chroma style (see 'sakuga themes')")
	f.Int("width", 0, "minimum frame width in pixels")
	f.Int("height", 0, "minimum frame height in pixels")
	f.Float64("fps", 0, "frames per second")
	f.Duration("block-duration", 0, "how long each snippet is held on screen")
	f.Duration("transition-duration", 0, "length of each transition")
	f.Float64("transition-drift", 0, "pixels added and removed tokens slide vertically")
	f.Float64("font-size", 0, "font size in pixels")
	f.Float64("line-height", 0, "line height in pixels")
	f.Float64("padding", 0, "padding around the code in pixels")
	f.String("font", "", "regular font file (default: Go Mono)")
	f.String("background", "", "fallback background color")
	f.String("foreground", "", "fallback text color")
}

// renderFlagKeys maps render flags to config keys.
var renderFlagKeys = map[string]string{
	"format":              "output.format",
	"theme":               "style.theme",
	"width":               "render.width",
	"height":              "render.height",
	"fps":                 "render.fps",
	"block-duration":      "render.block_duration",
	"transition-duration": "render.transition_duration",
	"transition-drift":    "render.transition_drift",
	"font-size":           "style.font_size",
	"line-height":         "style.line_height",
	"padding":             "style.padding",
	"font":                "font.regular",
	"background":          "style.background",
	"foreground":          "style.foreground",
}

// applyFlags copies explicitly set render flags over the loaded config.
// Viper bindings are global and would leak between commands, so flags are
// applied per invocation instead.
func applyFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := renderFlagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.height", d.Render.Height)
	v.SetDefault("render.fps", d.Render.FPS)
	v.SetDefault("render.block_duration", d.Render.BlockDuration)
	v.SetDefault("render.transition_duration", d.Render.TransitionDuration)
	v.SetDefault("render.transition_drift", d.Render.TransitionDrift)
	v.SetDefault("render.concurrency", d.Render.Concurrency)
	v.SetDefault("style.theme", d.Style.Theme)
	v.SetDefault("style.font_size", d.Style.FontSize)
	v.SetDefault("style.line_height", d.Style.LineHeight)
	v.SetDefault("style.padding", d.Style.Padding)
	v.SetDefault("style.tab_replacement", d.Style.TabReplacement)
	v.SetDefault("style.foreground", d.Style.Foreground)
	v.SetDefault("style.background", d.Style.Background)
	v.SetDefault("font.regular", d.Font.Regular)
	v.SetDefault("font.bold", d.Font.Bold)
	v.SetDefault("font.italic", d.Font.Italic)
	v.SetDefault("font.bold_italic", d.Font.BoldItalic)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.ffmpeg", d.Output.Ffmpeg)
	v.SetDefault("output.filter", d.Output.Filter)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", config.DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// loadConfig reads configuration into v. An explicit file must exist; the
// default locations are optional.
func loadConfig(v *viper.Viper, explicit string) error {
	setDefaults(v)
	v.SetEnvPrefix("SAKUGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		// Config lookup order:
		// 1. .sakuga/config.yaml (current directory)
		// 2. ~/.config/sakuga/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "sakuga"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// decodeConfig unmarshals v into a Config.
func decodeConfig(v *viper.Viper) (config.Config, error) {
	c := config.Defaults()
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

func initConfig() {
	configErr = loadConfig(viper.GetViper(), cfgFile)
}

// commandConfig returns the loaded config with cmd's explicitly set flags
// applied, validated.
func commandConfig(cmd *cobra.Command) (config.Config, error) {
	if configErr != nil {
		return config.Defaults(), configErr
	}
	v := viper.GetViper()
	applyFlags(v, cmd.Flags())
	c, err := decodeConfig(v)
	if err != nil {
		return c, err
	}
	if err := config.Validate(c); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed(), "theme", c.Style.Theme, "format", c.Output.Format)
	return c, nil
}

func initLogging(*cobra.Command, []string) error {
	// Initialize logging if debug mode enabled (via flag or env var)
	debug := os.Getenv("SAKUGA_DEBUG") != "" || debugFlag
	if !debug {
		return nil
	}

	logPath := os.Getenv("SAKUGA_LOG")
	if logPath == "" {
		logPath = "sakuga-debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.Info(log.CatConfig, "Sakuga starting", "debug", true, "logPath", logPath, "version", version)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
