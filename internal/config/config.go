// Package config loads horza configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (HORZA_<KEY>, e.g. HORZA_DISPLAY_SCALE)
//  2. Config file
//  3. Preset selected by the "preset" key
//  4. Built-in defaults
//
// Config file search order:
//  1. $HORZA_CONFIG
//  2. .horza.yaml in current directory
//  3. ~/.config/horza/config.yaml
//
// The file is a flat YAML mapping. Keys are case-insensitive and may use
// dashes or underscores. Every value is read as a string and parsed with
// the same rules regardless of its source: numbers are clamped to safe
// ranges, booleans must be exactly "true" or "false", and an unknown
// enumeration value keeps the previous setting. Each rejected value is
// recorded in Config.Warnings instead of failing the load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/timvw/horza/internal/layout"
)

// BackgroundSource selects what is drawn behind the tiles.
type BackgroundSource string

const (
	BackgroundBlack     BackgroundSource = "black"
	BackgroundWallpaper BackgroundSource = "wallpaper"
)

// ShadowMode selects how card shadows are drawn.
type ShadowMode string

const (
	ShadowFast    ShadowMode = "fast"
	ShadowTexture ShadowMode = "texture"
)

// FadeCurve is the easing of the async close handoff.
type FadeCurve string

const (
	FadeLinear  FadeCurve = "linear"
	FadeEaseOut FadeCurve = "ease_out"
)

// Config holds all horza configuration.
type Config struct {
	Preset string

	// Capture and layout
	CaptureScale            float64
	DisplayScale            float64
	OverviewGap             float64
	InactiveTileSizePercent float64
	Orientation             layout.Orientation
	CenterOffset            float64
	CornerRadius            float64

	// Snapshot cache
	PersistentCache bool
	CacheTTLMs      float64
	CacheMaxEntries int

	// Capture scheduler
	CaptureBudgetMs     float64
	MaxCapturesPerFrame int
	LivePreviewFPS      float64
	LivePreviewRadius   int
	PrewarmAll          bool

	// Background
	BackgroundSource       BackgroundSource
	BackgroundBlurRadius   float64
	BackgroundBlurPasses   int
	BackgroundBlurSpread   float64
	BackgroundBlurStrength float64
	BackgroundTint         float64

	// Card shadow
	CardShadow        bool
	CardShadowMode    ShadowMode
	CardShadowTexture string
	CardShadowAlpha   float64
	CardShadowSize    float64
	CardShadowOffsetY float64

	// Titles
	ShowWindowTitles     bool
	TitleFontSize        int
	TitleFontFamily      string
	TitleBackgroundAlpha float64

	// Behaviour
	FreezeAnimations     bool
	EscOnly              bool
	AsyncCloseHandoff    bool
	AsyncCloseFadeStart  float64
	AsyncCloseFadeCurve  FadeCurve
	AsyncCloseMinAlpha   float64
	CloseDropDelayMs     float64
	DragHoverJumpDelayMs float64

	// Tuning constants
	AnimationMs         float64
	ScrollStepThreshold float64
	CloseHardTimeoutMs  float64
	DragThreshold       float64

	// Terminal host
	Theme       string
	EventSocket string

	// Logging
	LogFile  string
	LogLevel string

	// OTEL
	OTELEndpoint string
	OTELHeaders  string // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string
	// Warnings lists values that were rejected or clamped while loading.
	Warnings []string
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Preset:                  "custom",
		CaptureScale:            0.96,
		DisplayScale:            0.70,
		OverviewGap:             16,
		InactiveTileSizePercent: 85,
		Orientation:             layout.Horizontal,
		CornerRadius:            5,

		PersistentCache: true,
		CacheTTLMs:      1500,
		CacheMaxEntries: 96,

		CaptureBudgetMs:     4,
		MaxCapturesPerFrame: 1,
		LivePreviewFPS:      6,
		LivePreviewRadius:   2,

		BackgroundSource:       BackgroundBlack,
		BackgroundBlurRadius:   3,
		BackgroundBlurPasses:   1,
		BackgroundBlurSpread:   1,
		BackgroundBlurStrength: 1,
		BackgroundTint:         0.35,

		CardShadow:        true,
		CardShadowMode:    ShadowFast,
		CardShadowAlpha:   0.16,
		CardShadowSize:    14,
		CardShadowOffsetY: 8,

		TitleFontSize:        14,
		TitleFontFamily:      "Inter",
		TitleBackgroundAlpha: 0.35,

		FreezeAnimations:     true,
		EscOnly:              true,
		AsyncCloseFadeStart:  0.88,
		AsyncCloseFadeCurve:  FadeEaseOut,
		CloseDropDelayMs:     100,
		DragHoverJumpDelayMs: 1000,

		AnimationMs:         250,
		ScrollStepThreshold: 48,
		CloseHardTimeoutMs:  900,
		DragThreshold:       10,

		Theme:    "dark",
		LogLevel: "info",
	}
}

// gnomeFast is the "gnome_fast" preset: smaller captures, no blur, slightly
// faster live previews.
func gnomeFast() *Config {
	c := Defaults()
	c.Preset = "gnome_fast"
	c.CaptureScale = 0.72
	c.DisplayScale = 0.68
	c.OverviewGap = 18
	c.LivePreviewFPS = 8
	c.LivePreviewRadius = 1
	c.BackgroundBlurRadius = 0
	c.BackgroundBlurPasses = 0
	c.BackgroundBlurStrength = 0
	c.BackgroundTint = 0.30
	c.TitleFontSize = 13
	c.TitleBackgroundAlpha = 0.30
	return c
}

// Durations derived from the millisecond settings.

func (c *Config) CacheTTL() time.Duration { return ms(c.CacheTTLMs) }
func (c *Config) CaptureBudget() time.Duration { return ms(c.CaptureBudgetMs) }
func (c *Config) CloseDropDelay() time.Duration { return ms(c.CloseDropDelayMs) }
func (c *Config) DragHoverJumpDelay() time.Duration { return ms(c.DragHoverJumpDelayMs) }
func (c *Config) AnimationDuration() time.Duration { return ms(c.AnimationMs) }
func (c *Config) CloseHardTimeout() time.Duration { return ms(c.CloseHardTimeoutMs) }

func ms(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }

// Load reads configuration from the first config file found and the
// environment. A missing file is not an error.
func Load() (*Config, error) {
	path, data, err := findConfigFile()
	if err != nil {
		return parse("", nil)
	}
	return parse(path, data)
}

// LoadFile reads configuration from path and the environment.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

// Parse builds a Config from YAML bytes and the environment.
func Parse(data []byte) (*Config, error) {
	return parse("", data)
}

func parse(path string, data []byte) (*Config, error) {
	raw := map[string]string{}
	var warnings []string

	if len(data) > 0 {
		var doc map[string]yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			if path == "" {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		for k, node := range doc {
			if node.Kind != yaml.ScalarNode {
				warnings = append(warnings, fmt.Sprintf("%s: expected a scalar value", k))
				continue
			}
			raw[normalizeToken(k)] = node.Value
		}
	}

	// Environment variables override file values.
	for _, f := range fields {
		if v := os.Getenv(envName(f.key)); v != "" {
			raw[f.key] = v
		}
	}
	// Standard OTEL env vars fill in when nothing more specific is set.
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" && raw["otel_endpoint"] == "" {
		raw["otel_endpoint"] = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" && raw["otel_headers"] == "" {
		raw["otel_headers"] = v
	}

	if v := os.Getenv("HORZA_PRESET"); v != "" {
		raw["preset"] = v
	}

	cfg := Defaults()
	if p, ok := raw["preset"]; ok {
		next, err := presetConfig(p)
		if err != nil {
			warnings = append(warnings, "preset: "+err.Error())
		} else {
			cfg = next
		}
	}
	warnings = append(warnings, cfg.apply(raw)...)
	cfg.ConfigFile = path
	cfg.Warnings = warnings
	return cfg, nil
}

// Set applies a single key/value pair with the same rules as the file.
func (c *Config) Set(key, value string) error {
	key = normalizeToken(key)
	if key == "preset" {
		next, err := presetConfig(value)
		if err != nil {
			return err
		}
		file, warnings := c.ConfigFile, c.Warnings
		*c = *next
		c.ConfigFile, c.Warnings = file, warnings
		return nil
	}
	f, ok := fieldByKey[key]
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	return f.set(c, value)
}

// apply runs every known key present in raw in declaration order and
// returns a warning per rejected value or unknown key.
func (c *Config) apply(raw map[string]string) []string {
	var warnings []string
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := f.set(c, v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", f.key, err))
		}
	}
	var unknown []string
	for k := range raw {
		if _, ok := fieldByKey[k]; !ok && k != "preset" {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		warnings = append(warnings, fmt.Sprintf("%s: unknown key", k))
	}
	return warnings
}

func presetConfig(raw string) (*Config, error) {
	switch normalizeToken(raw) {
	case "default", "stock", "none", "custom":
		c := Defaults()
		c.Preset = normalizeToken(raw)
		return c, nil
	case "gnome_fast":
		return gnomeFast(), nil
	}
	return nil, fmt.Errorf("unknown preset %q", strings.TrimSpace(raw))
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Explicit path
	if p := os.Getenv("HORZA_CONFIG"); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			return p, data, nil
		}
	}

	// 2. Current directory
	if data, err := os.ReadFile(".horza.yaml"); err == nil {
		return ".horza.yaml", data, nil
	}

	// 3. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "horza", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// SearchPath returns the file Load would read, or the default location when
// no file exists yet. The reload watcher uses it.
func SearchPath() string {
	if path, _, err := findConfigFile(); err == nil {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "horza", "config.yaml")
	}
	return ".horza.yaml"
}

func envName(key string) string {
	return "HORZA_" + strings.ToUpper(key)
}

// normalizeToken lowercases s, maps dashes to underscores and trims
// surrounding whitespace.
func normalizeToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
