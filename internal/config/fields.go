package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/timvw/horza/internal/layout"
)

// field binds a config key to the setter that parses and validates it.
type field struct {
	key string
	set func(c *Config, raw string) error
}

// fields is applied in order. inactive_tile_shrink_percent comes after
// inactive_tile_size_percent so the alias wins when both are given.
var fields = []field{
	{"capture_scale", func(c *Config, raw string) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			c.CaptureScale = 1
			return nil
		}
		c.CaptureScale = clamp(v, 0.05, 1)
		return nil
	}},
	{"display_scale", func(c *Config, raw string) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.DisplayScale = 0.70
			return nil
		}
		c.DisplayScale = clamp(v, 0.05, 3)
		return nil
	}},
	floatField("overview_gap", 0, math.Inf(1), func(c *Config) *float64 { return &c.OverviewGap }),
	floatField("inactive_tile_size_percent", 0, 100, func(c *Config) *float64 { return &c.InactiveTileSizePercent }),
	{"inactive_tile_shrink_percent", func(c *Config, raw string) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 15
		}
		c.InactiveTileSizePercent = 100 - clamp(v, 0, 100)
		return nil
	}},
	{"orientation", func(c *Config, raw string) error {
		switch normalizeToken(raw) {
		case "horizontal":
			c.Orientation = layout.Horizontal
		case "vertical":
			c.Orientation = layout.Vertical
		default:
			return fmt.Errorf("unknown orientation %q (expected horizontal/vertical)", raw)
		}
		return nil
	}},
	floatField("center_offset", math.Inf(-1), math.Inf(1), func(c *Config) *float64 { return &c.CenterOffset }),
	floatField("corner_radius", 0, math.Inf(1), func(c *Config) *float64 { return &c.CornerRadius }),

	boolField("persistent_cache", func(c *Config) *bool { return &c.PersistentCache }),
	floatField("cache_ttl_ms", math.Inf(-1), math.Inf(1), func(c *Config) *float64 { return &c.CacheTTLMs }),
	intField("cache_max_entries", 0, math.MaxInt32, func(c *Config) *int { return &c.CacheMaxEntries }),

	floatField("capture_budget_ms", 0, math.Inf(1), func(c *Config) *float64 { return &c.CaptureBudgetMs }),
	intField("max_captures_per_frame", 0, math.MaxInt32, func(c *Config) *int { return &c.MaxCapturesPerFrame }),
	floatField("live_preview_fps", 0, 60, func(c *Config) *float64 { return &c.LivePreviewFPS }),
	intField("live_preview_radius", 0, math.MaxInt32, func(c *Config) *int { return &c.LivePreviewRadius }),
	boolField("prewarm_all", func(c *Config) *bool { return &c.PrewarmAll }),

	{"background_source", func(c *Config, raw string) error {
		switch normalizeToken(raw) {
		case "black":
			c.BackgroundSource = BackgroundBlack
		case "wallpaper", "hyprpaper":
			c.BackgroundSource = BackgroundWallpaper
		default:
			return fmt.Errorf("unknown background source %q (expected black/wallpaper)", raw)
		}
		return nil
	}},
	floatField("background_blur_radius", 0, 64, func(c *Config) *float64 { return &c.BackgroundBlurRadius }),
	intField("background_blur_passes", 0, 8, func(c *Config) *int { return &c.BackgroundBlurPasses }),
	floatField("background_blur_spread", 0, 8, func(c *Config) *float64 { return &c.BackgroundBlurSpread }),
	floatField("background_blur_strength", 0, 4, func(c *Config) *float64 { return &c.BackgroundBlurStrength }),
	floatField("background_tint", 0, 1, func(c *Config) *float64 { return &c.BackgroundTint }),

	boolField("card_shadow", func(c *Config) *bool { return &c.CardShadow }),
	{"card_shadow_mode", func(c *Config, raw string) error {
		switch normalizeToken(raw) {
		case "fast", "box", "rect":
			c.CardShadowMode = ShadowFast
		case "texture", "png", "image":
			c.CardShadowMode = ShadowTexture
		default:
			return fmt.Errorf("unknown card shadow mode %q (expected fast/texture)", raw)
		}
		return nil
	}},
	{"card_shadow_texture", func(c *Config, raw string) error {
		c.CardShadowTexture = stripWrappedQuotes(strings.TrimSpace(raw))
		return nil
	}},
	floatField("card_shadow_alpha", 0, 1, func(c *Config) *float64 { return &c.CardShadowAlpha }),
	floatField("card_shadow_size", 0, 256, func(c *Config) *float64 { return &c.CardShadowSize }),
	floatField("card_shadow_offset_y", -256, 256, func(c *Config) *float64 { return &c.CardShadowOffsetY }),

	boolField("show_window_titles", func(c *Config) *bool { return &c.ShowWindowTitles }),
	intField("title_font_size", 6, 64, func(c *Config) *int { return &c.TitleFontSize }),
	{"title_font_family", func(c *Config, raw string) error {
		c.TitleFontFamily = fontFamily(raw)
		return nil
	}},
	floatField("title_background_alpha", 0, 1, func(c *Config) *float64 { return &c.TitleBackgroundAlpha }),

	boolField("freeze_animations", func(c *Config) *bool { return &c.FreezeAnimations }),
	boolField("esc_only", func(c *Config) *bool { return &c.EscOnly }),
	boolField("async_close_handoff", func(c *Config) *bool { return &c.AsyncCloseHandoff }),
	floatField("async_close_fade_start", 0, 0.999, func(c *Config) *float64 { return &c.AsyncCloseFadeStart }),
	{"async_close_fade_curve", func(c *Config, raw string) error {
		switch normalizeToken(raw) {
		case "linear":
			c.AsyncCloseFadeCurve = FadeLinear
		case "ease_out", "easeout":
			c.AsyncCloseFadeCurve = FadeEaseOut
		default:
			return fmt.Errorf("unknown fade curve %q (expected linear/ease_out)", raw)
		}
		return nil
	}},
	floatField("async_close_min_alpha", 0, 1, func(c *Config) *float64 { return &c.AsyncCloseMinAlpha }),
	floatField("close_drop_delay_ms", 0, 2000, func(c *Config) *float64 { return &c.CloseDropDelayMs }),
	floatField("drag_hover_jump_delay_ms", 0, 10000, func(c *Config) *float64 { return &c.DragHoverJumpDelayMs }),

	floatField("animation_ms", 0, 5000, func(c *Config) *float64 { return &c.AnimationMs }),
	floatField("scroll_step_threshold", 1, 10000, func(c *Config) *float64 { return &c.ScrollStepThreshold }),
	floatField("close_hard_timeout_ms", 0, 60000, func(c *Config) *float64 { return &c.CloseHardTimeoutMs }),
	floatField("drag_threshold", 0, 1000, func(c *Config) *float64 { return &c.DragThreshold }),

	{"theme", func(c *Config, raw string) error {
		switch t := normalizeToken(raw); t {
		case "dark", "light":
			c.Theme = t
		default:
			return fmt.Errorf("unknown theme %q (expected dark/light)", raw)
		}
		return nil
	}},
	stringField("event_socket", func(c *Config) *string { return &c.EventSocket }),
	stringField("log_file", func(c *Config) *string { return &c.LogFile }),
	{"log_level", func(c *Config, raw string) error {
		switch l := normalizeToken(raw); l {
		case "debug", "info", "warn", "error":
			c.LogLevel = l
		default:
			return fmt.Errorf("unknown log level %q", raw)
		}
		return nil
	}},
	stringField("otel_endpoint", func(c *Config) *string { return &c.OTELEndpoint }),
	stringField("otel_headers", func(c *Config) *string { return &c.OTELHeaders }),
}

var fieldByKey = func() map[string]field {
	m := make(map[string]field, len(fields))
	for _, f := range fields {
		m[f.key] = f
	}
	return m
}()

// Keys returns every recognised config key in application order.
func Keys() []string {
	out := make([]string, 0, len(fields)+1)
	out = append(out, "preset")
	for _, f := range fields {
		out = append(out, f.key)
	}
	return out
}

func floatField(key string, lo, hi float64, ptr func(*Config) *float64) field {
	return field{key, func(c *Config, raw string) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		if math.IsNaN(v) {
			return fmt.Errorf("invalid number %q", raw)
		}
		*ptr(c) = clamp(v, lo, hi)
		return nil
	}}
}

func intField(key string, lo, hi int, ptr func(*Config) *int) field {
	return field{key, func(c *Config, raw string) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		if math.IsNaN(v) {
			return fmt.Errorf("invalid number %q", raw)
		}
		*ptr(c) = int(math.Round(clamp(v, float64(lo), float64(hi))))
		return nil
	}}
}

func boolField(key string, ptr func(*Config) *bool) field {
	return field{key, func(c *Config, raw string) error {
		switch strings.TrimSpace(raw) {
		case "true":
			*ptr(c) = true
		case "false":
			*ptr(c) = false
		default:
			return fmt.Errorf("invalid boolean '%s' (expected true/false)", raw)
		}
		return nil
	}}
}

func stringField(key string, ptr func(*Config) *string) field {
	return field{key, func(c *Config, raw string) error {
		*ptr(c) = strings.TrimSpace(raw)
		return nil
	}}
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stripWrappedQuotes removes one pair of matching surrounding quotes.
func stripWrappedQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// fontFamily normalises a font name: quotes and a trailing " Regular" style
// are dropped, and an empty name falls back to Inter.
func fontFamily(raw string) string {
	s := stripWrappedQuotes(strings.TrimSpace(raw))
	if strings.HasSuffix(strings.ToLower(s), " regular") {
		s = strings.TrimSpace(s[:len(s)-len(" regular")])
	}
	if s == "" {
		return "Inter"
	}
	return s
}
