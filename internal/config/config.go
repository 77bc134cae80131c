// Package config is the single source of app preferences. Nothing in
// the pipeline reads globals; consumers receive the pieces they need
// through their constructors.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Capture  CaptureConfig  `yaml:"capture"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Export   ExportConfig   `yaml:"export"`
	Prefs    Prefs          `yaml:"prefs"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"LUMA_DB_PATH" env-default:"booth.db"`
}

// CaptureConfig holds session timing and camera hints.
type CaptureConfig struct {
	Shots            int           `yaml:"shots"             env:"LUMA_CAPTURE_SHOTS"       env-default:"4"`
	CountdownSeconds int           `yaml:"countdown_seconds" env:"LUMA_COUNTDOWN_SECONDS"   env-default:"3"`
	SettleDelay      time.Duration `yaml:"settle_delay"      env:"LUMA_SETTLE_DELAY"        env-default:"500ms"`
	ShotGap          time.Duration `yaml:"shot_gap"          env:"LUMA_SHOT_GAP"            env-default:"1s"`
	FrameWidth       int           `yaml:"frame_width"       env:"LUMA_FRAME_WIDTH"         env-default:"1280"`
	FrameHeight      int           `yaml:"frame_height"      env:"LUMA_FRAME_HEIGHT"        env-default:"720"`
}

// CanvasConfig holds collage canvas dimensions.
type CanvasConfig struct {
	Width  int `yaml:"width"  env:"LUMA_CANVAS_WIDTH"  env-default:"800"`
	Height int `yaml:"height" env:"LUMA_CANVAS_HEIGHT" env-default:"800"`
}

// ExportConfig holds flatten/export settings.
type ExportConfig struct {
	Multiplier  int `yaml:"multiplier"   env:"LUMA_EXPORT_MULTIPLIER" env-default:"2"`
	JPEGQuality int `yaml:"jpeg_quality" env:"LUMA_JPEG_QUALITY"      env-default:"92"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LUMA_LOG_LEVEL" env-default:"info"`
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	if c.Capture.Shots < 1 {
		return fmt.Errorf("capture.shots must be at least 1, got %d", c.Capture.Shots)
	}
	if c.Capture.CountdownSeconds < 1 {
		return fmt.Errorf("capture.countdown_seconds must be at least 1, got %d", c.Capture.CountdownSeconds)
	}
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		return fmt.Errorf("canvas size %dx%d invalid", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Export.Multiplier < 1 {
		return fmt.Errorf("export.multiplier must be at least 1, got %d", c.Export.Multiplier)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be in 1..100, got %d", c.Export.JPEGQuality)
	}
	if err := c.Prefs.Validate(); err != nil {
		return err
	}
	return nil
}
