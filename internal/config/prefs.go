package config

import (
	"encoding/json"
	"fmt"

	"github.com/lumabooth/luma/internal/store"
)

// prefsKey is the settings-table row holding the serialized preferences.
const prefsKey = "prefs"

// Prefs are the user-mutable preferences. Unlike the rest of Config
// they survive restarts through the store's settings table.
type Prefs struct {
	AnimationSpeed float64 `yaml:"animation_speed" env:"LUMA_ANIMATION_SPEED" env-default:"1.0" json:"animationSpeed"`
	SoundCues      bool    `yaml:"sound_cues"      env:"LUMA_SOUND_CUES"      env-default:"true" json:"soundCues"`
}

// Validate checks preference ranges.
func (p Prefs) Validate() error {
	if p.AnimationSpeed < 0 || p.AnimationSpeed > 4 {
		return fmt.Errorf("prefs.animation_speed must be in 0..4, got %v", p.AnimationSpeed)
	}
	return nil
}

// LoadPrefs merges persisted preferences over the loaded defaults.
// A store with no saved preferences leaves p untouched.
func LoadPrefs(s store.Storer, p *Prefs) error {
	raw, ok, err := s.GetSetting(prefsKey)
	if err != nil {
		return fmt.Errorf("loading prefs: %w", err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return fmt.Errorf("decoding prefs: %w", err)
	}
	return p.Validate()
}

// SavePrefs persists the preferences through the settings table.
func SavePrefs(s store.Storer, p Prefs) error {
	if err := p.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := s.PutSetting(prefsKey, string(raw)); err != nil {
		return fmt.Errorf("saving prefs: %w", err)
	}
	return nil
}
