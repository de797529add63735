package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSoundID is the cue played by new notifications.
	DefaultSoundID = "minecraft:block.note_block.bell"

	// DefaultSoundNamespace is prepended to identifiers without a namespace.
	DefaultSoundNamespace = "minecraft"

	MinVolume = 0.0
	MaxVolume = 2.0
	MinPitch  = 0.5
	MaxPitch  = 2.0
)

// soundIDPattern matches "namespace:path" resource identifiers.
var soundIDPattern = regexp.MustCompile(`^[a-z0-9_.-]+:[a-z0-9_./-]+$`)

// Sound is the audio cue of a notification.
type Sound struct {
	ID      string  `json:"id" yaml:"id"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Volume  float64 `json:"volume" yaml:"volume"`
	Pitch   float64 `json:"pitch" yaml:"pitch"`
}

// DefaultSound returns the sound of a new notification.
func DefaultSound() Sound {
	return Sound{ID: DefaultSoundID, Enabled: true, Volume: 1, Pitch: 1}
}

// NewSound validates its arguments and returns an enabled sound.
func NewSound(id string, volume, pitch float64) (Sound, error) {
	norm, err := NormalizeSoundID(id)
	if err != nil {
		return Sound{}, err
	}
	if volume < MinVolume || volume > MaxVolume {
		return Sound{}, &ValidationError{
			Field:   "volume",
			Message: fmt.Sprintf("%v out of range [%v, %v]", volume, MinVolume, MaxVolume),
		}
	}
	if pitch < MinPitch || pitch > MaxPitch {
		return Sound{}, &ValidationError{
			Field:   "pitch",
			Message: fmt.Sprintf("%v out of range [%v, %v]", pitch, MinPitch, MaxPitch),
		}
	}
	return Sound{ID: norm, Enabled: true, Volume: volume, Pitch: pitch}, nil
}

// NormalizeSoundID lower-cases id, adds the default namespace when missing
// and checks the identifier format.
func NormalizeSoundID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", &ValidationError{Field: "id", Message: "sound id is required"}
	}
	if !strings.Contains(id, ":") {
		id = DefaultSoundNamespace + ":" + id
	}
	if !soundIDPattern.MatchString(id) {
		return "", &ValidationError{Field: "id", Message: fmt.Sprintf("invalid sound id %q", id)}
	}
	return id, nil
}

// UnmarshalJSON fills omitted fields with the defaults.
func (s *Sound) UnmarshalJSON(b []byte) error {
	type plain Sound
	v := plain(DefaultSound())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Sound(v)
	return nil
}

// UnmarshalYAML fills omitted fields with the defaults.
func (s *Sound) UnmarshalYAML(node *yaml.Node) error {
	type plain Sound
	v := plain(DefaultSound())
	if err := node.Decode(&v); err != nil {
		return err
	}
	*s = Sound(v)
	return nil
}
