package tip

import (
	"bytes"
	"github.com/cottand/tip/frontend/infer"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io"
	"io/fs"
	"log/slog"
)

// SettingsFile is the name LoadSettings looks for when the CLI is not given --config
const SettingsFile = "tip.yaml"

type Settings struct {
	// EntryPoint names the function whose formals and return value are forced to int.
	// The default is `main`
	EntryPoint string `yaml:"entry"`
	// LogLevel is a slog level name such as `debug` or `warn+2`.
	// Empty leaves the current level untouched
	LogLevel string `yaml:"log-level,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{EntryPoint: infer.DefaultEntryPoint}
}

// LoadSettings reads path from fsys as YAML, on top of DefaultSettings
func LoadSettings(fsys fs.FS, path string) (Settings, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "read settings %s", path)
	}
	settings, err := ParseSettings(data)
	return settings, errors.Wrapf(err, "settings %s", path)
}

// ParseSettings decodes YAML settings. Unknown keys are an error
func ParseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&settings)
	if err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, errors.Wrap(err, "decode yaml")
	}
	if settings.EntryPoint == "" {
		settings.EntryPoint = infer.DefaultEntryPoint
	}
	if _, err := settings.Level(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Level parses LogLevel, defaulting to slog.LevelError
func (s Settings) Level() (level slog.Level, err error) {
	if s.LogLevel == "" {
		return slog.LevelError, nil
	}
	err = level.UnmarshalText([]byte(s.LogLevel))
	return level, errors.Wrapf(err, "log level %q", s.LogLevel)
}

func (s Settings) inferSettings() infer.Settings {
	return infer.Settings{EntryPoint: s.EntryPoint}
}
