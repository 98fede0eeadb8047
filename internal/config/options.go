package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Options are process-level overrides read from the environment. They
// take precedence over the persisted settings document.
type Options struct {
	// ConfigDir overrides the default ~/.deskai directory.
	ConfigDir string `env:"DESKAI_CONFIG_DIR"`

	// SkillsDir overrides the script skills directory.
	SkillsDir string `env:"DESKAI_SKILLS_DIR"`

	// LogLevel selects the slog level: debug, info, warn, error.
	LogLevel string `env:"DESKAI_LOG_LEVEL" envDefault:"info"`

	// VoiceEnabled toggles spoken responses in the front-end.
	VoiceEnabled bool `env:"DESKAI_VOICE" envDefault:"true"`

	// DisabledSkills lists skill module names to skip at load time,
	// merged with the disabled_skills setting.
	DisabledSkills []string `env:"DESKAI_DISABLED_SKILLS" envSeparator:","`
}

// OptionsFromEnv parses Options from the process environment.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse environment: %w", err)
	}
	return opts, nil
}

// ResolveConfigDir returns the configured directory, falling back to
// ~/.deskai. The directory is not created here.
func (o Options) ResolveConfigDir() string {
	if o.ConfigDir != "" {
		return o.ConfigDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskai"
	}
	return filepath.Join(home, ".deskai")
}

// ResolveSkillsDir returns the configured script skills directory,
// falling back to <config dir>/skills.
func (o Options) ResolveSkillsDir() string {
	if o.SkillsDir != "" {
		return o.SkillsDir
	}
	return filepath.Join(o.ResolveConfigDir(), "skills")
}

// SettingsPath returns the settings.json path under the config dir.
func (o Options) SettingsPath() string {
	return filepath.Join(o.ResolveConfigDir(), "settings.json")
}
