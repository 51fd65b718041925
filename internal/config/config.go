// Package config loads and validates the YAML configuration file that
// carries the rule set and runtime settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"kondo/pkg/types"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration: declarative rules plus settings for
// the surrounding tooling.
type Config struct {
	Rules    []types.Rule `yaml:"rules"`
	Settings struct {
		DryRun   bool     `yaml:"dry_run"`   // simulate, never touch the filesystem
		TrashDir string   `yaml:"trash_dir"` // recoverable trash location
		LogDir   string   `yaml:"log_dir"`   // where execution/undo logs are written
		Watch    []string `yaml:"watch"`     // roots observed by `kondo watch`
	} `yaml:"settings"`
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig()
}

// Load reads configuration from the default location
// (~/.config/kondo/config.yaml).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(home, ".config", "kondo", "config.yaml"))
}

// LoadFile reads configuration from path. A missing file returns defaults.
func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if len(loaded.Rules) > 0 {
		cfg.Rules = loaded.Rules
	}
	cfg.Settings.DryRun = loaded.Settings.DryRun
	if loaded.Settings.TrashDir != "" {
		cfg.Settings.TrashDir = loaded.Settings.TrashDir
	}
	if loaded.Settings.LogDir != "" {
		cfg.Settings.LogDir = loaded.Settings.LogDir
	}
	if len(loaded.Settings.Watch) > 0 {
		cfg.Settings.Watch = loaded.Settings.Watch
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every rule for structural problems. All problems are
// collected so a config file can be fixed in one pass.
func (c *Config) Validate() []error {
	var errs []error
	seen := make(map[string]bool)
	for i, r := range c.Rules {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("rule #%d", i+1)
			errs = append(errs, fmt.Errorf("%s: rule name is required", label))
		}
		if seen[r.Name] && r.Name != "" {
			errs = append(errs, fmt.Errorf("%s: duplicate rule name", label))
		}
		seen[r.Name] = true

		for _, cond := range r.Conditions {
			if err := validateCondition(cond); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", label, err))
			}
		}
		if err := validateOutcome(r.Outcome); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}
	return errs
}

func validateCondition(c types.Condition) error {
	switch c.Kind {
	case types.ExtensionEquals, types.NameContains:
		if c.Value == "" {
			return fmt.Errorf("condition %s requires a value", c.Kind)
		}
	case types.NameMatchesGlob:
		if _, err := glob.Compile(c.Value); err != nil {
			return fmt.Errorf("condition %s has an invalid pattern %q: %w", c.Kind, c.Value, err)
		}
	case types.SizeGreaterThan:
		if c.Threshold < 0 {
			return fmt.Errorf("condition %s requires a non-negative threshold", c.Kind)
		}
	case types.CreatedBefore, types.ModifiedBefore:
		if c.Cutoff == nil {
			return fmt.Errorf("condition %s requires a cutoff time", c.Kind)
		}
	case types.IsDirectory:
		// no payload
	default:
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	return nil
}

func validateOutcome(o types.Outcome) error {
	switch o.Kind {
	case types.OutcomeMove, types.OutcomeCopy:
		if o.Destination == "" {
			return fmt.Errorf("outcome %s requires a destination", o.Kind)
		}
	case types.OutcomeRename:
		if o.Prefix == "" && o.Suffix == "" {
			return fmt.Errorf("outcome rename requires a prefix or a suffix")
		}
	case types.OutcomeDelete, types.OutcomeSkip:
		// no payload required
	default:
		return fmt.Errorf("unknown outcome kind %q", o.Kind)
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg.Settings.TrashDir = filepath.Join(home, ".local", "share", "kondo", "trash")
	cfg.Settings.LogDir = filepath.Join(home, ".local", "share", "kondo", "logs")
	return cfg
}
