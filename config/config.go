package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ShellConfig selects the shell process spawned behind the PTY.
type ShellConfig struct {
	// Path to the shell binary (empty = the user's login shell).
	Path string `toml:"path"`
	// SourceRC controls whether the shell sources its rc files.
	SourceRC bool `toml:"source_rc"`
	// AdditionalEnv adds environment variables to the shell.
	AdditionalEnv map[string]string `toml:"env"`
}

// TerminalConfig holds emulation defaults.
type TerminalConfig struct {
	// Cols/Rows are the initial dimensions when the host can't probe
	// its controlling TTY.
	Cols int `toml:"cols"`
	Rows int `toml:"rows"`
	// Term is the TERM value exported to the shell.
	Term string `toml:"term"`
	// Scrollback caps the retained history rows; 0 disables scrollback.
	Scrollback int `toml:"scrollback"`
}

// Config is the top-level TOML configuration.
type Config struct {
	Shell    ShellConfig    `toml:"shell"`
	Terminal TerminalConfig `toml:"terminal"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			SourceRC:      true,
			AdditionalEnv: map[string]string{},
		},
		Terminal: TerminalConfig{
			Cols:       80,
			Rows:       24,
			Term:       "xterm-256color",
			Scrollback: 1000,
		},
	}
}

// Path returns the config file location under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "talonterm", "config.toml"), nil
}

// Load reads the config file, falling back to defaults when it doesn't
// exist. Missing keys keep their default values.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	path, err := Path()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Terminal.Cols < 1 {
		cfg.Terminal.Cols = 80
	}
	if cfg.Terminal.Rows < 1 {
		cfg.Terminal.Rows = 24
	}
	if cfg.Terminal.Term == "" {
		cfg.Terminal.Term = "xterm-256color"
	}
	if cfg.Terminal.Scrollback < 0 {
		cfg.Terminal.Scrollback = 1000
	}
	return cfg, nil
}

// Save writes the config back to disk, creating the directory as needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
