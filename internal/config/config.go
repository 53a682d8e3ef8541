// Package config loads protimer's file configuration. Settings that users
// change while the app runs live in the database instead.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvHome overrides the default ~/.protimer home directory.
const EnvHome = "PROTIMER_HOME"

// Duration is a time.Duration written as "5s" or "100ms" in yaml.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	PollInterval         Duration `yaml:"poll_interval"`
	FrameInterval        Duration `yaml:"frame_interval"`
	IdleCheckInterval    Duration `yaml:"idle_check_interval"`
	IdleThreshold        Duration `yaml:"idle_threshold"`
	ConvergenceTolerance Duration `yaml:"convergence_tolerance"`
	FetchTimeout         Duration `yaml:"fetch_timeout"`
}

// Default returns the configuration used when no file exists, rooted at home.
func Default(home string) Config {
	return Config{
		DataDir:              home,
		DBPath:               filepath.Join(home, "data.db"),
		LogFile:              filepath.Join(home, "protimer.log"),
		LogLevel:             "info",
		PollInterval:         Duration(5 * time.Second),
		FrameInterval:        Duration(100 * time.Millisecond),
		IdleCheckInterval:    Duration(10 * time.Second),
		IdleThreshold:        Duration(5 * time.Minute),
		ConvergenceTolerance: Duration(time.Second),
		FetchTimeout:         Duration(10 * time.Second),
	}
}

// Home returns $PROTIMER_HOME, falling back to ~/.protimer.
func Home() (string, error) {
	if h := os.Getenv(EnvHome); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".protimer"), nil
}

// Load reads path over the defaults for home. A missing file is not an
// error. Relative paths in the file resolve against home.
func Load(home, path string) (Config, error) {
	cfg := Default(home)
	if path == "" {
		path = filepath.Join(home, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.DataDir = resolve(home, cfg.DataDir)
	cfg.DBPath = resolve(cfg.DataDir, cfg.DBPath)
	if cfg.LogFile != "" {
		cfg.LogFile = resolve(cfg.DataDir, cfg.LogFile)
	}
	return cfg, cfg.Validate()
}

func resolve(base, p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, err := os.UserHomeDir(); err == nil {
			return filepath.Join(h, p[2:])
		}
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate rejects configurations the run loop cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	for name, d := range map[string]Duration{
		"poll_interval":         c.PollInterval,
		"frame_interval":        c.FrameInterval,
		"idle_check_interval":   c.IdleCheckInterval,
		"idle_threshold":        c.IdleThreshold,
		"convergence_tolerance": c.ConvergenceTolerance,
		"fetch_timeout":         c.FetchTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d.Std()))
		}
	}
	if c.FrameInterval > 0 && c.FrameInterval.Std() > time.Second {
		errs = append(errs, fmt.Errorf("frame_interval %s would skip displayed seconds", c.FrameInterval.Std()))
	}
	return errors.Join(errs...)
}
