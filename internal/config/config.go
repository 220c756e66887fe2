package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yiyi75/careerquest/internal/theme"
)

type Config struct {
	Version  string   `yaml:"version" json:"version"`
	Server   Server   `yaml:"server" json:"server"`
	Timezone string   `yaml:"timezone" json:"timezone"`
	Leveling Leveling `yaml:"leveling" json:"leveling"`
	Storage  Storage  `yaml:"storage" json:"storage"`
	Themes   []Theme  `yaml:"themes" json:"themes"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Leveling struct {
	XPPerLevel int `yaml:"xp_per_level" json:"xp_per_level"`
	BaseTaskXP int `yaml:"base_task_xp" json:"base_task_xp"`
	MinTaskXP  int `yaml:"min_task_xp" json:"min_task_xp"`
}

type Storage struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
	Redis   Redis  `yaml:"redis" json:"redis"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
}

type Theme struct {
	Name        string          `yaml:"name" json:"name"`
	DisplayName string          `yaml:"display_name" json:"display_name"`
	Condition   *ThemeCondition `yaml:"condition" json:"condition,omitempty"`
}

type ThemeCondition struct {
	Metric    string `yaml:"metric" json:"metric"`
	Threshold int    `yaml:"threshold" json:"threshold"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Leveling.XPPerLevel <= 0 {
		c.Leveling.XPPerLevel = 200
	}
	if c.Leveling.BaseTaskXP <= 0 {
		c.Leveling.BaseTaskXP = 100
	}
	if c.Leveling.MinTaskXP <= 0 {
		c.Leveling.MinTaskXP = 25
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
}

func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}

// Location resolves the configured timezone. Empty means the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ThemeCatalog returns the configured catalog, or the built-in one when the
// config does not override it. Entries with unknown metrics are dropped.
func (c *Config) ThemeCatalog() []theme.Theme {
	if len(c.Themes) == 0 {
		return theme.Catalog()
	}
	out := make([]theme.Theme, 0, len(c.Themes))
	for _, t := range c.Themes {
		entry := theme.Theme{Name: t.Name, DisplayName: t.DisplayName}
		if entry.DisplayName == "" {
			entry.DisplayName = entry.Name
		}
		if t.Condition != nil {
			m := theme.Metric(t.Condition.Metric)
			if !m.IsValid() {
				continue
			}
			entry.Condition = &theme.Condition{Metric: m, Threshold: t.Condition.Threshold}
		}
		out = append(out, entry)
	}
	return out
}
