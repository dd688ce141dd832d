// Package config holds the file-based configuration schema. Values merge in
// precedence order: flags over environment over file over defaults.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Config is the single-file configuration schema.
type Config struct {
	// DBPath locates the SQLite library database.
	DBPath string `yaml:"dbPath"`
	// UserAgent is sent on every outbound document fetch.
	UserAgent string `yaml:"userAgent"`

	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Captions struct {
		Endpoint  string   `yaml:"endpoint"`
		Languages []string `yaml:"languages"`
	} `yaml:"captions"`

	Sentiment struct {
		// VADER enables real lexicon scoring instead of the placeholder.
		VADER bool `yaml:"vader"`
	} `yaml:"sentiment"`
}

// Default returns the baseline configuration.
func Default() Config {
	var c Config
	c.DBPath = "narratives.db"
	c.UserAgent = "narratives/1.0"
	c.LLM.Model = "gpt-3.5-turbo"
	return c
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// ApplyEnv overlays well-known environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NARRATIVES_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}
