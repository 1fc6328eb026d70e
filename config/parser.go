// Package config contains the torhttp configuration file.
//
// The configuration file is JSON where comments and trailing commas
// are allowed. Missing fields take their default values.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// ReadConfig reads the configuration from the path
func ReadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := ParseConfig(b)
	if err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	c.path = path
	return c, nil
}

// ParseConfig returns config from JSON bytes.
func ParseConfig(b []byte) (*Config, error) {
	var c Config

	value, err := hujson.Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}
	value.Standardize()
	if err := json.Unmarshal(value.Pack(), &c); err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}

	if err := c.Default(); err != nil {
		return nil, errors.Wrap(err, "defaulting")
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating")
	}

	return &c, nil
}

// New returns the default config.
func New() *Config {
	c := &Config{}
	_ = c.Default() // cannot fail
	return c
}

// Config for torhttp
type Config struct {
	Comment string `json:"_"`

	Tunnel         Tunnel         `json:"tunnel"`
	DirectoryCache DirectoryCache `json:"directory_cache"`
	Framing        Framing        `json:"framing"`
	Transport      Transport      `json:"transport"`

	path string
}

// Path returns the path from which we read the config, if any.
func (c *Config) Path() string {
	return c.path
}

// Default config settings
func (c *Config) Default() error {
	c.Framing.setDefaults()
	c.Transport.setDefaults()
	return nil
}

// Validate the config file
func (c *Config) Validate() error {
	if err := c.Framing.validate(); err != nil {
		return err
	}
	return c.Transport.validate()
}
