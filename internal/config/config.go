// Package config loads the window manager settings from a YAML, JSON or TOML file.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

type Driver interface {
	Path() string
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// DefaultPath returns the config file under the XDG config directory.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("x-tilewm", "config.yaml"))
}

// NewStore opens the store and writes the default config when the file is missing.
func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(Default()); err != nil {
			return Store{}, fmt.Errorf("write default config: %w", err)
		}
	}

	return Store{
		driver: driver,
	}, nil
}

// Open picks a driver for filePath and opens a store on it.
func Open(filePath string) (Store, error) {
	filePath, err := filepath.Abs(filePath)
	if err != nil {
		return Store{}, err
	}

	driver, err := NewDriver(filePath)
	if err != nil {
		return Store{}, err
	}

	return NewStore(driver)
}

type Store struct {
	driver Driver
}

func (p Store) Path() string {
	return p.driver.Path()
}

// GetConfig reads and normalizes the config.
func (p Store) GetConfig() (Config, error) {
	cfg, err := p.driver.Read()
	if err != nil {
		return Config{}, err
	}
	return cfg.Normalize()
}

func (p Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return p.driver.Write(cfg)
}
