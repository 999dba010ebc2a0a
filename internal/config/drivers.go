package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown config format")

// NewDriver picks a driver from the extension of filePath.
func NewDriver(filePath string) (Driver, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return NewYAML(filePath), nil
	case ".json":
		return NewJSON(filePath), nil
	case ".toml":
		return NewTOML(filePath), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filePath)
	}
}

type (
	decodeFunc func(r io.Reader, cfg *Config) error
	encodeFunc func(w io.Writer, cfg Config) error
)

// file reads and writes one config file. Writes go to a temporary file
// that is then renamed over it.
type file struct {
	filePath string
	decode   decodeFunc
	encode   encodeFunc
}

func (f file) Path() string {
	return f.filePath
}

// Exists implements Driver.
func (f file) Exists() (bool, error) {
	return core.FileExists(f.filePath)
}

func (f file) Read() (Config, error) {
	fd, err := os.Open(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer fd.Close()

	var cfg Config
	if err := f.decode(fd, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", f.filePath, err)
	}
	return cfg, nil
}

func (f file) Write(cfg Config) error {
	filePathTmp := f.filePath + ".tmp"
	fd, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := f.encode(fd, cfg); err != nil {
		fd.Close()
		return fmt.Errorf("encode %s: %w", f.filePath, err)
	}
	if err := fd.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, f.filePath)
}

type YAML struct{ file }

func NewYAML(filePath string) YAML {
	return YAML{file{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			err := yaml.NewDecoder(r).Decode(cfg)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		},
		encode: func(w io.Writer, cfg Config) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}}
}

type JSON struct{ file }

func NewJSON(filePath string) JSON {
	return JSON{file{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			return json.NewDecoder(r).Decode(cfg)
		},
		encode: func(w io.Writer, cfg Config) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}}
}

type TOML struct{ file }

func NewTOML(filePath string) TOML {
	return TOML{file{
		filePath: filePath,
		decode: func(r io.Reader, cfg *Config) error {
			return toml.NewDecoder(r).Decode(cfg)
		},
		encode: func(w io.Writer, cfg Config) error {
			return toml.NewEncoder(w).Encode(cfg)
		},
	}}
}
