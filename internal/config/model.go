package config

import (
	"fmt"
	"strconv"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
)

const (
	MaxDesktops          = 10
	DefaultDesktops      = 9
	DefaultLayoutRetries = 2
	DefaultFloatingStep  = 20
	DefaultResizeStep    = 20
)

// Default returns the configuration written when no file exists.
func Default() Config {
	return Config{
		Desktops:      DefaultDesktops,
		LayoutRetries: DefaultLayoutRetries,
		FloatingStep:  DefaultFloatingStep,
		ResizeStep:    DefaultResizeStep,
		Direction:     mosaic.Horizontal.String(),
		Bindings:      defaultBindings(),
	}
}

type Config struct {
	Desktops      int       `json:"desktops" yaml:"desktops" toml:"desktops"`
	LayoutRetries int       `json:"layout_retries" yaml:"layout_retries" toml:"layout_retries"`
	FloatingStep  int       `json:"floating_step" yaml:"floating_step" toml:"floating_step"`
	ResizeStep    int       `json:"resize_step" yaml:"resize_step" toml:"resize_step"`
	Direction     string    `json:"direction" yaml:"direction" toml:"direction"`
	Bindings      []Binding `json:"bindings" yaml:"bindings" toml:"bindings"`
}

type Binding struct {
	Keys    string `json:"keys" yaml:"keys" toml:"keys"`
	Command string `json:"command" yaml:"command" toml:"command"`
}

// Normalize fills in defaults and clamps values into range.
func (c Config) Normalize() (Config, error) {
	if c.Desktops <= 0 {
		c.Desktops = DefaultDesktops
	}
	c.Desktops = min(c.Desktops, MaxDesktops)
	if c.LayoutRetries <= 0 {
		c.LayoutRetries = DefaultLayoutRetries
	}
	if c.FloatingStep <= 0 {
		c.FloatingStep = DefaultFloatingStep
	}
	if c.ResizeStep <= 0 {
		c.ResizeStep = DefaultResizeStep
	}
	if c.Direction == "" {
		c.Direction = mosaic.Horizontal.String()
	}
	if _, err := mosaic.ParseDirection(c.Direction); err != nil {
		return c, fmt.Errorf("direction: %w", err)
	}
	for i, b := range c.Bindings {
		if b.Keys == "" || b.Command == "" {
			return c, fmt.Errorf("binding %d: keys and command are required", i)
		}
	}
	return c, nil
}

// ScreenDirection returns the parsed direction, falling back to horizontal.
func (c Config) ScreenDirection() mosaic.Direction {
	dir, err := mosaic.ParseDirection(c.Direction)
	if err != nil {
		return mosaic.Horizontal
	}
	return dir
}

func defaultBindings() []Binding {
	bindings := []Binding{
		{Keys: "Mod4+h", Command: "focus left"},
		{Keys: "Mod4+j", Command: "focus down"},
		{Keys: "Mod4+k", Command: "focus up"},
		{Keys: "Mod4+l", Command: "focus right"},
		{Keys: "Mod4+Shift+h", Command: "move left"},
		{Keys: "Mod4+Shift+j", Command: "move down"},
		{Keys: "Mod4+Shift+k", Command: "move up"},
		{Keys: "Mod4+Shift+l", Command: "move right"},
		{Keys: "Mod4+v", Command: "split vertical"},
		{Keys: "Mod4+b", Command: "split horizontal"},
		{Keys: "Mod4+e", Command: "layout toggle split"},
		{Keys: "Mod4+f", Command: "fullscreen"},
		{Keys: "Mod4+Shift+space", Command: "floating toggle"},
		{Keys: "Mod4+Shift+q", Command: "kill"},
		{Keys: "Mod4+Shift+c", Command: "reload"},
		{Keys: "Mod4+Right", Command: "resize grow right"},
		{Keys: "Mod4+Left", Command: "resize shrink right"},
		{Keys: "Mod4+Down", Command: "resize grow down"},
		{Keys: "Mod4+Up", Command: "resize shrink down"},
	}
	for i := 1; i <= DefaultDesktops; i++ {
		key := strconv.Itoa(i)
		bindings = append(bindings,
			Binding{Keys: "Mod4+" + key, Command: "workspace number " + strconv.Itoa(i-1)},
			Binding{Keys: "Mod4+Shift+" + key, Command: "move workspace number " + strconv.Itoa(i-1)},
		)
	}
	return bindings
}
