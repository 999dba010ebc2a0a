package main

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
)

func newSettings(cfg config.Config) wm.Settings {
	bindings := make([]wm.Binding, 0, len(cfg.Bindings))
	for _, b := range cfg.Bindings {
		bindings = append(bindings, wm.Binding{Keys: b.Keys, Command: b.Command})
	}

	return wm.Settings{
		Retries:      cfg.LayoutRetries,
		FloatingStep: cfg.FloatingStep,
		ResizeStep:   cfg.ResizeStep,
		Direction:    cfg.ScreenDirection(),
		Bindings:     bindings,
	}
}

// newLoader reads the config file again on every reload.
func newLoader(store config.Store) wm.Loader {
	return func() (wm.Settings, error) {
		cfg, err := store.GetConfig()
		if err != nil {
			return wm.Settings{}, err
		}
		return newSettings(cfg), nil
	}
}
