package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/ItsNotGoodName/x-tilewm/internal/api"
	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/ItsNotGoodName/x-tilewm/internal/xwm"
	"github.com/ItsNotGoodName/x-tilewm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug   bool   `doc:"enable debug"`
	Host    string `doc:"host to listen on" default:"127.0.0.1"`
	Port    int    `doc:"port to listen on" default:"8080"`
	Config  string `doc:"config file, defaults to $XDG_CONFIG_HOME/x-tilewm/config.yaml"`
	Display string `doc:"X display, defaults to $DISPLAY"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)
			return run(ctx, options)
		})
	})

	cli.Root().Use = "x-tilewm"
	cli.Root().Version = build.Current.String()
	cli.Root().AddCommand(newSendCommand(), newTreeCommand())

	cli.Run()
}

func run(ctx context.Context, options *Options) error {
	configFilePath := options.Config
	if configFilePath == "" {
		var err error
		configFilePath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	store, err := config.Open(configFilePath)
	if err != nil {
		return err
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}
	slog.Info("Loaded config", "path", store.Path(), "desktops", cfg.Desktops)

	x, err := xwm.Connect(options.Display)
	if err != nil {
		return err
	}
	defer x.Close()

	if err := x.BecomeWM(); err != nil {
		return err
	}

	collection, err := tree.NewCollection(tree.NewFactory(xwm.NewSource(x)), cfg.Desktops, x.Screens(), cfg.ScreenDirection())
	if err != nil {
		return err
	}

	settings := newSettings(cfg)
	manager := wm.New(collection, settings, newLoader(store))

	keys := xwm.NewKeymap()
	if err := keys.Grab(x, settings.Bindings); err != nil {
		slog.Warn("Some keys could not be grabbed", "error", err)
	}
	keys.GrabOnReload(x)

	handler := api.NewHandler(manager, api.NewStatus().Register(), api.NewEvents())

	super := sutureext.NewSimple("x-tilewm")
	sutureext.Add(super, manager)
	display := sutureext.NewChild(super, "xwm")
	sutureext.Add(display, xwm.NewReceiver(x, keys, manager))
	sutureext.Add(display, sutureext.NewOnce("xwm.Adopt", func(ctx context.Context) error {
		return xwm.Adopt(ctx, x, manager)
	}))
	sutureext.Add(super, api.NewServer(core.Address(options.Host, options.Port), api.NewRouter(handler)))
	sutureext.Add(super, config.NewWatcher(store.Path(), func(ctx context.Context) {
		if _, err := manager.Enqueue(ctx, wm.CommandReload{}); err != nil {
			slog.Error("Failed to enqueue reload", "error", err)
		}
	}))

	return super.Serve(ctx)
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
