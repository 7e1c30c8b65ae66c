package main

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"weatherscreen/apis/geolocation"
	"weatherscreen/apis/weatherapi"
	"weatherscreen/cli"
	"weatherscreen/config"
	"weatherscreen/manager"
	"weatherscreen/storage"
)

//go:embed config.yaml
var configRaw []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := cli.New(build)
	if err != nil {
		slog.Error("new cli", "error", err)
		os.Exit(1)
	}

	if err = cmd.ExecuteContext(ctx); err != nil {
		slog.Error("exec", "error", err)
		os.Exit(1)
	}
}

func build(cmd *cobra.Command, opts ...manager.Option) (*manager.Manager, func() error, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configRaw, path)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	weatherApi := weatherapi.New(weatherapi.Config{
		BaseURL: cfg.WeatherAPI.BaseURL,
		APIKey:  cfg.WeatherAPI.APIKey,
		Timeout: cfg.WeatherAPI.Timeout,
		Logger:  logger,
	})

	var geo manager.Geolocation
	switch cfg.Geolocation.Provider {
	case "fixed":
		geo = geolocation.Fixed{
			Enabled: cfg.Geolocation.Enabled,
			Coordinates: manager.Coordinates{
				Latitude:  cfg.Geolocation.Latitude,
				Longitude: cfg.Geolocation.Longitude,
			},
		}
	default:
		geo = geolocation.New(geolocation.Config{
			Enabled: cfg.Geolocation.Enabled,
			BaseURL: cfg.Geolocation.BaseURL,
			Timeout: cfg.Geolocation.Timeout,
			Logger:  logger,
		})
	}

	store, err := storage.Open(storage.Config{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.Storage.Path,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}

	opts = append([]manager.Option{
		manager.WithLogger(logger),
		manager.WithForecastDays(cfg.WeatherAPI.Days),
		manager.WithDebounce(cfg.Search.Debounce),
		manager.WithMinQueryLength(cfg.Search.MinLength),
	}, opts...)

	weatherManager := manager.New(cmd.Context(), weatherApi, geo, store, opts...)

	release := func() error {
		weatherManager.Close()
		return store.Close()
	}

	return weatherManager, release, nil
}
