package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot"
	"github.com/alphabot-dev/alphabot/alphabot/logger"
	"github.com/alphabot-dev/alphabot/alphabot/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.toml", "path to config file")
	flag.Parse()

	handler := logger.NewHandler("Panel")
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting Alphabot panel",
		slog.String("type", "web"),
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := alphabot.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handler.SetLevel(cfg.Log.Level)

	botArgs := cfg.Web.BotArgs
	if len(botArgs) == 0 {
		botArgs = []string{"-config", configPath}
	}
	launcher := web.NewLauncher(cfg.Web.BotBinary, botArgs)
	server := web.NewServer(launcher, cfg.Bot.AppStatePath, version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.Web.Addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Panel server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-sig:
	}

	slog.Info("Shutting down panel", slog.String("type", "web"))
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Panel shutdown error", slog.String("error", err.Error()))
	}
}
