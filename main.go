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
	"github.com/alphabot-dev/alphabot/alphabot/commands"
	"github.com/alphabot-dev/alphabot/alphabot/events"
	"github.com/alphabot-dev/alphabot/alphabot/logger"
	"github.com/alphabot-dev/alphabot/alphabot/services"
	"github.com/alphabot-dev/alphabot/alphabot/transport/bridge"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.toml", "path to config file")
	flag.Parse()

	handler := logger.NewHandler("Alphabot")
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting Alphabot",
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := alphabot.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	handler.SetLevel(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chat, err := connect(ctx, cfg)
	if err != nil {
		slog.Warn("Chat client connection failed, retrying once",
			slog.String("error", err.Error()))
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			os.Exit(1)
		}
		chat, err = connect(ctx, cfg)
	}
	if err != nil {
		slog.Error("Chat client connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	b := alphabot.New(*cfg, version, commit)

	setupCtx, setupCancel := context.WithTimeout(ctx, 30*time.Second)
	err = b.Setup(setupCtx, chat)
	setupCancel()
	if err != nil {
		slog.Error("Bot setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userInfo := services.NewUserInfoService(chat)
	if err := commands.Register(b.Registry, commands.Deps{
		StartedAt: b.StartedAt,
		Prefix:    cfg.Bot.Prefix,
		Registry:  b.Registry,
		Users:     userInfo,
	}); err != nil {
		slog.Error("Command registration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	events.Register(b.Registry, cfg.Bot.Prefix)

	if cfg.Backup.Enabled {
		backup, err := services.NewBackupService(services.BackupConfig{
			Key:      cfg.Backup.Key,
			Secret:   cfg.Backup.Secret,
			Region:   cfg.Backup.Region,
			Bucket:   cfg.Backup.Bucket,
			Endpoint: cfg.Backup.Endpoint,
			Prefix:   cfg.Backup.Prefix,
		}, b.Store)
		if err != nil {
			slog.Error("Backup service init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
		b.BPM.StartTicker("database-backup", interval, func(ctx context.Context) {
			if err := backup.Backup(ctx); err != nil {
				slog.Error("Database backup failed",
					slog.String("type", "db"),
					slog.String("error", err.Error()))
			}
		})
	}

	slog.Info("Bot is now running. Press CTRL-C to exit.",
		slog.String("type", "sys"),
		slog.Int("commands", len(b.Registry.Names())))

	runErr := b.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := chat.Logout(shutdownCtx); err != nil {
		slog.Warn("Chat client logout failed", slog.String("error", err.Error()))
	}
	b.Shutdown(shutdownCtx)

	if runErr != nil {
		slog.Error("Bot exited with error", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
	slog.Info("Shutdown complete", slog.String("type", "sys"))
}

func connect(ctx context.Context, cfg *alphabot.Config) (*bridge.Bridge, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return bridge.Connect(connectCtx, bridge.Options{
		Command:      cfg.Bot.ClientCommand,
		Args:         cfg.Bot.ClientArgs,
		AppStatePath: cfg.Bot.AppStatePath,
	})
}
