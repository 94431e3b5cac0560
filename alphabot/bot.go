// Package alphabot wires the bot together: config, storage, session state,
// permissions, the plugin registry, and the event dispatcher. Everything is
// passed explicitly; there are no ambient singletons.
package alphabot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alphabot-dev/alphabot/alphabot/database"
	"github.com/alphabot-dev/alphabot/alphabot/database/repositories"
	"github.com/alphabot-dev/alphabot/alphabot/dispatcher"
	"github.com/alphabot-dev/alphabot/alphabot/permissions"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
	"github.com/alphabot-dev/alphabot/alphabot/session"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
	"github.com/alphabot-dev/alphabot/alphabot/utils"
)

type Bot struct {
	Cfg     Config
	Version string
	Commit  string

	Chat       transport.ChatTransport
	Store      database.Store
	Threads    repositories.ThreadRepository
	Users      repositories.UserRepository
	Sessions   *session.Store
	Perms      *permissions.Resolver
	Registry   *plugin.Registry
	Dispatcher *dispatcher.Dispatcher
	BPM        *utils.BackgroundProcessManager

	StartedAt time.Time
}

func New(cfg Config, version, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Version:   version,
		Commit:    commit,
		Sessions:  session.NewStore(),
		Registry:  plugin.NewRegistry(),
		BPM:       utils.NewBackgroundProcessManager(),
		StartedAt: time.Now(),
	}
}

// Setup opens the store, validates the appstate, and builds the dispatch
// core around an already-connected chat transport. Any failure here is fatal
// to startup.
func (b *Bot) Setup(ctx context.Context, chat transport.ChatTransport) error {
	if chat == nil {
		return errors.New("alphabot: no chat transport")
	}
	b.Chat = chat

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store, err := database.Open(gctx, b.Cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		b.Store = store
		return nil
	})
	g.Go(func() error {
		if _, err := transport.LoadAppState(b.Cfg.Bot.AppStatePath); err != nil {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.Threads = repositories.NewThreadRepository(b.Store)
	b.Users = repositories.NewUserRepository(b.Store)
	b.Perms = permissions.NewResolver(b.Cfg.Bot.Absolutes, b.Cfg.Bot.Admins)

	denyPolicy := permissions.SilentDeny
	if b.Cfg.Bot.NotifyPermissionDenied {
		denyPolicy = permissions.NotifyDeny
	}
	b.Dispatcher = dispatcher.New(dispatcher.Config{
		Prefix:     b.Cfg.Bot.Prefix,
		DenyPolicy: denyPolicy,
	}, b.Registry, b.Sessions, b.Perms, b.Threads, b.Users, b.Chat)

	b.Registry.SetRemoveHook(b.Sessions.PurgeCooldowns)
	b.Sessions.StartSweeper(b.BPM)

	slog.Info("Bot core assembled",
		slog.String("type", "sys"),
		slog.String("bot_id", b.Chat.GetCurrentUserID()),
		slog.String("prefix", b.Cfg.Bot.Prefix),
		slog.Int("commands", len(b.Registry.Names())))
	return nil
}

// Run pumps transport events into the dispatcher until ctx ends. A listen
// failure gets exactly one reconnect attempt before the error propagates to
// the caller.
func (b *Bot) Run(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		err := b.Chat.Listen(ctx, func(ev transport.Event) {
			b.Dispatcher.HandleEvent(ctx, ev)
		})
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		if attempt >= 1 {
			return fmt.Errorf("listen failed after reconnect: %w", err)
		}
		slog.Warn("Listen failed, reconnecting once",
			slog.String("type", "sys"),
			slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
}

// Shutdown stops background work and closes the store.
func (b *Bot) Shutdown(ctx context.Context) {
	if err := b.BPM.Shutdown(10 * time.Second); err != nil {
		slog.Warn("Background processes did not stop cleanly",
			slog.String("error", err.Error()))
	}
	if b.Store != nil {
		if err := b.Store.Close(ctx); err != nil {
			slog.Warn("Failed to close store", slog.String("error", err.Error()))
		}
	}
}

// Uptime reports how long the process has been running.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.StartedAt)
}
