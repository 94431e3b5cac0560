package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

const captureTimeout = 120 * time.Second

// CaptureAppState logs into Facebook with a headless browser and exports
// the resulting cookie jar as an appstate. This is the fallback for users
// without a browser extension to dump cookies.
func CaptureAppState(ctx context.Context, email, password string) (transport.AppState, error) {
	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, captureTimeout)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate("https://www.facebook.com/login"),
		chromedp.WaitVisible(`#email`, chromedp.ByID),
		chromedp.SendKeys(`#email`, email, chromedp.ByID),
		chromedp.SendKeys(`#pass`, password, chromedp.ByID),
		chromedp.Click(`button[name="login"]`, chromedp.ByQuery),
		// Checkpoint pages keep the c_user cookie off; waiting on the feed
		// root distinguishes a real login from a 2FA prompt.
		chromedp.WaitVisible(`div[role="feed"], div[role="main"]`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless login failed: %w", err)
	}

	now := time.Now()
	var state transport.AppState
	for _, c := range cookies {
		if !strings.Contains(c.Domain, "facebook.com") {
			continue
		}
		state = append(state, transport.Cookie{
			Key:          c.Name,
			Value:        c.Value,
			Domain:       c.Domain,
			Path:         c.Path,
			HostOnly:     !strings.HasPrefix(c.Domain, "."),
			Creation:     now,
			LastAccessed: now,
		})
	}

	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("captured cookies do not form a valid session: %w", err)
	}

	slog.Info("Appstate captured via headless login",
		slog.String("type", "sys"),
		slog.String("user_id", state.UserID()),
		slog.Int("cookies", len(state)))
	return state, nil
}
