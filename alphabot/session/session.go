// Package session holds per-thread/per-user ephemeral dispatch state:
// command cooldowns, single-shot reply/reaction waiters, and cancellation
// tokens for long-running handler loops. Nothing here is persisted.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/transport"
	"github.com/alphabot-dev/alphabot/alphabot/utils"
)

// Kind selects which waiter table a record lives in.
type Kind string

const (
	KindReply    Kind = "reply"
	KindReaction Kind = "reaction"
)

const (
	// DefaultWaiterTTL bounds how long a follow-up is awaited.
	DefaultWaiterTTL = 60 * time.Second

	sweepInterval = 60 * time.Second
)

// WaiterFunc is invoked with the follow-up event that matched the waiter.
type WaiterFunc func(ev transport.Event) error

// Waiter is a registered callback awaiting a reaction or reply to a
// previously sent message.
type Waiter struct {
	Name       string
	AuthorID   string
	AuthorOnly bool
	ExpiresAt  time.Time
	Callback   WaiterFunc
}

func (w *Waiter) expired(now time.Time) bool {
	return !w.ExpiresAt.IsZero() && now.After(w.ExpiresAt)
}

// Store is the in-memory session state. Safe for concurrent use.
type Store struct {
	cooldowns sync.Map // "command\x00user" -> time.Time
	replies   sync.Map // messageID -> *Waiter
	reactions sync.Map // messageID -> *Waiter

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewStore() *Store {
	return &Store{cancels: make(map[string]context.CancelFunc)}
}

func cooldownKey(command, userID string) string {
	return command + "\x00" + userID
}

// CheckCooldown reports whether the (command, user) pair may run now. A zero
// cooldown is always ready. Checking never arms the cooldown; callers arm it
// with SetCooldown after dispatch.
func (s *Store) CheckCooldown(command, userID string, seconds int) (ready bool, remaining time.Duration) {
	if seconds <= 0 {
		return true, 0
	}
	v, ok := s.cooldowns.Load(cooldownKey(command, userID))
	if !ok {
		return true, 0
	}
	expires := v.(time.Time)
	if time.Now().Before(expires) {
		return false, time.Until(expires)
	}
	return true, 0
}

// SetCooldown arms the cooldown window for the (command, user) pair.
func (s *Store) SetCooldown(command, userID string, seconds int) {
	if seconds <= 0 {
		return
	}
	s.cooldowns.Store(cooldownKey(command, userID), time.Now().Add(time.Duration(seconds)*time.Second))
}

// PurgeCooldowns drops every user's cooldown entry for command. Called when a
// command is unregistered so no cooldown key outlives its command.
func (s *Store) PurgeCooldowns(command string) {
	prefix := command + "\x00"
	s.cooldowns.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			s.cooldowns.Delete(key)
		}
		return true
	})
}

func (s *Store) waiters(kind Kind) *sync.Map {
	if kind == KindReaction {
		return &s.reactions
	}
	return &s.replies
}

// AddWaiter registers a single-shot waiter for messageID. A nil callback is
// a no-op: malformed plugin registrations must not take the table down.
func (s *Store) AddWaiter(kind Kind, messageID string, w *Waiter, ttl time.Duration) {
	if w == nil || w.Callback == nil {
		slog.Warn("Ignoring waiter without callback",
			slog.String("kind", string(kind)),
			slog.String("message_id", messageID))
		return
	}
	if ttl <= 0 {
		ttl = DefaultWaiterTTL
	}
	w.ExpiresAt = time.Now().Add(ttl)
	s.waiters(kind).Store(messageID, w)
}

// ConsumeWaiter removes and returns the waiter for messageID, or nil if none
// is registered or it has already expired. A record is handed out at most
// once.
func (s *Store) ConsumeWaiter(kind Kind, messageID string) *Waiter {
	v, ok := s.waiters(kind).LoadAndDelete(messageID)
	if !ok {
		return nil
	}
	w := v.(*Waiter)
	if w.expired(time.Now()) {
		return nil
	}
	return w
}

// WithCancel creates a cancellation token under key. It reports false when a
// loop already runs under that key. Deleting the token via Cancel is the only
// way to stop a cooperative handler loop.
func (s *Store) WithCancel(parent context.Context, key string) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cancels[key]; exists {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancels[key] = cancel
	return ctx, true
}

// Cancel stops the loop registered under key.
func (s *Store) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, exists := s.cancels[key]
	if !exists {
		return false
	}
	cancel()
	delete(s.cancels, key)
	return true
}

// Release drops the token without cancelling; loops call this on exit.
func (s *Store) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, exists := s.cancels[key]; exists {
		cancel()
		delete(s.cancels, key)
	}
}

// Active reports whether a loop runs under key.
func (s *Store) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.cancels[key]
	return exists
}

// StartSweeper arms the periodic cleanup of expired cooldowns and waiters.
func (s *Store) StartSweeper(bpm *utils.BackgroundProcessManager) {
	bpm.StartTicker("session-sweeper", sweepInterval, func(context.Context) {
		s.sweep(time.Now())
	})
}

func (s *Store) sweep(now time.Time) {
	s.cooldowns.Range(func(key, value any) bool {
		if now.After(value.(time.Time)) {
			s.cooldowns.Delete(key)
		}
		return true
	})
	for _, m := range []*sync.Map{&s.replies, &s.reactions} {
		m.Range(func(key, value any) bool {
			if value.(*Waiter).expired(now) {
				m.Delete(key)
			}
			return true
		})
	}
}
