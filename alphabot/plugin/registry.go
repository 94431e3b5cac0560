package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
)

// ErrDuplicateName reports a command whose name or alias collides with an
// already registered one.
var ErrDuplicateName = errors.New("plugin: duplicate command name")

// ErrNotFound reports an unknown command name.
var ErrNotFound = errors.New("plugin: command not found")

// Registry holds every loaded command, message handler, and thread-log event
// handler. Lookups are concurrent; mutation happens at load time and through
// Reload.
type Registry struct {
	mu              sync.RWMutex
	commands        map[string]*Command
	aliases         map[string]string // alias -> command name
	messageHandlers []MessageHandler
	logHandlers     map[string]*LogEventHandler
	removeHook      func(name string)
}

func NewRegistry() *Registry {
	return &Registry{
		commands:    make(map[string]*Command),
		aliases:     make(map[string]string),
		logHandlers: make(map[string]*LogEventHandler),
	}
}

// Register adds cmd, failing if its name or any alias collides with an
// existing command or alias.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil || cmd.Name == "" {
		return errors.New("plugin: command without a name")
	}
	if cmd.Run == nil {
		return fmt.Errorf("plugin: command %q has no handler", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkCollisions(cmd); err != nil {
		return err
	}
	r.insertLocked(cmd)

	slog.Debug("Registered command",
		slog.String("type", "sys"),
		slog.String("command", cmd.Name),
		slog.Int("aliases", len(cmd.Aliases)))
	return nil
}

func (r *Registry) checkCollisions(cmd *Command) error {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, name := range names {
		if _, exists := r.commands[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		if owner, exists := r.aliases[name]; exists {
			return fmt.Errorf("%w: %q (alias of %q)", ErrDuplicateName, name, owner)
		}
	}
	return nil
}

func (r *Registry) insertLocked(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
}

func (r *Registry) removeLocked(name string) {
	cmd, exists := r.commands[name]
	if !exists {
		return
	}
	delete(r.commands, name)
	for _, alias := range cmd.Aliases {
		delete(r.aliases, alias)
	}
}

// Resolve finds a command by name or alias. An exact name match takes
// precedence over an alias match.
func (r *Registry) Resolve(nameOrAlias string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[nameOrAlias]; ok {
		return cmd, true
	}
	if name, ok := r.aliases[nameOrAlias]; ok {
		return r.commands[name], true
	}
	return nil, false
}

// GetConfig returns the command record by exact name, or nil.
func (r *Registry) GetConfig(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// SetRemoveHook registers fn to run whenever a command is unregistered, so
// external per-command state (cooldowns) can be dropped with it. Reload does
// not fire the hook: the name stays registered across the swap.
func (r *Registry) SetRemoveHook(fn func(name string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeHook = fn
}

// Unregister removes a command and all its aliases.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	_, existed := r.commands[name]
	r.removeLocked(name)
	hook := r.removeHook
	r.mu.Unlock()

	if existed && hook != nil {
		hook(name)
	}
}

// Reload atomically replaces one command: the old record and its aliases are
// fully removed before the new one is inserted, under a single lock.
func (r *Registry) Reload(cmd *Command) error {
	if cmd == nil || cmd.Name == "" {
		return errors.New("plugin: command without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	old, existed := r.commands[cmd.Name]
	r.removeLocked(cmd.Name)
	if err := r.checkCollisions(cmd); err != nil {
		if existed {
			r.insertLocked(old)
		}
		return err
	}
	r.insertLocked(cmd)
	return nil
}

// Names returns all command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commands returns every registered command, sorted by name.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Suggest fuzzy-matches input against command names and aliases for the
// command-not-found reply.
func (r *Registry) Suggest(input string) string {
	r.mu.RLock()
	candidates := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		candidates = append(candidates, name)
	}
	for alias := range r.aliases {
		candidates = append(candidates, alias)
	}
	r.mu.RUnlock()

	sort.Strings(candidates)
	matches := fuzzy.Find(input, candidates)
	if len(matches) > 0 {
		return matches[0].Str
	}

	// Subsequence matching misses transpositions ("pign"), so fall back to
	// edit distance for near misses.
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(input, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// maxSuggestDistance bounds how far a typo may be from a command name before
// the not-found reply stops suggesting anything.
const maxSuggestDistance = 2

// RegisterMessageHandler appends a handler run for every plain message.
func (r *Registry) RegisterMessageHandler(h MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messageHandlers = append(r.messageHandlers, h)
}

// MessageHandlers returns the registered message handlers in order.
func (r *Registry) MessageHandlers() []MessageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handlers := make([]MessageHandler, len(r.messageHandlers))
	copy(handlers, r.messageHandlers)
	return handlers
}

// RegisterLogEvent binds a handler to one thread-log event type.
func (r *Registry) RegisterLogEvent(logType string, h *LogEventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logHandlers[logType] = h
}

// LogEvent returns the handler for logType, if one is mapped.
func (r *Registry) LogEvent(logType string) (*LogEventHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.logHandlers[logType]
	return h, ok
}
