package plugin

import (
	"errors"
	"fmt"
)

// Plugin sources historically came in several shapes: a config block paired
// with a handler named run, onStart, or Running, and either a permission
// list or a single legacy hasPermssion level. Adapt normalizes any supported
// shape into one canonical Command so the dispatcher only ever sees one
// form. New source shapes go here and nowhere else.

// Spec is a raw plugin definition before normalization.
type Spec struct {
	Config SpecConfig

	// Exactly one of these should be set; Run wins, then OnStart, then
	// Running.
	Run     HandlerFunc
	OnStart HandlerFunc
	Running HandlerFunc
}

// SpecConfig mirrors the loosely-typed config block of a plugin source.
type SpecConfig struct {
	Name        string
	Aliases     []string
	Version     string
	Credits     string
	Description string
	Usage       string
	Category    string

	// Permissions is the canonical required-level list.
	Permissions []int

	// HasPermssion is the legacy single-level field (spelling preserved from
	// the old plugin format).
	HasPermssion *int

	Cooldowns int
	NSFW      bool
}

// ErrNoHandler reports a plugin spec without any runnable body.
var ErrNoHandler = errors.New("plugin: spec has no handler")

// Adapt converts a raw plugin spec into the canonical Command record.
func Adapt(s Spec) (*Command, error) {
	if s.Config.Name == "" {
		return nil, errors.New("plugin: spec without a name")
	}

	run := s.Run
	if run == nil {
		run = s.OnStart
	}
	if run == nil {
		run = s.Running
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoHandler, s.Config.Name)
	}

	levels := s.Config.Permissions
	if len(levels) == 0 && s.Config.HasPermssion != nil {
		levels = []int{*s.Config.HasPermssion}
	}
	if len(levels) == 0 {
		levels = []int{0}
	}

	cooldown := s.Config.Cooldowns
	if cooldown < 0 {
		cooldown = 0
	}

	return &Command{
		Name:             s.Config.Name,
		Aliases:          s.Config.Aliases,
		Description:      s.Config.Description,
		Usage:            s.Config.Usage,
		Category:         s.Config.Category,
		PermissionLevels: levels,
		CooldownSeconds:  cooldown,
		NSFW:             s.Config.NSFW,
		Run:              run,
	}, nil
}

// MustAdapt is Adapt for statically known built-ins.
func MustAdapt(s Spec) *Command {
	cmd, err := Adapt(s)
	if err != nil {
		panic(err)
	}
	return cmd
}
