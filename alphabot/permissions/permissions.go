// Package permissions computes a user's effective permission tags and checks
// them against the levels a command requires.
package permissions

import (
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

// Tag describes a user's authority in a thread or globally. The legacy
// "supper_admin" spelling is load-bearing: stored permission overrides carry
// it verbatim.
type Tag string

const (
	TagUser        Tag = "user"
	TagMod         Tag = "mod"
	TagThreadAdmin Tag = "thread_admin"
	TagAdmin       Tag = "admin"
	TagSupperAdmin Tag = "supper_admin"
)

// Set is an unordered collection of tags.
type Set map[Tag]struct{}

func NewSet(tags ...Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func fromStrings(tags []string) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[Tag(t)] = struct{}{}
	}
	return s
}

func (s Set) Has(t Tag) bool {
	_, ok := s[t]
	return ok
}

func (s Set) intersects(other Set) bool {
	for t := range s {
		if other.Has(t) {
			return true
		}
	}
	return false
}

// DenyPolicy names how a failed permission check surfaces to the user.
// Staying silent is the default: it avoids handing probing users a command
// enumeration oracle.
type DenyPolicy int

const (
	SilentDeny DenyPolicy = iota
	NotifyDeny
)

// levelTags maps a required integer level to the tag set that satisfies it.
// Level 0 is open to every resolved tag so privileged users are never locked
// out of plain commands; higher levels narrow to the matching authority tags.
var levelTags = map[int]Set{
	0: NewSet(TagUser, TagMod, TagThreadAdmin, TagAdmin, TagSupperAdmin),
	1: NewSet(TagMod, TagThreadAdmin, TagAdmin, TagSupperAdmin),
	2: NewSet(TagThreadAdmin, TagAdmin),
	3: NewSet(TagAdmin, TagSupperAdmin),
}

// Resolver computes effective permission sets from the global config lists
// and the stored thread/user records.
type Resolver struct {
	absolutes map[string]struct{}
	admins    map[string]struct{}
}

func NewResolver(absolutes, admins []string) *Resolver {
	r := &Resolver{
		absolutes: make(map[string]struct{}, len(absolutes)),
		admins:    make(map[string]struct{}, len(admins)),
	}
	for _, id := range absolutes {
		r.absolutes[id] = struct{}{}
	}
	for _, id := range admins {
		r.admins[id] = struct{}{}
	}
	return r
}

// IsBotAdmin reports whether userID is on a global admin list.
func (r *Resolver) IsBotAdmin(userID string) bool {
	if _, ok := r.absolutes[userID]; ok {
		return true
	}
	_, ok := r.admins[userID]
	return ok
}

// Resolve computes the user's effective tags for a thread. First match wins:
// global admin lists, then the thread's admin IDs, then a stored per-thread
// override, then the user's stored global permissions, else plain user.
func (r *Resolver) Resolve(userID string, thread *models.Thread, user *models.User) Set {
	if r.IsBotAdmin(userID) {
		return NewSet(TagAdmin, TagSupperAdmin)
	}

	if thread != nil {
		if thread.AdminIDs.Contains(userID) {
			return NewSet(TagThreadAdmin, TagAdmin)
		}
		if override, ok := thread.Permissions[userID]; ok && len(override) > 0 {
			return fromStrings(override)
		}
	}

	if user != nil && len(user.Permissions) > 0 {
		return fromStrings(user.Permissions)
	}

	return NewSet(TagUser)
}

// Check reports whether any required level's allowed tags intersect the
// user's tags. Empty inputs fail closed.
func Check(requiredLevels []int, tags Set) bool {
	if len(requiredLevels) == 0 || len(tags) == 0 {
		return false
	}
	for _, level := range requiredLevels {
		allowed, ok := levelTags[level]
		if !ok {
			continue
		}
		if allowed.intersects(tags) {
			return true
		}
	}
	return false
}
