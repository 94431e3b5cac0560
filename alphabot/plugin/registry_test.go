package plugin

import (
	"errors"
	"reflect"
	"testing"
)

func noop(*Ctx) error { return nil }

func testCommand(name string, aliases ...string) *Command {
	return &Command{
		Name:             name,
		Aliases:          aliases,
		PermissionLevels: []int{0},
		Run:              noop,
	}
}

func TestRegistry_ResolveAliasIdentity(t *testing.T) {
	r := NewRegistry()
	cmd := testCommand("ping", "p", "pong")
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, name := range []string{"ping", "p", "pong"} {
		got, ok := r.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%q) not found", name)
		}
		if got != cmd {
			t.Errorf("Resolve(%q) = %p, want the registered command %p", name, got, cmd)
		}
	}
}

func TestRegistry_ExactNameWinsOverAlias(t *testing.T) {
	r := NewRegistry()
	ping := testCommand("ping")
	if err := r.Register(ping); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// An alias colliding with a registered name is rejected outright, so an
	// exact match can never be shadowed.
	err := r.Register(testCommand("other", "ping"))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Register() with colliding alias error = %v, want ErrDuplicateName", err)
	}

	got, _ := r.Resolve("ping")
	if got != ping {
		t.Errorf("Resolve(\"ping\") = %v, want the original command", got)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ping")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(testCommand("ping")); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateName", err)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Error("Register(nil) error = nil, want error")
	}
	if err := r.Register(&Command{Name: "ping"}); err == nil {
		t.Error("Register() without handler error = nil, want error")
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ping", "p")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	r.Unregister("ping")

	if _, ok := r.Resolve("ping"); ok {
		t.Error("Resolve(\"ping\") found after Unregister")
	}
	if _, ok := r.Resolve("p"); ok {
		t.Error("Resolve(\"p\") alias survived Unregister")
	}
}

func TestRegistry_Reload(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testCommand("ping", "p")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(testCommand("help")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	replacement := testCommand("ping", "pp")
	if err := r.Reload(replacement); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got, _ := r.Resolve("ping"); got != replacement {
		t.Error("Resolve(\"ping\") did not return the reloaded command")
	}
	if _, ok := r.Resolve("p"); ok {
		t.Error("old alias \"p\" survived Reload")
	}
	if got, _ := r.Resolve("pp"); got != replacement {
		t.Error("new alias \"pp\" not resolvable after Reload")
	}
}

func TestRegistry_ReloadCollisionRestoresOld(t *testing.T) {
	r := NewRegistry()
	ping := testCommand("ping", "p")
	if err := r.Register(ping); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(testCommand("help", "h")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Reloading ping with an alias owned by help must fail and leave the
	// original ping in place.
	err := r.Reload(testCommand("ping", "h"))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Reload() error = %v, want ErrDuplicateName", err)
	}
	if got, ok := r.Resolve("ping"); !ok || got != ping {
		t.Error("failed Reload did not restore the original command")
	}
	if got, ok := r.Resolve("p"); !ok || got != ping {
		t.Error("failed Reload did not restore the original alias")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"uptime", "ping", "help"} {
		if err := r.Register(testCommand(name)); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}
	want := []string{"help", "ping", "uptime"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"ping", "prefix", "help"} {
		if err := r.Register(testCommand(name)); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	// Subsequence typo (dropped letter).
	if got := r.Suggest("pg"); got != "ping" {
		t.Errorf("Suggest(\"pg\") = %q, want \"ping\"", got)
	}
	// Transposed letters fall back to edit distance.
	if got := r.Suggest("pign"); got != "ping" {
		t.Errorf("Suggest(\"pign\") = %q, want \"ping\"", got)
	}
	if got := r.Suggest("pnig"); got != "ping" {
		t.Errorf("Suggest(\"pnig\") = %q, want \"ping\"", got)
	}
	if got := r.Suggest("zzzz"); got != "" {
		t.Errorf("Suggest(\"zzzz\") = %q, want empty", got)
	}
}

func TestRegistry_UnregisterFiresRemoveHook(t *testing.T) {
	r := NewRegistry()
	var removed []string
	r.SetRemoveHook(func(name string) { removed = append(removed, name) })

	if err := r.Register(testCommand("ping")); err != nil {
		t.Fatal(err)
	}

	r.Unregister("ping")
	if len(removed) != 1 || removed[0] != "ping" {
		t.Errorf("remove hook calls = %v, want [ping]", removed)
	}

	// Unknown names and reloads do not fire the hook.
	r.Unregister("ping")
	if err := r.Register(testCommand("help")); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(testCommand("help")); err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 {
		t.Errorf("remove hook calls = %v, want only the first unregister", removed)
	}
}

func TestRegistry_LogEvent(t *testing.T) {
	r := NewRegistry()
	h := &LogEventHandler{Name: "subscribe", Run: noop}
	r.RegisterLogEvent("log:subscribe", h)

	got, ok := r.LogEvent("log:subscribe")
	if !ok || got != h {
		t.Errorf("LogEvent() = (%v, %v), want registered handler", got, ok)
	}
	if _, ok := r.LogEvent("log:unknown"); ok {
		t.Error("LogEvent() found handler for unmapped type")
	}
}

func TestRegistry_MessageHandlersOrdered(t *testing.T) {
	r := NewRegistry()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		r.RegisterMessageHandler(MessageHandler{
			Name: "h",
			Run: func(*Ctx) error {
				order = append(order, i)
				return nil
			},
		})
	}

	for _, h := range r.MessageHandlers() {
		if err := h.Run(nil); err != nil {
			t.Fatalf("handler error = %v", err)
		}
	}
	if !reflect.DeepEqual(order, []int{0, 1, 2}) {
		t.Errorf("handlers ran in order %v, want [0 1 2]", order)
	}
}
