package dispatcher

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/alphabot-dev/alphabot/alphabot/database"
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/database/repositories"
	"github.com/alphabot-dev/alphabot/alphabot/lang"
	"github.com/alphabot-dev/alphabot/alphabot/permissions"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
	"github.com/alphabot-dev/alphabot/alphabot/session"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
	"github.com/alphabot-dev/alphabot/alphabot/transport/mock"
)

const botID = "999"

type fixture struct {
	chat       *mock.MockChatTransport
	dispatcher *Dispatcher
	store      *database.JSONStore
	sessions   *session.Store
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	chat := mock.NewMockChatTransport(gomock.NewController(t))
	chat.EXPECT().GetCurrentUserID().Return(botID).AnyTimes()

	store, err := database.OpenJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenJSONStore() error = %v", err)
	}

	sessions := session.NewStore()
	d := New(cfg, plugin.NewRegistry(), sessions, permissions.NewResolver(nil, nil),
		repositories.NewThreadRepository(store), repositories.NewUserRepository(store), chat)

	return &fixture{chat: chat, dispatcher: d, store: store, sessions: sessions}
}

func messageEvent(body string) transport.Event {
	return transport.Event{
		Kind:      transport.KindMessage,
		ThreadID:  "t1",
		SenderID:  "100",
		MessageID: "m1",
		Body:      body,
	}
}

func TestDispatch_PingHappyPathAndCooldown(t *testing.T) {
	f := newFixture(t, Config{})

	invoked := 0
	cmd := &plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		CooldownSeconds:  2,
		Run: func(c *plugin.Ctx) error {
			invoked++
			_, err := c.Reply("🏓 Pong!")
			return err
		},
	}
	if err := f.dispatcher.Registry.Register(cmd); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), "🏓 Pong!", "t1", "m1").
		Return(&transport.SendResult{MessageID: "m2"}, nil)

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
	if invoked != 1 {
		t.Fatalf("handler invoked %d times, want 1", invoked)
	}

	// Second call inside the cooldown window reacts instead of running.
	f.chat.EXPECT().SetMessageReaction(gomock.Any(), cooldownEmoji, "m3").Return(nil)

	ev := messageEvent("/ping")
	ev.MessageID = "m3"
	f.dispatcher.Dispatch(context.Background(), ev)
	if invoked != 1 {
		t.Fatalf("handler ran during cooldown, invoked = %d", invoked)
	}
}

func TestDispatch_AliasResolves(t *testing.T) {
	f := newFixture(t, Config{})

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		Aliases:          []string{"p"},
		PermissionLevels: []int{0},
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.dispatcher.Dispatch(context.Background(), messageEvent("/p"))
	if !invoked {
		t.Error("alias did not reach the handler")
	}
}

func TestDispatch_SilentPermissionDrop(t *testing.T) {
	f := newFixture(t, Config{})

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ban",
		PermissionLevels: []int{2},
		Run: func(*plugin.Ctx) error {
			t.Error("privileged handler ran for a plain user")
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// No SendMessage expectation: any outgoing message fails the test.
	f.dispatcher.Dispatch(context.Background(), messageEvent("/ban 200"))
}

func TestDispatch_ThreadAdminRunsPrivilegedCommand(t *testing.T) {
	f := newFixture(t, Config{})

	if _, err := f.dispatcher.Threads.Modify(context.Background(), "t1", func(th *models.Thread) error {
		th.AdminIDs = models.IDList{"100"}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ban",
		PermissionLevels: []int{2},
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ban"))
	if !invoked {
		t.Error("thread admin was denied a level-2 command")
	}
}

func TestDispatch_BotAdminRunsPlainCommand(t *testing.T) {
	f := newFixture(t, Config{})
	f.dispatcher.Perms = permissions.NewResolver([]string{"100"}, nil)

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
	if !invoked {
		t.Error("global admin was denied a level-0 command")
	}
}

func TestDispatch_NotifyDenyPolicy(t *testing.T) {
	f := newFixture(t, Config{DenyPolicy: permissions.NotifyDeny})

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ban",
		PermissionLevels: []int{2},
		Run:              func(*plugin.Ctx) error { return nil },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), lang.T("en", lang.KeyPermissionDeny), "t1", "").
		Return(&transport.SendResult{}, nil)

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ban 200"))
}

func TestDispatch_NSFWGate(t *testing.T) {
	f := newFixture(t, Config{})

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "lewd",
		PermissionLevels: []int{0},
		NSFW:             true,
		Run: func(*plugin.Ctx) error {
			t.Error("NSFW handler ran in a non-NSFW group")
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), lang.T("en", lang.KeyNSFWNotAllowed), "t1", "").
		Return(&transport.SendResult{}, nil)

	ev := messageEvent("/lewd")
	ev.IsGroup = true
	f.dispatcher.Dispatch(context.Background(), ev)
}

func TestDispatch_NSFWAllowedWhenThreadOptedIn(t *testing.T) {
	f := newFixture(t, Config{})

	thread := models.NewThread("t1")
	thread.IsGroup = true
	thread.NSFW = true
	if err := f.store.PutThread(context.Background(), thread); err != nil {
		t.Fatal(err)
	}

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "lewd",
		PermissionLevels: []int{0},
		NSFW:             true,
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ev := messageEvent("/lewd")
	ev.IsGroup = true
	f.dispatcher.Dispatch(context.Background(), ev)
	if !invoked {
		t.Error("NSFW handler blocked in an opted-in thread")
	}
}

func TestDispatch_BannedUserDropped(t *testing.T) {
	f := newFixture(t, Config{})

	user := models.NewUser("100")
	user.Banned = true
	if err := f.store.PutUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run: func(*plugin.Ctx) error {
			t.Error("handler ran for a banned user")
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
}

func TestDispatch_SelfEventIgnored(t *testing.T) {
	f := newFixture(t, Config{})

	ev := messageEvent("/ping")
	ev.SenderID = botID
	// No registry entry and no expectations: reaching any of them would fail.
	f.dispatcher.Dispatch(context.Background(), ev)
}

func TestDispatch_CommandNotFoundSuggestion(t *testing.T) {
	f := newFixture(t, Config{})

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run:              func(*plugin.Ctx) error { return nil },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), lang.T("en", lang.KeySuggestion, "pign", "ping"), "t1", "").
		Return(&transport.SendResult{}, nil)

	f.dispatcher.Dispatch(context.Background(), messageEvent("/pign"))
}

func TestDispatch_HandlerErrorRepliesLocalized(t *testing.T) {
	f := newFixture(t, Config{})

	boom := errors.New("boom")
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run:              func(*plugin.Ctx) error { return boom },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), lang.T("en", lang.KeyHandlerError, boom), "t1", "").
		Return(&transport.SendResult{}, nil)

	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
}

func TestDispatch_HandlerPanicRecovered(t *testing.T) {
	f := newFixture(t, Config{})

	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run:              func(*plugin.Ctx) error { panic("kaboom") },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.chat.EXPECT().
		SendMessage(gomock.Any(), gomock.Any(), "t1", "").
		Return(&transport.SendResult{}, nil)

	// Must not propagate the panic.
	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
}

func TestDispatch_ThreadPrefixOverride(t *testing.T) {
	f := newFixture(t, Config{Prefix: "/"})

	thread := models.NewThread("t1")
	thread.Prefix = "!"
	if err := f.store.PutThread(context.Background(), thread); err != nil {
		t.Fatal(err)
	}

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// The global prefix no longer triggers; it is a plain message now.
	f.dispatcher.Dispatch(context.Background(), messageEvent("/ping"))
	if invoked {
		t.Fatal("global prefix triggered despite thread override")
	}

	f.dispatcher.Dispatch(context.Background(), messageEvent("!ping"))
	if !invoked {
		t.Fatal("thread prefix did not trigger the command")
	}
}

func TestDispatch_ReplyWaiterAuthorOnly(t *testing.T) {
	f := newFixture(t, Config{})

	var got string
	f.sessions.AddWaiter(session.KindReply, "m0", &session.Waiter{
		Name:       "me",
		AuthorID:   "100",
		AuthorOnly: true,
		Callback: func(ev transport.Event) error {
			got = ev.Body
			return nil
		},
	}, 0)

	// A reply from someone else consumes the waiter but does not run it.
	ev := transport.Event{
		Kind:      transport.KindReply,
		ThreadID:  "t1",
		SenderID:  "200",
		MessageID: "m5",
		Body:      "intruder",
		ReplyTo:   &transport.ReplySource{MessageID: "m0"},
	}
	f.dispatcher.Dispatch(context.Background(), ev)
	if got != "" {
		t.Fatalf("author-only waiter ran for another sender, got %q", got)
	}

	f.sessions.AddWaiter(session.KindReply, "m0", &session.Waiter{
		Name:       "me",
		AuthorID:   "100",
		AuthorOnly: true,
		Callback: func(ev transport.Event) error {
			got = ev.Body
			return nil
		},
	}, 0)

	ev.SenderID = "100"
	ev.Body = "New Name"
	f.dispatcher.Dispatch(context.Background(), ev)
	if got != "New Name" {
		t.Fatalf("waiter callback got %q, want \"New Name\"", got)
	}
}

func TestDispatch_ReplyWithoutWaiterFallsThroughToCommand(t *testing.T) {
	f := newFixture(t, Config{})

	invoked := false
	err := f.dispatcher.Registry.Register(&plugin.Command{
		Name:             "ping",
		PermissionLevels: []int{0},
		Run: func(*plugin.Ctx) error {
			invoked = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ev := transport.Event{
		Kind:      transport.KindReply,
		ThreadID:  "t1",
		SenderID:  "100",
		MessageID: "m6",
		Body:      "/ping",
		ReplyTo:   &transport.ReplySource{MessageID: "unclaimed"},
	}
	f.dispatcher.Dispatch(context.Background(), ev)
	if !invoked {
		t.Error("prefixed reply without waiter did not dispatch as a command")
	}
}

func TestDispatch_ReactionWaiter(t *testing.T) {
	f := newFixture(t, Config{})

	var gotReaction string
	f.sessions.AddWaiter(session.KindReaction, "m7", &session.Waiter{
		Name: "vote",
		Callback: func(ev transport.Event) error {
			gotReaction = ev.Reaction
			return nil
		},
	}, 0)

	f.dispatcher.Dispatch(context.Background(), transport.Event{
		Kind:      transport.KindReaction,
		ThreadID:  "t1",
		SenderID:  "100",
		MessageID: "m7",
		Reaction:  "👍",
	})
	if gotReaction != "👍" {
		t.Errorf("reaction waiter got %q, want 👍", gotReaction)
	}
}

func TestDispatch_LogEventRouted(t *testing.T) {
	f := newFixture(t, Config{})

	var gotType string
	f.dispatcher.Registry.RegisterLogEvent(transport.LogSubscribe, &plugin.LogEventHandler{
		Name: "subscribe",
		Run: func(c *plugin.Ctx) error {
			gotType = c.Event.LogType
			return nil
		},
	})

	f.dispatcher.Dispatch(context.Background(), transport.Event{
		Kind:     transport.KindLog,
		ThreadID: "t1",
		SenderID: "100",
		LogType:  transport.LogSubscribe,
	})
	if gotType != transport.LogSubscribe {
		t.Errorf("log handler saw type %q, want %q", gotType, transport.LogSubscribe)
	}
}

func TestDispatch_MessageHandlersAllRun(t *testing.T) {
	f := newFixture(t, Config{})

	ran := 0
	f.dispatcher.Registry.RegisterMessageHandler(plugin.MessageHandler{
		Name: "first",
		Run:  func(*plugin.Ctx) error { ran++; return errors.New("ignored") },
	})
	f.dispatcher.Registry.RegisterMessageHandler(plugin.MessageHandler{
		Name: "second",
		Run:  func(*plugin.Ctx) error { ran++; return nil },
	})

	f.dispatcher.Dispatch(context.Background(), messageEvent("hello there"))
	if ran != 2 {
		t.Errorf("message handlers ran %d times, want 2 (one failing must not block the rest)", ran)
	}
}
