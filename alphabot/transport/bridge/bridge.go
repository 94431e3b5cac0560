// Package bridge implements transport.ChatTransport over a child client
// process speaking newline-delimited JSON on stdin/stdout. The child owns
// the Messenger wire protocol (cookie login, MQTT listening, HTTP sends);
// this side owns request/response correlation and event delivery.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

const (
	opLogin    = "login"
	opReady    = "ready"
	opSend     = "send"
	opReact    = "react"
	opUserInfo = "userInfo"
	opAppState = "appstate"
	opLogout   = "logout"
	opEvent    = "event"
	opResult   = "result"
)

const loginTimeout = 90 * time.Second

// ErrClosed reports a request against a bridge whose child has exited.
var ErrClosed = errors.New("bridge: client process closed")

type request struct {
	Op        string   `json:"op"`
	ID        int64    `json:"id,omitempty"`
	Content   string   `json:"content,omitempty"`
	ThreadID  string   `json:"threadID,omitempty"`
	ReplyTo   string   `json:"replyTo,omitempty"`
	Emoji     string   `json:"emoji,omitempty"`
	MessageID string   `json:"messageID,omitempty"`
	UserIDs   []string `json:"userIDs,omitempty"`
	AppState  string   `json:"appstate,omitempty"`
}

type response struct {
	Op     string           `json:"op"`
	ID     int64            `json:"id,omitempty"`
	UserID string           `json:"userID,omitempty"`
	Error  string           `json:"error,omitempty"`
	Data   json.RawMessage  `json:"data,omitempty"`
	Event  *transport.Event `json:"event,omitempty"`
}

// Bridge is a ChatTransport backed by a child process.
type Bridge struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	userID string

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan response
	events  chan transport.Event
	closed  chan struct{}
	readErr error
}

// Options configure the child client process.
type Options struct {
	// Command and Args name the client binary, e.g. ["node", "client.js"].
	Command string
	Args    []string

	// AppStatePath is handed to the child for login.
	AppStatePath string
}

// Connect spawns the client, performs the login handshake, and starts the
// reader.
func Connect(ctx context.Context, opts Options) (*Bridge, error) {
	cmd := exec.Command(opts.Command, opts.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: failed to start client: %w", err)
	}

	b := &Bridge{
		cmd:     cmd,
		stdin:   stdin,
		pending: make(map[int64]chan response),
		events:  make(chan transport.Event, 256),
		closed:  make(chan struct{}),
	}

	ready := make(chan response, 1)
	go b.readLoop(stdout, ready)

	if err := b.write(request{Op: opLogin, AppState: opts.AppStatePath}); err != nil {
		b.shutdown()
		return nil, err
	}

	select {
	case resp := <-ready:
		if resp.Error != "" {
			b.shutdown()
			return nil, fmt.Errorf("bridge: login failed: %s", resp.Error)
		}
		b.userID = resp.UserID
	case <-time.After(loginTimeout):
		b.shutdown()
		return nil, errors.New("bridge: login timed out")
	case <-ctx.Done():
		b.shutdown()
		return nil, ctx.Err()
	case <-b.closed:
		return nil, fmt.Errorf("bridge: client exited during login: %w", b.readErr)
	}

	slog.Info("Bridge client connected",
		slog.String("type", "fca"),
		slog.String("user_id", b.userID))
	return b, nil
}

func (b *Bridge) readLoop(stdout io.Reader, ready chan<- response) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var resp response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			slog.Warn("Bridge sent unparseable line",
				slog.String("type", "fca"),
				slog.String("error", err.Error()))
			continue
		}

		switch resp.Op {
		case opReady:
			select {
			case ready <- resp:
			default:
			}
		case opEvent:
			if resp.Event != nil {
				select {
				case b.events <- *resp.Event:
				default:
					slog.Warn("Event buffer full, dropping event",
						slog.String("type", "fca"))
				}
			}
		case opResult:
			b.mu.Lock()
			ch, ok := b.pending[resp.ID]
			delete(b.pending, resp.ID)
			b.mu.Unlock()
			if ok {
				ch <- resp
			}
		}
	}

	b.readErr = scanner.Err()
	b.shutdown()
}

func (b *Bridge) shutdown() {
	b.mu.Lock()
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
	for id, ch := range b.pending {
		delete(b.pending, id)
		ch <- response{Error: ErrClosed.Error()}
	}
	b.mu.Unlock()
	_ = b.stdin.Close()
}

func (b *Bridge) write(req request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bridge: marshal request: %w", err)
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if _, err := b.stdin.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("bridge: write request: %w", err)
	}
	return nil
}

// call sends a correlated request and waits for its result.
func (b *Bridge) call(ctx context.Context, req request) (response, error) {
	req.ID = b.nextID.Add(1)
	ch := make(chan response, 1)

	b.mu.Lock()
	select {
	case <-b.closed:
		b.mu.Unlock()
		return response{}, ErrClosed
	default:
	}
	b.pending[req.ID] = ch
	b.mu.Unlock()

	if err := b.write(req); err != nil {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
		return response{}, err
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return response{}, fmt.Errorf("bridge: %s", resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
		return response{}, ctx.Err()
	}
}

func (b *Bridge) SendMessage(ctx context.Context, content, threadID, replyToMessageID string) (*transport.SendResult, error) {
	resp, err := b.call(ctx, request{
		Op:       opSend,
		Content:  content,
		ThreadID: threadID,
		ReplyTo:  replyToMessageID,
	})
	if err != nil {
		return nil, err
	}
	var result transport.SendResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("bridge: decode send result: %w", err)
	}
	return &result, nil
}

func (b *Bridge) SetMessageReaction(ctx context.Context, emoji, messageID string) error {
	_, err := b.call(ctx, request{Op: opReact, Emoji: emoji, MessageID: messageID})
	return err
}

func (b *Bridge) GetUserInfo(ctx context.Context, userIDs []string) (map[string]transport.UserInfo, error) {
	resp, err := b.call(ctx, request{Op: opUserInfo, UserIDs: userIDs})
	if err != nil {
		return nil, err
	}
	info := make(map[string]transport.UserInfo)
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("bridge: decode user info: %w", err)
	}
	return info, nil
}

func (b *Bridge) GetCurrentUserID() string { return b.userID }

// Listen delivers buffered events to fn until ctx ends or the child exits.
func (b *Bridge) Listen(ctx context.Context, fn func(transport.Event)) error {
	for {
		select {
		case ev := <-b.events:
			fn(ev)
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closed:
			if b.readErr != nil {
				return fmt.Errorf("bridge: client exited: %w", b.readErr)
			}
			return ErrClosed
		}
	}
}

func (b *Bridge) GetAppState(ctx context.Context) (transport.AppState, error) {
	resp, err := b.call(ctx, request{Op: opAppState})
	if err != nil {
		return nil, err
	}
	var state transport.AppState
	if err := json.Unmarshal(resp.Data, &state); err != nil {
		return nil, fmt.Errorf("bridge: decode appstate: %w", err)
	}
	return state, nil
}

func (b *Bridge) Logout(ctx context.Context) error {
	_, err := b.call(ctx, request{Op: opLogout})
	b.shutdown()
	_ = b.cmd.Wait()
	return err
}
