package web

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	maxRestarts   = 5
	restartWindow = time.Minute
)

// ErrAlreadyRunning is returned by Start when the bot process is alive.
var ErrAlreadyRunning = errors.New("web: bot is already running")

// LauncherState describes the supervised bot process.
type LauncherState string

const (
	StateStopped LauncherState = "stopped"
	StateRunning LauncherState = "running"
	StateGivenUp LauncherState = "given_up"
)

// Launcher runs the bot as a child process and restarts it when it exits
// with a non-zero code. Restarts are bounded: more than maxRestarts inside a
// rolling restartWindow and the launcher gives up until the next manual Start.
type Launcher struct {
	binary string
	args   []string

	mu       sync.Mutex
	cmd      *exec.Cmd
	state    LauncherState
	restarts []time.Time
	stopping bool
	lastExit string
}

func NewLauncher(binary string, args []string) *Launcher {
	return &Launcher{
		binary: binary,
		args:   args,
		state:  StateStopped,
	}
}

// Start launches the bot process and begins supervision.
func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRunning {
		return ErrAlreadyRunning
	}

	l.restarts = nil
	l.stopping = false
	l.lastExit = ""
	return l.spawnLocked()
}

// Stop terminates the bot process without triggering a restart.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRunning || l.cmd == nil || l.cmd.Process == nil {
		return nil
	}

	l.stopping = true
	if err := l.cmd.Process.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("failed to signal bot process: %w", err)
	}
	return nil
}

// Status reports the current state, the PID when running, and the last exit
// reason when not.
func (l *Launcher) Status() (state LauncherState, pid int, lastExit string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRunning && l.cmd != nil && l.cmd.Process != nil {
		pid = l.cmd.Process.Pid
	}
	return l.state, pid, l.lastExit
}

func (l *Launcher) spawnLocked() error {
	cmd := exec.Command(l.binary, l.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		l.state = StateStopped
		return fmt.Errorf("failed to start bot process: %w", err)
	}

	l.cmd = cmd
	l.state = StateRunning

	slog.Info("Bot process started",
		slog.String("type", "web"),
		slog.String("binary", l.binary),
		slog.Int("pid", cmd.Process.Pid))

	go l.supervise(cmd)
	return nil
}

func (l *Launcher) supervise(cmd *exec.Cmd) {
	err := cmd.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != cmd {
		// A newer process replaced this one while we were waiting.
		return
	}
	l.cmd = nil

	exitCode := 0
	if err != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}

	if l.stopping || (err == nil && exitCode == 0) {
		l.state = StateStopped
		l.lastExit = "clean shutdown"
		slog.Info("Bot process stopped", slog.String("type", "web"))
		return
	}

	l.lastExit = fmt.Sprintf("exit code %d", exitCode)
	slog.Warn("Bot process exited abnormally",
		slog.String("type", "web"),
		slog.Int("exit_code", exitCode))

	now := time.Now()
	l.restarts = append(l.restarts, now)
	l.restarts = trimWindow(l.restarts, now.Add(-restartWindow))

	if len(l.restarts) > maxRestarts {
		l.state = StateGivenUp
		slog.Error("Bot crashed too often, giving up",
			slog.String("type", "web"),
			slog.Int("restarts", len(l.restarts)),
			slog.Duration("window", restartWindow))
		return
	}

	slog.Info("Restarting bot process",
		slog.String("type", "web"),
		slog.Int("attempt", len(l.restarts)))
	if err := l.spawnLocked(); err != nil {
		l.state = StateStopped
		l.lastExit = err.Error()
		slog.Error("Failed to restart bot process",
			slog.String("type", "web"),
			slog.String("error", err.Error()))
	}
}

func trimWindow(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
