package utils

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BackgroundProcessManager owns every long-lived goroutine in the bot (the
// session sweeper, the backup uploader, timers) so shutdown can stop them all.
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processes map[string]context.CancelFunc
	mu        sync.Mutex
}

func NewBackgroundProcessManager() *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]context.CancelFunc),
	}
}

// StartProcess registers and starts a named background process. Starting a
// process under an already-used name stops the previous one first.
func (bpm *BackgroundProcessManager) StartProcess(name string, fn func(ctx context.Context)) {
	bpm.mu.Lock()
	if stop, exists := bpm.processes[name]; exists {
		slog.Warn("Process already exists, stopping existing one", slog.String("process", name))
		stop()
	}
	processCtx, processCancel := context.WithCancel(bpm.ctx)
	bpm.processes[name] = processCancel
	bpm.mu.Unlock()

	bpm.wg.Add(1)
	go func() {
		defer bpm.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Info("Starting background process", slog.String("process", name))
		fn(processCtx)
		slog.Info("Background process ended", slog.String("process", name))
	}()
}

// StartTicker runs fn on a fixed interval until the process is stopped.
func (bpm *BackgroundProcessManager) StartTicker(name string, interval time.Duration, fn func(ctx context.Context)) {
	bpm.StartProcess(name, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

// StopProcess stops a specific background process.
func (bpm *BackgroundProcessManager) StopProcess(name string) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	if stop, exists := bpm.processes[name]; exists {
		stop()
		delete(bpm.processes, name)
		slog.Info("Stopped background process", slog.String("process", name))
	}
}

// Shutdown cancels all processes and waits for them to finish.
func (bpm *BackgroundProcessManager) Shutdown(timeout time.Duration) error {
	bpm.mu.Lock()
	count := len(bpm.processes)
	bpm.mu.Unlock()
	slog.Info("Shutting down background processes", slog.Int("process_count", count))

	bpm.cancel()

	done := make(chan struct{})
	go func() {
		bpm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background processes to stop",
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}
