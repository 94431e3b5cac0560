// Package repositories provides the cached read-through accessors the
// dispatcher and command handlers use. Records are loaded lazily on first
// reference, deduplicated with singleflight, and guarded with per-ID locks
// for read-modify-write updates.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/alphabot-dev/alphabot/alphabot/database"
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

const (
	cacheSize  = 1024
	lockShards = 64
)

// idLocks is a striped per-ID mutex set shared by both repositories' Modify
// helpers. Striping bounds memory while keeping contention on unrelated IDs
// unlikely.
type idLocks [lockShards]sync.Mutex

func (l *idLocks) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &l[h.Sum32()%lockShards]
}

type ThreadRepository interface {
	// GetOrCreate returns the cached record, loading it from the store on
	// first reference and creating a default record for unknown threads.
	GetOrCreate(ctx context.Context, threadID string) (*models.Thread, error)

	// Update writes the record back and refreshes the cache.
	Update(ctx context.Context, thread *models.Thread) error

	// Modify runs fn under the thread's lock and persists the result.
	Modify(ctx context.Context, threadID string, fn func(*models.Thread) error) (*models.Thread, error)

	// Invalidate drops the cached record.
	Invalidate(threadID string)
}

type threadRepository struct {
	store database.Store
	cache *lru.Cache
	group singleflight.Group
	locks idLocks
}

func NewThreadRepository(store database.Store) ThreadRepository {
	cache, _ := lru.New(cacheSize)
	return &threadRepository{
		store: store,
		cache: cache,
	}
}

func (r *threadRepository) GetOrCreate(ctx context.Context, threadID string) (*models.Thread, error) {
	if cached, ok := r.cache.Get(threadID); ok {
		return cached.(*models.Thread), nil
	}

	v, err, _ := r.group.Do(threadID, func() (any, error) {
		thread, err := r.store.GetThread(ctx, threadID)
		if errors.Is(err, database.ErrNotFound) {
			thread = models.NewThread(threadID)
			if err := r.store.PutThread(ctx, thread); err != nil {
				return nil, fmt.Errorf("failed to create thread %s: %w", threadID, err)
			}
			slog.Debug("Created thread record",
				slog.String("type", "db"),
				slog.String("thread_id", threadID))
		} else if err != nil {
			return nil, err
		}
		r.cache.Add(threadID, thread)
		return thread, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Thread), nil
}

func (r *threadRepository) Update(ctx context.Context, thread *models.Thread) error {
	thread.LastUpdate = time.Now()
	if err := r.store.PutThread(ctx, thread); err != nil {
		return err
	}
	r.cache.Add(thread.ThreadID, thread)
	return nil
}

func (r *threadRepository) Modify(ctx context.Context, threadID string, fn func(*models.Thread) error) (*models.Thread, error) {
	mu := r.locks.lock(threadID)
	mu.Lock()
	defer mu.Unlock()

	thread, err := r.GetOrCreate(ctx, threadID)
	if err != nil {
		return nil, err
	}

	// fn works on a deep copy so a failed or concurrent Modify can never
	// leak a partial mutation into the cached record.
	cp := thread.Clone()
	if err := fn(cp); err != nil {
		return nil, err
	}
	if err := r.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *threadRepository) Invalidate(threadID string) {
	r.cache.Remove(threadID)
}
