package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alphabot-dev/alphabot/alphabot/database"
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

func newThreadRepo(t *testing.T) (ThreadRepository, *database.JSONStore) {
	t.Helper()
	store, err := database.OpenJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenJSONStore() error = %v", err)
	}
	return NewThreadRepository(store), store
}

func TestThreadRepository_GetOrCreate(t *testing.T) {
	repo, store := newThreadRepo(t)
	ctx := context.Background()

	thread, err := repo.GetOrCreate(ctx, "t1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if thread.ThreadID != "t1" {
		t.Errorf("ThreadID = %q, want \"t1\"", thread.ThreadID)
	}

	// The default record is persisted, not just cached.
	stored, err := store.GetThread(ctx, "t1")
	if err != nil {
		t.Fatalf("GetThread() after create error = %v", err)
	}
	if stored.ThreadID != "t1" {
		t.Errorf("stored ThreadID = %q, want \"t1\"", stored.ThreadID)
	}

	// Second call serves the cached record.
	again, err := repo.GetOrCreate(ctx, "t1")
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if again != thread {
		t.Error("GetOrCreate() did not serve the cached record")
	}
}

func TestThreadRepository_Modify(t *testing.T) {
	repo, store := newThreadRepo(t)
	ctx := context.Background()

	got, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
		th.NSFW = true
		th.Prefix = "!"
		return nil
	})
	if err != nil {
		t.Fatalf("Modify() error = %v", err)
	}
	if !got.NSFW || got.Prefix != "!" {
		t.Errorf("Modify() returned %+v, want mutated record", got)
	}

	stored, err := store.GetThread(ctx, "t1")
	if err != nil {
		t.Fatalf("GetThread() error = %v", err)
	}
	if !stored.NSFW || stored.Prefix != "!" {
		t.Errorf("stored record %+v missing the modification", stored)
	}
}

func TestThreadRepository_ModifyErrorDoesNotPersist(t *testing.T) {
	repo, store := newThreadRepo(t)
	ctx := context.Background()

	if _, err := repo.GetOrCreate(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if _, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
		th.NSFW = true
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Modify() error = %v, want boom", err)
	}

	stored, err := store.GetThread(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.NSFW {
		t.Error("failed Modify() persisted its mutation")
	}
}

func TestThreadRepository_ModifyErrorDoesNotLeakIntoCache(t *testing.T) {
	repo, _ := newThreadRepo(t)
	ctx := context.Background()

	if _, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
		th.Permissions = map[string][]string{"seed": {"user"}}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if _, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
		th.Permissions["leak"] = []string{"admin"}
		th.AdminIDs = append(th.AdminIDs, "42")
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Modify() error = %v, want boom", err)
	}

	cached, err := repo.GetOrCreate(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cached.Permissions["leak"]; ok {
		t.Error("failed Modify() mutated the cached record's permission map")
	}
	if cached.AdminIDs.Contains("42") {
		t.Error("failed Modify() mutated the cached record's admin list")
	}
}

func TestThreadRepository_ModifyDoesNotRaceReaders(t *testing.T) {
	repo, _ := newThreadRepo(t)
	ctx := context.Background()

	if _, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
		th.Permissions = map[string][]string{"seed": {"user"}}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			th, err := repo.GetOrCreate(ctx, "t1")
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			_ = th.Permissions["seed"]
		}
	}()

	for i := 0; i < 200; i++ {
		if _, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
			th.Permissions["w"] = []string{"mod"}
			return nil
		}); err != nil {
			t.Fatalf("Modify() error = %v", err)
		}
	}
	<-done
}

func TestThreadRepository_Invalidate(t *testing.T) {
	repo, store := newThreadRepo(t)
	ctx := context.Background()

	if _, err := repo.GetOrCreate(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	// Write behind the repository's back, then invalidate the cache.
	thread := models.NewThread("t1")
	thread.Name = "renamed"
	if err := store.PutThread(ctx, thread); err != nil {
		t.Fatal(err)
	}
	repo.Invalidate("t1")

	got, err := repo.GetOrCreate(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" {
		t.Errorf("Name after Invalidate = %q, want \"renamed\"", got.Name)
	}
}

func TestThreadRepository_ConcurrentModify(t *testing.T) {
	repo, store := newThreadRepo(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Modify(ctx, "t1", func(th *models.Thread) error {
				th.MemberCount++
				return nil
			})
			if err != nil {
				t.Errorf("Modify() error = %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := store.GetThread(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.MemberCount != workers {
		t.Errorf("MemberCount = %d, want %d (lost updates)", stored.MemberCount, workers)
	}
}
