package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/alphabot-dev/alphabot/alphabot/database"
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

type UserRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Modify(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error)
	Invalidate(userID string)
}

type userRepository struct {
	store database.Store
	cache *lru.Cache
	group singleflight.Group
	locks idLocks
}

func NewUserRepository(store database.Store) UserRepository {
	cache, _ := lru.New(cacheSize)
	return &userRepository{
		store: store,
		cache: cache,
	}
}

func (r *userRepository) GetOrCreate(ctx context.Context, userID string) (*models.User, error) {
	if cached, ok := r.cache.Get(userID); ok {
		return cached.(*models.User), nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		user, err := r.store.GetUser(ctx, userID)
		if errors.Is(err, database.ErrNotFound) {
			user = models.NewUser(userID)
			if err := r.store.PutUser(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
			}
			slog.Debug("Created user record",
				slog.String("type", "db"),
				slog.String("user_id", userID))
		} else if err != nil {
			return nil, err
		}
		r.cache.Add(userID, user)
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.LastUpdate = time.Now()
	if err := r.store.PutUser(ctx, user); err != nil {
		return err
	}
	r.cache.Add(user.UserID, user)
	return nil
}

func (r *userRepository) Modify(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error) {
	mu := r.locks.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	user, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	cp := user.Clone()
	if err := fn(cp); err != nil {
		return nil, err
	}
	if err := r.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *userRepository) Invalidate(userID string) {
	r.cache.Remove(userID)
}
