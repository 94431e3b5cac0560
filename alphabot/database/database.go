// Package database provides the persistence backends for thread and user
// records. Three interchangeable stores exist: flat JSON files, MongoDB, and
// Postgres. The repositories layer on top adds caching and locking.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("database: record not found")

// Backend names accepted in the config file.
const (
	BackendJSON     = "json"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Store is the key-value persistence surface the repositories need.
type Store interface {
	GetThread(ctx context.Context, threadID string) (*models.Thread, error)
	PutThread(ctx context.Context, thread *models.Thread) error
	AllThreads(ctx context.Context) ([]*models.Thread, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
	PutUser(ctx context.Context, user *models.User) error
	AllUsers(ctx context.Context) ([]*models.User, error)

	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// json backend
	Dir string `toml:"dir"`

	// mongo backend
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`

	// postgres backend
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// Open constructs the store named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendJSON, "":
		return OpenJSONStore(cfg.Dir)
	case BackendMongo:
		return OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	case BackendPostgres:
		return OpenBunStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("database: unknown backend %q", cfg.Backend)
	}
}
