package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

// threadRow and userRow store the full document as jsonb next to the natural
// key, keeping the Postgres backend schema-compatible with the other stores.
type threadRow struct {
	bun.BaseModel `bun:"table:threads,alias:t"`

	ThreadID  string        `bun:"thread_id,pk"`
	Doc       models.Thread `bun:"doc,type:jsonb"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID    string      `bun:"user_id,pk"`
	Doc       models.User `bun:"doc,type:jsonb"`
	UpdatedAt time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// BunStore is the Postgres backend.
type BunStore struct {
	db *bun.DB
}

func OpenBunStore(ctx context.Context, cfg Config) (*BunStore, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
		sqldb.SetMaxIdleConns(cfg.PoolSize / 2)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}

	s := &BunStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}

	slog.Info("Postgres store opened",
		slog.String("type", "db"),
		slog.String("database", cfg.Database))
	return s, nil
}

func (s *BunStore) initSchema(ctx context.Context) error {
	for _, model := range []any{(*threadRow)(nil), (*userRow)(nil)} {
		if _, err := s.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *BunStore) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	row := new(threadRow)
	err := s.db.NewSelect().
		Model(row).
		Where("thread_id = ?", threadID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return &row.Doc, nil
}

func (s *BunStore) PutThread(ctx context.Context, thread *models.Thread) error {
	row := &threadRow{
		ThreadID:  thread.ThreadID,
		Doc:       *thread,
		UpdatedAt: time.Now(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (thread_id) DO UPDATE").
		Set("doc = EXCLUDED.doc").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert thread %s: %w", thread.ThreadID, err)
	}
	return nil
}

func (s *BunStore) AllThreads(ctx context.Context) ([]*models.Thread, error) {
	var rows []threadRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	threads := make([]*models.Thread, len(rows))
	for i := range rows {
		threads[i] = &rows[i].Doc
	}
	return threads, nil
}

func (s *BunStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &row.Doc, nil
}

func (s *BunStore) PutUser(ctx context.Context, user *models.User) error {
	row := &userRow{
		UserID:    user.UserID,
		Doc:       *user,
		UpdatedAt: time.Now(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("doc = EXCLUDED.doc").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.UserID, err)
	}
	return nil
}

func (s *BunStore) AllUsers(ctx context.Context) ([]*models.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*models.User, len(rows))
	for i := range rows {
		users[i] = &rows[i].Doc
	}
	return users, nil
}

func (s *BunStore) Close(context.Context) error {
	return s.db.Close()
}
