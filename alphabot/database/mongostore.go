package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

const (
	threadsCollection = "Threads"
	usersCollection   = "Users"

	defaultMongoDB      = "alphabot"
	defaultMongoTimeout = 10 * time.Second
)

// MongoStore persists records in two collections keyed by their natural IDs,
// upserting full documents on write.
type MongoStore struct {
	client  *mongo.Client
	threads *mongo.Collection
	users   *mongo.Collection
}

func OpenMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = defaultMongoDB
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultMongoTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo unreachable: %w", err)
	}

	db := client.Database(dbName)
	slog.Info("Mongo store opened",
		slog.String("type", "db"),
		slog.String("database", dbName))

	return &MongoStore{
		client:  client,
		threads: db.Collection(threadsCollection),
		users:   db.Collection(usersCollection),
	}, nil
}

func (s *MongoStore) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	var thread models.Thread
	err := s.threads.FindOne(ctx, bson.M{"threadID": threadID}).Decode(&thread)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return &thread, nil
}

func (s *MongoStore) PutThread(ctx context.Context, thread *models.Thread) error {
	_, err := s.threads.ReplaceOne(ctx,
		bson.M{"threadID": thread.ThreadID},
		thread,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert thread %s: %w", thread.ThreadID, err)
	}
	return nil
}

func (s *MongoStore) AllThreads(ctx context.Context) ([]*models.Thread, error) {
	cursor, err := s.threads.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	var threads []*models.Thread
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}
	return threads, nil
}

func (s *MongoStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"userID": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

func (s *MongoStore) PutUser(ctx context.Context, user *models.User) error {
	_, err := s.users.ReplaceOne(ctx,
		bson.M{"userID": user.UserID},
		user,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.UserID, err)
	}
	return nil
}

func (s *MongoStore) AllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
