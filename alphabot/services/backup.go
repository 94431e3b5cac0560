package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-dev/alphabot/alphabot/database"
)

// BackupConfig points at an S3-compatible bucket (AWS, DigitalOcean Spaces,
// MinIO).
type BackupConfig struct {
	Key      string
	Secret   string
	Region   string
	Bucket   string
	Endpoint string
	Prefix   string
}

// BackupService periodically snapshots the thread and user tables to object
// storage.
type BackupService struct {
	client *s3.Client
	bucket string
	prefix string
	store  database.Store
}

func NewBackupService(cfg BackupConfig, store database.Store) (*BackupService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup storage config: %w", err)
	}

	return &BackupService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		store:  store,
	}, nil
}

// Backup snapshots both tables concurrently under one timestamp.
func (s *BackupService) Backup(ctx context.Context) error {
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		threads, err := s.store.AllThreads(gctx)
		if err != nil {
			return err
		}
		return s.upload(gctx, fmt.Sprintf("%s/threads-%s.json", s.prefix, stamp), threads)
	})
	g.Go(func() error {
		users, err := s.store.AllUsers(gctx)
		if err != nil {
			return err
		}
		return s.upload(gctx, fmt.Sprintf("%s/users-%s.json", s.prefix, stamp), users)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Database backup uploaded",
		slog.String("type", "db"),
		slog.String("stamp", stamp),
		slog.String("bucket", s.bucket))
	return nil
}

func (s *BackupService) upload(ctx context.Context, key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal backup %s: %w", key, err)
	}

	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(raw),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", key, err)
	}
	return nil
}
