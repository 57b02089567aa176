package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	sc "github.com/dmitrijs2005/phoenixlocker/internal/server/config"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// LatestSnapshotKey always points at the most recent export.
const LatestSnapshotKey = "snapshots/latest.json"

// DownloadURLTTL bounds the lifetime of presigned snapshot links.
const DownloadURLTTL = 15 * time.Minute

// objectStore is the part of S3 the snapshot service uses.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PresignGet(ctx context.Context, in *s3.GetObjectInput, ttl time.Duration) (string, error)
}

// s3Store pairs a client with a presigner built on it.
type s3Store struct {
	*s3.Client
	presigner *s3.PresignClient
}

func (s s3Store) PresignGet(ctx context.Context, in *s3.GetObjectInput, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectStore {
		c := s3.NewFromConfig(cfg, optFns...)
		return s3Store{Client: c, presigner: s3.NewPresignClient(c)}
	}
)

// Snapshotter produces a consistent copy of the ledger.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// SnapshotService exports ledger snapshots to S3-compatible storage and reads
// them back.
type SnapshotService struct {
	source Snapshotter
	config *sc.Config
	clock  clockwork.Clock
	logger logging.Logger

	mu     sync.Mutex
	client objectStore
}

func NewSnapshotService(source Snapshotter, cfg *sc.Config, clock clockwork.Clock, logger logging.Logger) *SnapshotService {
	return &SnapshotService{
		source: source,
		config: cfg,
		clock:  clock,
		logger: logger.With("module", "snapshot"),
	}
}

// SnapshotKey names the object an export taken at t is stored under.
func SnapshotKey(t time.Time, id uuid.UUID) string {
	t = t.UTC()
	return fmt.Sprintf("snapshots/%d/%02d/%02d/%d-%v.json", t.Year(), t.Month(), t.Day(), t.Unix(), id)
}

// getClient builds the S3 client on first use. A failed build is not
// cached, so the next call tries again.
func (s *SnapshotService) getClient(ctx context.Context) (objectStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	s.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return s.client, nil
}

// Export stores a fresh snapshot under a new key and under LatestSnapshotKey.
// It returns the new key.
func (s *SnapshotService) Export(ctx context.Context) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := SnapshotKey(snap.TakenAt, uuid.New())
	for _, k := range []string{key, LatestSnapshotKey} {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.config.S3Bucket),
			Key:         aws.String(k),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return "", fmt.Errorf("put %s: %w", k, err)
		}
	}

	s.logger.Info(ctx, "snapshot exported", "key", key, "accounts", len(snap.Accounts), "total_locked", snap.TotalLocked)
	return key, nil
}

// DownloadURL returns a presigned GET link for key, valid for
// DownloadURLTTL.
func (s *SnapshotService) DownloadURL(ctx context.Context, key string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}
	url, err := client.PresignGet(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, DownloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return url, nil
}

// Load fetches and decodes the snapshot stored under key.
func (s *SnapshotService) Load(ctx context.Context, key string) (*models.Snapshot, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	snap := &models.Snapshot{}
	if err := json.NewDecoder(out.Body).Decode(snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return snap, nil
}

// Run exports a snapshot every interval until ctx is done. Failed exports
// are logged and retried on the next tick.
func (s *SnapshotService) Run(ctx context.Context, interval time.Duration) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if _, err := s.Export(ctx); err != nil {
				s.logger.Error(ctx, "snapshot export failed", "error", err)
			}
		}
	}
}
