// Package app wires configuration into the stores, archive and pipeline
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/supabase-community/supabase-go"

	"subtitle-collector/internal/archive"
	"subtitle-collector/internal/config"
	"subtitle-collector/internal/database"
	"subtitle-collector/internal/repository"
	"subtitle-collector/internal/services"
)

type Components struct {
	Store repository.SubtitleStore
	YTDLP *services.YTDLP
	// Redis is nil when REDIS_URL is not set.
	Redis *database.RedisClients

	cfg      *config.Config
	archiver services.Archiver
	metadata services.MetadataFetcher
	closers  []func()
}

// Build opens every backend selected by cfg. Call Close when done.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{cfg: cfg}

	store, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store
	log.Printf("✓ Primary store ready (%s)", cfg.StoreDriver)

	if cfg.ArchiveEnabled {
		archiver, err := c.openArchive()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.archiver = archiver
		log.Printf("✓ Archive mirror enabled (%s)", cfg.ArchiveDriver)
	}

	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Redis = redisClients
		c.closers = append(c.closers, redisClients.Close)
		log.Println("✓ Redis connected")
	}

	if err := os.MkdirAll(cfg.StagingDir, 0o755); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}

	c.YTDLP = services.NewYTDLP(services.ExecRunner{}, cfg.YTDLPPath, cfg.ToolTimeout)
	c.metadata = c.YTDLP
	if cfg.MetadataSource == "innertube" {
		c.metadata = services.NewInnertubeMetadata()
	}

	return c, nil
}

// NewPipeline assembles the submission pipeline. observer may be nil.
func (c *Components) NewPipeline(observer services.Observer) (*services.Pipeline, error) {
	loc, err := c.cfg.Location()
	if err != nil {
		return nil, err
	}

	pcfg := services.PipelineConfig{
		Metadata:   c.metadata,
		Captions:   c.YTDLP,
		Guard:      services.NewDuplicateGuard(c.Store),
		Persister:  services.NewPersister(c.Store, c.archiver),
		StagingDir: c.cfg.StagingDir,
		Location:   loc,
		Observer:   observer,
	}
	if c.cfg.CaptionCleanup {
		pcfg.CaptionCleanup = []services.NormalizeOption{services.DropCaptionHeader(), services.CollapseRollingCues()}
	}
	if c.Redis != nil {
		pcfg.Locker = services.NewRedisLocker(c.Redis.Locks, 2*c.cfg.ToolTimeout+time.Minute)
	}
	return services.NewPipeline(pcfg), nil
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Components) openStore(ctx context.Context) (repository.SubtitleStore, error) {
	cfg := c.cfg

	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		if err := database.RunMigrations(pool, "migrations"); err != nil {
			return nil, err
		}
		return repository.NewSubtitleRepo(pool), nil

	case "mongo":
		conn, err := database.NewMongoConn(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { conn.Close() })
		return repository.NewMongoSubtitleRepo(conn.Collection), nil

	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { db.Close() })
		return repository.NewSQLiteSubtitleRepo(ctx, db)

	case "dynamodb":
		awsCfg, err := database.LoadAWSConfig(cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return repository.NewDynamoSubtitleRepo(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (c *Components) openArchive() (services.Archiver, error) {
	cfg := c.cfg

	var blobs archive.BlobStore
	switch cfg.ArchiveDriver {
	case "local":
		local, err := archive.NewLocalStore(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		blobs = local

	case "s3":
		awsCfg, err := database.LoadAWSConfig(cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		blobs = archive.NewS3Store(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket)

	case "supabase":
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		blobs = archive.NewSupabaseStore(client.Storage, cfg.ArchiveBucket)

	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.ArchiveDriver)
	}

	return archive.NewLedger(blobs, cfg.ArchiveLinkColumn), nil
}
