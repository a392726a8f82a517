package cli

import (
	"errors"
	"log"

	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/repository"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
)

// backends holds the opened storage connections; close releases them.
type backends struct {
	store    repository.Repository
	postgres *storage.Postgres
	redis    *storage.RedisClient
}

func openStore(cfg *config.Config) (*backends, error) {
	b := &backends{}

	switch cfg.Database.Driver {
	case "postgres":
		pg, err := storage.NewPostgres(cfg.Database.URL, !cfg.IsProduction())
		if err != nil {
			return nil, err
		}
		b.postgres = pg
		b.store = repository.NewStore(pg)
		log.Println("Connected to postgres successfully")
	default:
		b.store = memory.New()
		log.Println("Using in-memory storage, data is lost on restart")
	}

	return b, nil
}

func (b *backends) openRedis(cfg config.RedisConfig) error {
	if !cfg.Enabled() {
		log.Println("Redis not configured, rate limiting and logout revocation disabled")
		return nil
	}

	redis, err := storage.NewRedis(cfg.GetRedisAddr(), cfg.Password, cfg.DB)
	if err != nil {
		return err
	}
	b.redis = redis
	log.Println("Connected to redis successfully")

	return nil
}

// migrate creates or updates the schema. It is a no-op for the memory driver.
func (b *backends) migrate() error {
	if b.postgres == nil {
		return nil
	}
	return b.postgres.AutoMigrate()
}

func (b *backends) close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.postgres != nil {
		errs = append(errs, b.postgres.Close())
	}
	return errors.Join(errs...)
}
