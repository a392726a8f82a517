package repository

import (
	"context"

	"github.com/aman-churiwal/tutor-gateway/internal/storage"
)

// Store bundles every Postgres-backed repository so a single value can be
// handed to the services, mirroring the in-memory store.
type Store struct {
	*UserRepository
	*TutoringRepository
	*LearningRepository
	*EngagementRepository
	*UsageRepository

	db *storage.Postgres
}

func NewStore(db *storage.Postgres) *Store {
	return &Store{
		UserRepository:       NewUserRepository(db),
		TutoringRepository:   NewTutoringRepository(db),
		LearningRepository:   NewLearningRepository(db),
		EngagementRepository: NewEngagementRepository(db),
		UsageRepository:      NewUsageRepository(db),
		db:                   db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
