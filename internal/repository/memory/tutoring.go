package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateDoubt(ctx context.Context, doubt *models.Doubt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doubt.ID == uuid.Nil {
		doubt.ID = uuid.New()
	}
	doubt.CreatedAt = time.Now()
	stored := *doubt
	s.doubts[doubt.ID] = &stored
	return nil
}

func (s *Store) ResolveDoubt(ctx context.Context, id uuid.UUID, answer string, tokensUsed int) (*models.Doubt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.doubts[id]
	if !ok {
		return nil, fmt.Errorf("doubt %w", apperr.ErrNotFound)
	}
	d.AIResponse = &answer
	d.IsResolved = true
	d.TokensUsed = tokensUsed

	out := *d
	return &out, nil
}

func (s *Store) GetDoubt(ctx context.Context, id uuid.UUID) (*models.Doubt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doubts[id]
	if !ok {
		return nil, nil
	}
	out := *d
	return &out, nil
}

func (s *Store) ListDoubts(ctx context.Context, userID uuid.UUID) ([]models.Doubt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doubts := make([]models.Doubt, 0)
	for _, d := range s.doubts {
		if d.UserID == userID {
			doubts = append(doubts, *d)
		}
	}
	sort.Slice(doubts, func(i, j int) bool {
		return doubts[i].CreatedAt.After(doubts[j].CreatedAt)
	})
	return doubts, nil
}

func (s *Store) CreateDerivation(ctx context.Context, derivation *models.Derivation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if derivation.ID == uuid.Nil {
		derivation.ID = uuid.New()
	}
	derivation.CreatedAt = time.Now()
	stored := *derivation
	s.derivations[derivation.ID] = &stored
	return nil
}

func (s *Store) ResolveDerivation(ctx context.Context, id uuid.UUID, steps string, tokensUsed int) (*models.Derivation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.derivations[id]
	if !ok {
		return nil, fmt.Errorf("derivation %w", apperr.ErrNotFound)
	}
	d.DerivationSteps = &steps
	d.TokensUsed = tokensUsed

	out := *d
	return &out, nil
}

func (s *Store) GetDerivation(ctx context.Context, id uuid.UUID) (*models.Derivation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.derivations[id]
	if !ok {
		return nil, nil
	}
	out := *d
	return &out, nil
}

func (s *Store) ListDerivations(ctx context.Context, userID uuid.UUID) ([]models.Derivation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	derivations := make([]models.Derivation, 0)
	for _, d := range s.derivations {
		if d.UserID == userID {
			derivations = append(derivations, *d)
		}
	}
	sort.Slice(derivations, func(i, j int) bool {
		return derivations[i].CreatedAt.After(derivations[j].CreatedAt)
	})
	return derivations, nil
}
