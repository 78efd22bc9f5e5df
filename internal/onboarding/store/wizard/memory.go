// Package wizard persists the per-tenant onboarding aggregate.
package wizard

import (
	"context"
	"sync"

	"grcadmin/internal/onboarding/models"
	"grcadmin/pkg/domain"
	"grcadmin/pkg/platform/sentinel"
)

// InMemory keeps wizards in a map, one per tenant. It backs tests and local
// development; production deployments use Postgres.
type InMemory struct {
	mu      sync.RWMutex
	wizards map[domain.TenantID]*models.Wizard
}

// NewInMemory creates an empty in-memory wizard store.
func NewInMemory() *InMemory {
	return &InMemory{wizards: make(map[domain.TenantID]*models.Wizard)}
}

// Create stores a new wizard. A tenant may hold at most one.
func (s *InMemory) Create(ctx context.Context, w *models.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wizards[w.TenantID]; exists {
		return sentinel.ErrConflict
	}
	s.wizards[w.TenantID] = w.Clone()
	return nil
}

// FindByTenant returns the tenant's wizard or sentinel.ErrNotFound.
func (s *InMemory) FindByTenant(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wizards[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return w.Clone(), nil
}

// Execute runs mutate against the tenant's wizard under the store lock and
// persists the result with a bumped version. An error from mutate leaves the
// stored wizard untouched.
func (s *InMemory) Execute(ctx context.Context, tenantID domain.TenantID, mutate func(*models.Wizard) error) (*models.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.wizards[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := stored.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version = stored.Version + 1
	s.wizards[tenantID] = working
	return working.Clone(), nil
}
