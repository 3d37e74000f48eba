package memory

import (
	"context"
	"sort"
	"sync"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

// FarmStore is an in-memory repository.FarmRepository. Tag and tax ID are
// unique across all farms.
type FarmStore struct {
	mu    sync.Mutex
	farms map[string]model.Farm
}

func NewFarmStore() *FarmStore {
	return &FarmStore{farms: make(map[string]model.Farm)}
}

var _ repository.FarmRepository = (*FarmStore)(nil)

func (s *FarmStore) Create(_ context.Context, f *model.Farm) (*model.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.farms[f.ID]; ok {
		return nil, repository.ErrConflict
	}
	if s.clashes(*f) {
		return nil, repository.ErrConflict
	}
	s.farms[f.ID] = *f
	out := *f
	return &out, nil
}

func (s *FarmStore) FindByID(_ context.Context, id string) (*model.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.farms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *FarmStore) List(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.Farm], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Farm, 0, len(s.farms))
	for _, f := range s.farms {
		items = append(items, f)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].LegalName != items[j].LegalName {
			return items[i].LegalName < items[j].LegalName
		}
		return items[i].ID < items[j].ID
	})
	return &repository.PageResult[model.Farm]{Items: page(items, pq), Total: len(items)}, nil
}

func (s *FarmStore) Update(_ context.Context, f *model.Farm) (*model.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.farms[f.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if s.clashes(*f) {
		return nil, repository.ErrConflict
	}
	next := *f
	next.CreatedAt = cur.CreatedAt
	s.farms[f.ID] = next
	return &next, nil
}

// clashes reports whether another farm already uses f's tag or tax ID.
func (s *FarmStore) clashes(f model.Farm) bool {
	for id, other := range s.farms {
		if id == f.ID {
			continue
		}
		if other.Tag == f.Tag || other.TaxID == f.TaxID {
			return true
		}
	}
	return false
}
