// Package memory provides mutex-guarded in-process repositories. They back the
// workflow tests and the verifyctl dry runs, and follow the same guarded
// transition contract as the postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
	"verifyapi/internal/verification"
)

// DocumentStore is an in-memory repository.DocumentRepository.
type DocumentStore struct {
	mu   sync.Mutex
	seq  int64
	docs map[string]model.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]model.Document)}
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

func (s *DocumentStore) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; ok {
		return nil, repository.ErrConflict
	}
	s.seq++
	d := cloneDocument(*doc)
	d.Seq = s.seq
	s.docs[d.ID] = d
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) FindByID(_ context.Context, id string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) ListByFarm(_ context.Context, farmID string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Document, 0)
	for _, d := range s.docs {
		if d.FarmID == farmID {
			items = append(items, cloneDocument(d))
		}
	}
	sortOldestFirst(items)
	return items, nil
}

func (s *DocumentStore) LatestFor(_ context.Context, farmID string, typeID int) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		all = append(all, d)
	}
	d, ok := verification.Latest(all, farmID, typeID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) ListPending(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]model.Document, 0)
	for _, d := range s.docs {
		if d.Status == model.StatusPending {
			pending = append(pending, cloneDocument(d))
		}
	}
	sortOldestFirst(pending)
	return &repository.PageResult[model.Document]{Items: page(pending, pq), Total: len(pending)}, nil
}

// Review applies the review under the store lock, so only one of several
// concurrent reviewers can observe the document as PENDING.
func (s *DocumentStore) Review(_ context.Context, id string, r repository.DocumentReview) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if d.Status != model.StatusPending {
		return nil, repository.ErrStaleState
	}
	d.Status = r.Status
	d.Comment = r.Comment
	d.ReviewerID = r.ReviewerID
	at := r.At
	d.ReviewedAt = &at
	s.docs[id] = d

	out := cloneDocument(d)
	return &out, nil
}

func sortOldestFirst(docs []model.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[j].NewerThan(docs[i]) })
}

func cloneDocument(d model.Document) model.Document {
	if d.File != nil {
		f := *d.File
		d.File = &f
	}
	if d.ReviewedAt != nil {
		t := *d.ReviewedAt
		d.ReviewedAt = &t
	}
	return d
}

func page[T any](items []T, pq repository.PageQuery) []T {
	limit := pq.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := pq.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
