package memory

import (
	"context"
	"sort"
	"sync"

	"verifyapi/internal/model"
	"verifyapi/internal/repository"
)

// RoleGrantStore is an in-memory repository.RoleGrantRepository.
type RoleGrantStore struct {
	mu     sync.Mutex
	seq    int64
	grants map[string]grantRow
}

type grantRow struct {
	grant model.RoleGrant
	seq   int64
}

func NewRoleGrantStore() *RoleGrantStore {
	return &RoleGrantStore{grants: make(map[string]grantRow)}
}

var _ repository.RoleGrantRepository = (*RoleGrantStore)(nil)

func (s *RoleGrantStore) Create(_ context.Context, g *model.RoleGrant) (*model.RoleGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.grants[g.ID]; ok {
		return nil, repository.ErrConflict
	}
	for _, row := range s.grants {
		cur := row.grant
		if cur.UserID == g.UserID && cur.Role == g.Role && cur.Status == model.StatusPending {
			return nil, repository.ErrConflict
		}
		if claimsSameFarm(cur, *g) {
			return nil, repository.ErrFarmClaimed
		}
	}
	s.seq++
	s.grants[g.ID] = grantRow{grant: *g, seq: s.seq}
	out := *g
	return &out, nil
}

// claimsSameFarm reports whether live FINCA grant cur already holds the farm
// that FINCA grant g names.
func claimsSameFarm(cur, g model.RoleGrant) bool {
	if cur.Role != model.RoleFinca || g.Role != model.RoleFinca || g.Metadata.FarmID == "" {
		return false
	}
	return cur.Status != model.StatusRejected && cur.Metadata.FarmID == g.Metadata.FarmID
}

func (s *RoleGrantStore) FindByID(_ context.Context, id string) (*model.RoleGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.grants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := row.grant
	return &out, nil
}

func (s *RoleGrantStore) ListByUser(_ context.Context, userID string) ([]model.RoleGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filter(func(g model.RoleGrant) bool { return g.UserID == userID })
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	return grantsOf(rows), nil
}

func (s *RoleGrantStore) ListByFarm(_ context.Context, farmID string) ([]model.RoleGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filter(func(g model.RoleGrant) bool {
		return g.Role == model.RoleFinca && g.Metadata.FarmID == farmID
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	return grantsOf(rows), nil
}

func (s *RoleGrantStore) ListPending(_ context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.RoleGrant], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filter(func(g model.RoleGrant) bool {
		return g.Status == model.StatusPending && (role == "" || g.Role == role)
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	items := grantsOf(rows)
	return &repository.PageResult[model.RoleGrant]{Items: page(items, pq), Total: len(items)}, nil
}

func (s *RoleGrantStore) Decide(_ context.Context, id string, d model.GrantDecision) (*model.RoleGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.grants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if row.grant.Status != model.StatusPending {
		return nil, repository.ErrStaleState
	}
	row.grant.Status = d.Status
	row.grant.DecidedBy = d.DecidedBy
	row.grant.UpdatedAt = d.At
	if d.Reason != "" {
		row.grant.Metadata.RejectionReason = d.Reason
	}
	s.grants[id] = row

	out := row.grant
	return &out, nil
}

func (s *RoleGrantStore) filter(keep func(model.RoleGrant) bool) []grantRow {
	rows := make([]grantRow, 0)
	for _, row := range s.grants {
		if keep(row.grant) {
			rows = append(rows, row)
		}
	}
	return rows
}

func grantsOf(rows []grantRow) []model.RoleGrant {
	out := make([]model.RoleGrant, len(rows))
	for i, row := range rows {
		out[i] = row.grant
	}
	return out
}
