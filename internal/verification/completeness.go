// Package verification holds the pure decision rules of the farm verification
// workflow. Nothing here performs I/O; callers load the catalog and documents
// and pass them in, which keeps every evaluation reproducible.
package verification

import (
	"sort"

	"verifyapi/internal/model"
)

// latestKey identifies the (farm, document type) pair a document is filed under.
type latestKey struct {
	farmID string
	typeID int
}

// Index resolves the newest document per (farm, document type).
type Index struct {
	latest map[latestKey]model.Document
}

// NewIndex builds an index over docs. Input order does not matter: the newest
// record wins by submission time, then by insertion sequence.
func NewIndex(docs []model.Document) *Index {
	idx := &Index{latest: make(map[latestKey]model.Document, len(docs))}
	for _, d := range docs {
		k := latestKey{farmID: d.FarmID, typeID: d.DocumentTypeID}
		cur, ok := idx.latest[k]
		if !ok || d.NewerThan(cur) {
			idx.latest[k] = d
		}
	}
	return idx
}

// Latest returns the newest document for the pair, if any.
func (i *Index) Latest(farmID string, typeID int) (model.Document, bool) {
	d, ok := i.latest[latestKey{farmID: farmID, typeID: typeID}]
	return d, ok
}

// Latest returns the newest document among docs for the given farm and type.
func Latest(docs []model.Document, farmID string, typeID int) (model.Document, bool) {
	var (
		best  model.Document
		found bool
	)
	for _, d := range docs {
		if d.FarmID != farmID || d.DocumentTypeID != typeID {
			continue
		}
		if !found || d.NewerThan(best) {
			best, found = d, true
		}
	}
	return best, found
}

// MandatoryTypes returns the mandatory subset of the catalog ordered by ID.
func MandatoryTypes(catalog []model.DocumentType) []model.DocumentType {
	out := make([]model.DocumentType, 0, len(catalog))
	seen := make(map[int]struct{}, len(catalog))
	for _, t := range catalog {
		if !t.Mandatory {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Evaluate reports whether every mandatory document type has an approved
// latest document for farmID. Documents belonging to other farms are ignored.
// An empty mandatory set is complete.
func Evaluate(farmID string, catalog []model.DocumentType, docs []model.Document) model.Completeness {
	mandatory := MandatoryTypes(catalog)
	idx := NewIndex(docs)

	res := model.Completeness{
		FarmID:         farmID,
		PendingTypes:   make([]model.PendingType, 0),
		TotalMandatory: len(mandatory),
	}
	for _, t := range mandatory {
		d, ok := idx.Latest(farmID, t.ID)
		if ok && d.Status == model.StatusApproved {
			res.ApprovedCount++
			continue
		}
		res.PendingTypes = append(res.PendingTypes, model.PendingType{ID: t.ID, Name: t.Name})
	}
	res.Complete = res.ApprovedCount == res.TotalMandatory
	return res
}
