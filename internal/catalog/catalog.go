// Package catalog supplies the configured document types.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"verifyapi/internal/model"
)

// ErrUnknownType is returned by Get when the catalog has no type with the given ID.
var ErrUnknownType = errors.New("unknown document type")

// Provider is the configuration collaborator that owns the document type catalog.
type Provider interface {
	// List returns every configured type ordered by ID.
	List(ctx context.Context) ([]model.DocumentType, error)
	// Get returns the type with the given ID or ErrUnknownType.
	Get(ctx context.Context, id int) (model.DocumentType, error)
}

// File is the top-level structure of the catalog YAML file.
type File struct {
	DocumentTypes []model.DocumentType `yaml:"documentTypes"`
}

// Static is an immutable in-memory catalog.
type Static struct {
	types []model.DocumentType
}

// NewStatic validates types and returns a catalog serving them.
func NewStatic(types []model.DocumentType) (*Static, error) {
	if err := validate(types); err != nil {
		return nil, err
	}
	out := append([]model.DocumentType(nil), types...)
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return &Static{types: out}, nil
}

func (s *Static) List(context.Context) ([]model.DocumentType, error) {
	return append([]model.DocumentType(nil), s.types...), nil
}

func (s *Static) Get(_ context.Context, id int) (model.DocumentType, error) {
	return find(s.types, id)
}

// YAMLProvider serves the catalog from a YAML file. The file is re-read when
// its modification time changes, so edits apply to evaluations made afterwards.
type YAMLProvider struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	current *Static
}

// LoadYAML reads the catalog at path. The file must exist and parse.
func LoadYAML(path string) (*YAMLProvider, error) {
	p := &YAMLProvider{path: path}
	if _, err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *YAMLProvider) List(ctx context.Context) ([]model.DocumentType, error) {
	s, err := p.load()
	if err != nil {
		return nil, err
	}
	return s.List(ctx)
}

func (p *YAMLProvider) Get(ctx context.Context, id int) (model.DocumentType, error) {
	s, err := p.load()
	if err != nil {
		return model.DocumentType{}, err
	}
	return s.Get(ctx, id)
}

func (p *YAMLProvider) load() (*Static, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := os.Stat(p.path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if p.current != nil && st.ModTime().Equal(p.modTime) {
		return p.current, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.current = s
	p.modTime = st.ModTime()
	return s, nil
}

// Parse decodes a catalog YAML document.
func Parse(data []byte) (*Static, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewStatic(f.DocumentTypes)
}

func validate(types []model.DocumentType) error {
	seen := make(map[int]struct{}, len(types))
	for _, t := range types {
		if t.ID <= 0 {
			return fmt.Errorf("document type %q: id must be positive", t.Name)
		}
		if t.Name == "" {
			return fmt.Errorf("document type %d: name is required", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("document type %d: duplicate id", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func find(types []model.DocumentType, id int) (model.DocumentType, error) {
	i := sort.Search(len(types), func(i int) bool { return types[i].ID >= id })
	if i < len(types) && types[i].ID == id {
		return types[i], nil
	}
	return model.DocumentType{}, fmt.Errorf("%w: %d", ErrUnknownType, id)
}
