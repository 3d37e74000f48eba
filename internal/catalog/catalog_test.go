package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
documentTypes:
  - id: 2
    name: RUT
    description: Registro unico tributario
    mandatory: true
  - id: 1
    name: Camara de comercio
    mandatory: true
  - id: 5
    name: Brochure
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	types, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, 1, types[0].ID)
	assert.Equal(t, 2, types[1].ID)
	assert.True(t, types[1].Mandatory)
	assert.Equal(t, "Registro unico tributario", types[1].Description)
	assert.False(t, types[2].Mandatory)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad yaml", data: "documentTypes: [:"},
		{name: "zero id", data: "documentTypes:\n  - id: 0\n    name: X\n"},
		{name: "missing name", data: "documentTypes:\n  - id: 1\n"},
		{name: "duplicate id", data: "documentTypes:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestStatic_Get(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	got, err := s.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "RUT", got.Name)

	_, err = s.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestYAMLProvider_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	p, err := LoadYAML(path)
	require.NoError(t, err)

	types, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 3)

	updated := "documentTypes:\n  - id: 1\n    name: Camara de comercio\n    mandatory: true\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	types, err = p.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 1)

	_, err = p.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
