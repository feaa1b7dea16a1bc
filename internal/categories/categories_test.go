package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cats := Default()
	assert.Len(t, cats, 40)
	assert.Equal(t, "cs.AI", cats[0])
	assert.Equal(t, "cs.SY", cats[len(cats)-1])
	require.NoError(t, Validate(cats))

	// Callers get their own copy.
	cats[0] = "changed"
	assert.Equal(t, "cs.AI", Default()[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		wantErr string
	}{
		{"ok", []string{"cs.AI", "math.NT", "q-bio.QM", "hep-th"}, ""},
		{"empty", nil, "no categories given"},
		{"malformed", []string{"cs.AI", "CS AI"}, `invalid category code "CS AI"`},
		{"injection", []string{"cs.AI+OR+all:x"}, "invalid category code"},
		{"duplicate", []string{"cs.AI", "cs.LG", "cs.AI"}, `duplicate category "cs.AI"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.codes)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"cs.AI", "cs.LG"}, Normalize([]string{" cs.AI ", "", "  ", "cs.LG"}))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - cs.AI\n  - ' cs.CL '\n  - stat.ML\n"), 0o644))

	cats, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs.AI", "cs.CL", "stat.ML"}, cats)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading category file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("categories: [cs.AI\n"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "parsing category file")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("categories: []\n"), 0o644))
	_, err = LoadFile(empty)
	assert.ErrorContains(t, err, "no categories given")
}
