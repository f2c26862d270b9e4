package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromJSON(t *testing.T) {
	dataDir := t.TempDir()
	payload := `[["Name","Category"],["Milk","Dairy"],["Bread","Bakery"]]`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "groceries.json"), []byte(payload), 0o644))

	loader := NewLoader(dataDir, t.TempDir())

	columns, rows, err := loader.Load("groceries")

	assert.NoError(t, err)
	assert.Equal(t, []string{"Name", "Category"}, columns)
	assert.Equal(t, [][]string{{"Milk", "Dairy"}, {"Bread", "Bakery"}}, rows)
}

func TestLoad_UnknownCategory(t *testing.T) {
	loader := NewLoader(t.TempDir(), t.TempDir())

	_, _, err := loader.Load("nonexistent")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_BrokenJSON(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "bad.json"), []byte("{"), 0o644))

	loader := NewLoader(dataDir, t.TempDir())

	_, _, err := loader.Load("bad")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoad_EmptyDatasetIsNotFound(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "empty.json"), []byte("[]"), 0o644))

	loader := NewLoader(dataDir, t.TempDir())

	_, _, err := loader.Load("empty")

	assert.ErrorIs(t, err, ErrNotFound)
}
