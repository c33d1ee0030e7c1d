package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalDate(t *testing.T) {
	date, err := parseOptionalDate("")
	require.NoError(t, err)
	assert.True(t, date.IsZero())

	date, err = parseOptionalDate("2024-01-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), date)

	_, err = parseOptionalDate("20/01/2024")
	assert.Error(t, err)
}

func TestParseIndexNames(t *testing.T) {
	assert.Nil(t, parseIndexNames(""))
	assert.Equal(t, []indexes.Name{indexes.NDVI, indexes.BSI}, parseIndexNames(" ndvi, ,BSI "))
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chaiten.geojson", "grid.JSON", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.geojson"), os.ModePerm))

	files, err := listFiles(dir, ".geojson", ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{"chaiten.geojson", "grid.JSON"}, files)
}
