package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_add_views.up.sql":   {Data: []byte("CREATE TABLE views ();")},
		"m/000002_add_views.down.sql": {Data: []byte("DROP TABLE views;")},
		"m/000001_init.up.sql":        {Data: []byte("CREATE TABLE users ();")},
		"m/000001_init.down.sql":      {Data: []byte("DROP TABLE users;")},
		"m/README.md":                 {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "init", got[0].Name)
	assert.Equal(t, "000002_add_views", got[1].String())
	assert.Equal(t, "DROP TABLE views;", got[1].DownScript)
}

func TestLoadMigrations_Errors(t *testing.T) {
	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{"m/000001_init.up.sql": {Data: []byte("SELECT 1;")}}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("non numeric version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/first_init.up.sql":   {Data: []byte("SELECT 1;")},
			"m/first_init.down.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1;")},
			"m/000001_b.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_b.down.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, "000001_init", ms[0].String())
	assert.Contains(t, ms[0].UpScript, "chk_files_single_owner")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS files")

	require.Len(t, ms, 2)
	assert.Equal(t, "000002_categories", ms[1].String())
	assert.Contains(t, ms[1].UpScript, "REFERENCES files (id) ON DELETE SET NULL")
	assert.Contains(t, ms[1].DownScript, "DROP TABLE IF EXISTS categories")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
