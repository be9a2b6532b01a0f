package source

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFile(t *testing.T) {
	want := map[string]string{"color": "blue", "size": "3", "enabled": "true"}

	for _, tc := range []struct{ name, content string }{
		{"dict.json", `{"color": "blue", "size": 3, "enabled": true}`},
		{"dict.yaml", "color: blue\nsize: 3\nenabled: true\n"},
		{"dict.env", "color=blue\nsize=3\nenabled=true\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := File(write(t, tc.name, tc.content))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFileErrors(t *testing.T) {
	_, err := File(write(t, "dict.txt", "color=blue"))
	assert.Error(t, err)

	_, err = File(write(t, "dict.json", `{"nested": {"a": 1}}`))
	assert.Error(t, err)

	_, err = File(write(t, "dict.yaml", "- a\n- b\n"))
	assert.Error(t, err)

	_, err = File(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	lookup, closer, err := Open("colors", write(t, "colors.json", `{"color": "blue"}`))
	require.NoError(t, err)
	defer closer.Close()

	v, found, err := lookup("color")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "blue", v)

	_, found, err = lookup("nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE colors (key TEXT PRIMARY KEY, value TEXT)`,
		`INSERT INTO colors VALUES ('color', 'blue'), ('unset', NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	lookup, closer, err := Open("colors", path)
	require.NoError(t, err)
	defer closer.Close()

	v, found, err := lookup("color")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "blue", v)

	_, found, err = lookup("unset")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = lookup("nonexistent")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = Open("sizes", path)
	assert.Error(t, err, "a missing table fails at open")
}

func TestSecrets(t *testing.T) {
	lookup, err := Secrets(write(t, "vault.env", "API_KEY=s3cr3t\n"))
	require.NoError(t, err)

	v, found := lookup("API_KEY")
	assert.True(t, found)
	assert.Equal(t, "s3cr3t", string(v))
}
