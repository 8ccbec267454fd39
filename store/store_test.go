package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/agentools/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Counter int               `json:"counter"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// exerciseStore runs the Store contract against any backend.
func exerciseStore(t *testing.T, st store.Store) {
	ctx := context.Background()

	var doc testDoc
	found, err := st.Load(ctx, "missing", &doc)
	require.NoError(t, err)
	assert.False(t, found)

	names, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	doc = testDoc{Counter: 1, Labels: map[string]string{"env": "test"}}
	require.NoError(t, st.Save(ctx, "alpha", &doc))
	require.NoError(t, st.Save(ctx, "beta", &testDoc{Counter: 2}))

	var loaded testDoc
	found, err = st.Load(ctx, "alpha", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc, loaded)

	// overwrite
	doc.Counter = 42
	require.NoError(t, st.Save(ctx, "alpha", &doc))
	found, err = st.Load(ctx, "alpha", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, loaded.Counter)

	names, err = st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	require.NoError(t, st.Delete(ctx, "alpha"))
	found, err = st.Load(ctx, "alpha", &loaded)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting a missing document is not an error
	require.NoError(t, st.Delete(ctx, "alpha"))

	names, err = st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, names)
}

func Test_MemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemoryStore())
}

func Test_FileStore(t *testing.T) {
	exerciseStore(t, store.NewFileStore(filepath.Join(t.TempDir(), "data")))
}

func Test_FileStore_Corrupted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st := store.NewFileStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	var doc testDoc
	found, err := st.Load(ctx, "broken", &doc)
	require.NoError(t, err)
	assert.False(t, found)

	// the next Save replaces the corrupted file
	require.NoError(t, st.Save(ctx, "broken", &testDoc{Counter: 7}))
	found, err = st.Load(ctx, "broken", &doc)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, doc.Counter)
}

func Test_SQLiteStore(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "db", "documents.db"))
	require.NoError(t, err)
	exerciseStore(t, st)
}
