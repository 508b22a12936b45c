package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/01101011010/Martin-Simonson/internal/sheet"
)

func testSnapshot(fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		FetchedAt: fetchedAt,
		Records: []sheet.Record{
			{"title_es": "Cuentos", "year": "2020"},
			{"title_es": "Otro", "year": "2021"},
		},
	}
}

func TestMemoryStoreMissReturnsNil(t *testing.T) {
	store := NewMemoryStore()

	snap, err := store.Load(context.Background(), "books")
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	saved := testSnapshot(time.Now())

	require.NoError(t, store.Save(ctx, "books", saved))

	loaded, err := store.Load(ctx, "books")
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	snap, err := store.Load(ctx, "books")
	require.NoError(t, err)
	require.Nil(t, snap)

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, "books", testSnapshot(fetchedAt)))

	loaded, err := store.Load(ctx, "books")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.FetchedAt.Equal(fetchedAt))
	require.Len(t, loaded.Records, 2)
	require.Equal(t, "Cuentos", loaded.Records[0].Get("title_es"))
}

func TestSQLiteStoreOverwrites(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "books", testSnapshot(time.Now())))

	// A later save replaces the snapshot wholesale, empty included.
	empty := &Snapshot{FetchedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, "books", empty))

	loaded, err := store.Load(ctx, "books")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Empty(t, loaded.Records)
}

func TestSQLiteStoreMalformedEntry(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, execErr := store.db.ExecContext(ctx,
		`INSERT INTO snapshots(key, payload) VALUES(?, ?)`, "books", []byte("not json"))
	require.NoError(t, execErr)

	snap, err := store.Load(ctx, "books")
	require.Error(t, err)
	require.Nil(t, snap)
}
