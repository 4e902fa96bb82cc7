package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestSaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	payload := []byte(`{"schema":"floorplan","version":3,"data":{"walls":[],"rooms":[]}}`)
	require.NoError(t, repo.Save(ctx, "p1", 3, payload))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))
}

func TestSaveOverwrites(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "p1", 2, []byte(`{"v":2}`)))
	require.NoError(t, repo.Save(ctx, "p1", 3, []byte(`{"v":3}`)))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(got))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Version)
}

func TestGetMissing(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "p1", 3, []byte(`{}`)))
	require.NoError(t, repo.Save(ctx, "p2", 3, []byte(`{}`)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
	for _, info := range list {
		assert.Equal(t, 3, info.Version)
		assert.False(t, info.UpdatedAt.IsZero())
	}
}

func TestDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "p1", 3, []byte(`{}`)))
	require.NoError(t, repo.Delete(ctx, "p1"))

	_, err := repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "p1"), ErrNotFound)
}
