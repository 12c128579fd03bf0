package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func favorite(userID int64, bookID string, title string) models.FavoriteBook {
	return models.FavoriteBook{
		Book: models.Book{
			ID:          bookID,
			Title:       title,
			Authors:     "Автор",
			Description: "Описание",
			Thumbnail:   "http://x/c.jpg",
		},
		UserID: userID,
	}
}

func TestUpsertFavoriteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "gb1", "Первое название")))
	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "gb1", "Второе название")))

	favorites, err := store.ListFavorites(ctx, 1)
	require.NoError(t, err)

	// Повторный upsert не плодит строк, а перезаписывает поля.
	require.Len(t, favorites, 1)
	assert.Equal(t, "Второе название", favorites[0].Title)
	assert.Equal(t, "gb1", favorites[0].ID)
	assert.Equal(t, int64(1), favorites[0].UserID)
}

func TestDeleteFavorite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "OL123W", "Книга")))

	removed, err := store.DeleteFavorite(ctx, 1, "OL123W")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.DeleteFavorite(ctx, 1, "OL123W")
	require.NoError(t, err)
	assert.False(t, removed)

	favorites, err := store.ListFavorites(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestDeleteFavoriteMissingKeyKeepsState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "gb1", "Книга")))

	removed, err := store.DeleteFavorite(ctx, 1, "no-such-book")
	require.NoError(t, err)
	assert.False(t, removed)

	favorites, err := store.ListFavorites(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestListFavoritesIsolatedByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "gb1", "Книга первого")))
	require.NoError(t, store.UpsertFavorite(ctx, favorite(2, "gb2", "Книга второго")))
	require.NoError(t, store.UpsertFavorite(ctx, favorite(2, "gb3", "Ещё книга второго")))

	first, err := store.ListFavorites(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "gb1", first[0].ID)

	second, err := store.ListFavorites(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	for _, fav := range second {
		assert.NotEqual(t, "gb1", fav.ID)
	}
}

func TestSameBookDifferentUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Одна и та же книга у двух пользователей — две независимые записи.
	require.NoError(t, store.UpsertFavorite(ctx, favorite(1, "gb1", "Книга")))
	require.NoError(t, store.UpsertFavorite(ctx, favorite(2, "gb1", "Книга")))

	removed, err := store.DeleteFavorite(ctx, 1, "gb1")
	require.NoError(t, err)
	assert.True(t, removed)

	second, err := store.ListFavorites(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestEnsureUserIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureUser(ctx, 42, "reader"))
	require.NoError(t, store.EnsureUser(ctx, 42, "renamed"))
}
