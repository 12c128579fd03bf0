package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbot/internal/models"
)

// fakeCatalog — каталог для тестов: фиксированный ответ плюс счетчик вызовов.
type fakeCatalog struct {
	books []models.Book
	err   error
	calls int
}

func (f *fakeCatalog) Search(_ context.Context, _ string, _ int) ([]models.Book, error) {
	f.calls++
	return f.books, f.err
}

func TestAggregatorGoogleFirst(t *testing.T) {
	google := &fakeCatalog{books: []models.Book{{
		ID:        "gb1",
		Title:     "Harry Potter",
		Authors:   "J.K. Rowling",
		Thumbnail: "http://x/c.jpg",
	}}}
	openLib := &fakeCatalog{books: []models.Book{{ID: "OL1W", Title: "Другая книга"}}}

	agg := NewAggregator(google, openLib, 5)
	books, err := agg.Search(context.Background(), "Harry Potter")
	require.NoError(t, err)

	require.Len(t, books, 1)
	assert.Equal(t, "gb1", books[0].ID)
	assert.Equal(t, 1, google.calls)
	// Open Library не трогаем, пока Google что-то вернул.
	assert.Equal(t, 0, openLib.calls)
}

func TestAggregatorFallbackToOpenLibrary(t *testing.T) {
	google := &fakeCatalog{}
	openLib := &fakeCatalog{books: []models.Book{{ID: "OL1W", Title: "Запасной вариант"}}}

	agg := NewAggregator(google, openLib, 5)
	books, err := agg.Search(context.Background(), "редкая книга")
	require.NoError(t, err)

	require.Len(t, books, 1)
	assert.Equal(t, "OL1W", books[0].ID)
	assert.Equal(t, 1, google.calls)
	assert.Equal(t, 1, openLib.calls)
}

func TestAggregatorNoResults(t *testing.T) {
	google := &fakeCatalog{}
	openLib := &fakeCatalog{}

	agg := NewAggregator(google, openLib, 5)
	_, err := agg.Search(context.Background(), "ничего")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestAggregatorEmptyQuery(t *testing.T) {
	google := &fakeCatalog{books: []models.Book{{ID: "gb1"}}}
	openLib := &fakeCatalog{}

	agg := NewAggregator(google, openLib, 5)
	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := agg.Search(context.Background(), query)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	// Пустой запрос отсекается до каталогов.
	assert.Equal(t, 0, google.calls)
	assert.Equal(t, 0, openLib.calls)
}

func TestAggregatorCollapsesUpstreamFailure(t *testing.T) {
	google := &fakeCatalog{err: errors.New("сеть лежит")}
	openLib := &fakeCatalog{books: []models.Book{{ID: "OL2W", Title: "Выжившая"}}}

	agg := NewAggregator(google, openLib, 5)
	books, err := agg.Search(context.Background(), "query")
	require.NoError(t, err)

	require.Len(t, books, 1)
	assert.Equal(t, "OL2W", books[0].ID)
}

func TestAggregatorBothFailed(t *testing.T) {
	google := &fakeCatalog{err: errors.New("сеть лежит")}
	openLib := &fakeCatalog{err: errors.New("и тут лежит")}

	agg := NewAggregator(google, openLib, 5)
	_, err := agg.Search(context.Background(), "query")
	// Недоступный каталог и каталог без совпадений для пользователя неразличимы.
	assert.ErrorIs(t, err, ErrNoResults)
}
