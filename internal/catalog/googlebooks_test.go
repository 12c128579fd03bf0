package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleBooksSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":            q.Get("q"),
			"maxResults":   q.Get("maxResults"),
			"langRestrict": q.Get("langRestrict"),
			"key":          q.Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{
				"id": "gb1",
				"volumeInfo": {
					"title": "Harry Potter",
					"authors": ["J.K. Rowling"],
					"description": "A boy who lived",
					"imageLinks": {"thumbnail": "http://x/c.jpg"}
				}
			}]
		}`))
	}))
	defer srv.Close()

	client := NewGoogleBooksClient(srv.Client(), srv.URL, "secret", "ru")
	books, err := client.Search(context.Background(), "Harry Potter", 5)
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Equal(t, "gb1", books[0].ID)
	assert.Equal(t, "Harry Potter", books[0].Title)
	assert.Equal(t, "J.K. Rowling", books[0].Authors)
	assert.Equal(t, "A boy who lived", books[0].Description)
	assert.Equal(t, "http://x/c.jpg", books[0].Thumbnail)

	assert.Equal(t, "Harry Potter", gotQuery["q"])
	assert.Equal(t, "5", gotQuery["maxResults"])
	assert.Equal(t, "ru", gotQuery["langRestrict"])
	assert.Equal(t, "secret", gotQuery["key"])
}

func TestGoogleBooksSearchSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "gb2", "volumeInfo": {}}]}`))
	}))
	defer srv.Close()

	client := NewGoogleBooksClient(srv.Client(), srv.URL, "", "")
	books, err := client.Search(context.Background(), "whatever", 5)
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Equal(t, "Без названия", books[0].Title)
	assert.Equal(t, "Неизвестен", books[0].Authors)
	assert.Equal(t, "Нет описания", books[0].Description)
	assert.Empty(t, books[0].Thumbnail)
}

func TestGoogleBooksSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewGoogleBooksClient(srv.Client(), srv.URL, "", "ru")
	books, err := client.Search(context.Background(), "нет такой книги", 5)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestGoogleBooksSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewGoogleBooksClient(srv.Client(), srv.URL, "", "ru")
	_, err := client.Search(context.Background(), "boom", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
