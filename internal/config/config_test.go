package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123456:ABCDEF")
	t.Setenv("GOOGLE_BOOKS_URL", "")
	t.Setenv("OPENLIBRARY_URL", "")
	t.Setenv("LANG_RESTRICT", "")
	t.Setenv("MAX_RESULTS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123456:ABCDEF", cfg.TelegramToken)
	assert.Equal(t, "https://www.googleapis.com/books/v1", cfg.GoogleBooksURL)
	assert.Equal(t, "https://openlibrary.org", cfg.OpenLibraryURL)
	assert.Equal(t, "ru", cfg.LangRestrict)
	assert.Equal(t, "rus", cfg.OpenLibraryLang)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestLoadBadMaxResults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123456:ABCDEF")
	t.Setenv("MAX_RESULTS", "-3")

	_, err := Load()
	require.Error(t, err)
}
