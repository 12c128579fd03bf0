package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"bookbot/internal/models"
)

// Store — хранилище избранного на SQLite. Вариант по умолчанию:
// не требует внешней базы, файл создается сам.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("путь к SQLite пустой")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию БД: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragma := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, stmt := range pragma {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка PRAGMA: %w", err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	telegram_id INTEGER PRIMARY KEY,
	username TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS favorite_books (
	book_id TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	title TEXT,
	authors TEXT,
	description TEXT,
	thumbnail_url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY(user_id, book_id)
);

CREATE INDEX IF NOT EXISTS idx_favorite_books_user_id ON favorite_books(user_id);
`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("ошибка миграции: %w", err)
	}
	return nil
}

func (s *Store) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (telegram_id, username)
VALUES (?, ?)
ON CONFLICT(telegram_id) DO UPDATE SET username = excluded.username
`, userID, username)
	if err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}

func (s *Store) UpsertFavorite(ctx context.Context, fav models.FavoriteBook) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO favorite_books (book_id, user_id, title, authors, description, thumbnail_url)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, book_id) DO UPDATE SET
	title = excluded.title,
	authors = excluded.authors,
	description = excluded.description,
	thumbnail_url = excluded.thumbnail_url
`, fav.ID, fav.UserID, fav.Title, fav.Authors, fav.Description, fav.Thumbnail)
	if err != nil {
		return fmt.Errorf("ошибка upsert избранного: %w", err)
	}
	return nil
}

func (s *Store) ListFavorites(ctx context.Context, userID int64) ([]models.FavoriteBook, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT book_id, title, authors, description, thumbnail_url
FROM favorite_books
WHERE user_id = ?
`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения избранного: %w", err)
	}
	defer rows.Close()

	var favorites []models.FavoriteBook
	for rows.Next() {
		fav := models.FavoriteBook{UserID: userID}
		var title, authors, description, thumbnail sql.NullString
		if err := rows.Scan(&fav.ID, &title, &authors, &description, &thumbnail); err != nil {
			return nil, fmt.Errorf("ошибка скана избранного: %w", err)
		}
		fav.Title = title.String
		fav.Authors = authors.String
		fav.Description = description.String
		fav.Thumbnail = thumbnail.String
		favorites = append(favorites, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка rows: %w", err)
	}
	return favorites, nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID int64, bookID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM favorite_books
WHERE user_id = ? AND book_id = ?
`, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления из избранного: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка RowsAffected: %w", err)
	}
	return affected > 0, nil
}
