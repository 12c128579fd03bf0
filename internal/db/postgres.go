package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookbot/internal/models"
)

// PostgresStore — хранилище избранного на Postgres.
// Включается, когда в конфиге задан DATABASE_URL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("строка подключения к Postgres пустая")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Postgres недоступен: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	telegram_id BIGINT PRIMARY KEY,
	username TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS favorite_books (
	book_id TEXT NOT NULL,
	user_id BIGINT NOT NULL,
	title TEXT,
	authors TEXT,
	description TEXT,
	thumbnail_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY(user_id, book_id)
);

CREATE INDEX IF NOT EXISTS idx_favorite_books_user_id ON favorite_books(user_id);
`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ошибка миграции: %w", err)
	}
	return nil
}

func (s *PostgresStore) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO users (telegram_id, username)
VALUES ($1, $2)
ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
`, userID, username)
	if err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertFavorite(ctx context.Context, fav models.FavoriteBook) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO favorite_books (book_id, user_id, title, authors, description, thumbnail_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, book_id) DO UPDATE SET
	title = EXCLUDED.title,
	authors = EXCLUDED.authors,
	description = EXCLUDED.description,
	thumbnail_url = EXCLUDED.thumbnail_url
`, fav.ID, fav.UserID, fav.Title, fav.Authors, fav.Description, fav.Thumbnail)
	if err != nil {
		return fmt.Errorf("ошибка upsert избранного: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFavorites(ctx context.Context, userID int64) ([]models.FavoriteBook, error) {
	rows, err := s.pool.Query(ctx, `
SELECT book_id, COALESCE(title, ''), COALESCE(authors, ''), COALESCE(description, ''), COALESCE(thumbnail_url, '')
FROM favorite_books
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения избранного: %w", err)
	}
	defer rows.Close()

	var favorites []models.FavoriteBook
	for rows.Next() {
		fav := models.FavoriteBook{UserID: userID}
		if err := rows.Scan(&fav.ID, &fav.Title, &fav.Authors, &fav.Description, &fav.Thumbnail); err != nil {
			return nil, fmt.Errorf("ошибка скана избранного: %w", err)
		}
		favorites = append(favorites, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка rows: %w", err)
	}
	return favorites, nil
}

func (s *PostgresStore) DeleteFavorite(ctx context.Context, userID int64, bookID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
DELETE FROM favorite_books
WHERE user_id = $1 AND book_id = $2
`, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления из избранного: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
