package db

import (
	"context"

	"bookbot/internal/models"
)

// Favorites — контракт хранилища избранного. Каждая операция атомарна;
// ошибки хранилища не глотаются, а отдаются наружу.
type Favorites interface {
	// EnsureUser регистрирует пользователя (идемпотентно).
	EnsureUser(ctx context.Context, userID int64, username string) error

	// UpsertFavorite добавляет запись или перезаписывает поля существующей
	// (last-write-wins по ключу (user_id, book_id)).
	UpsertFavorite(ctx context.Context, fav models.FavoriteBook) error

	// ListFavorites возвращает избранное пользователя. Порядок не гарантируется.
	ListFavorites(ctx context.Context, userID int64) ([]models.FavoriteBook, error)

	// DeleteFavorite удаляет запись и сообщает, была ли она.
	// false — не ошибка, а "нечего было удалять".
	DeleteFavorite(ctx context.Context, userID int64, bookID string) (bool, error)

	Close() error
}
