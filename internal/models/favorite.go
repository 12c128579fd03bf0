package models

// FavoriteBook — запись избранного: книга, привязанная к пользователю Telegram.
// Ключ записи — пара (UserID, Book.ID).
type FavoriteBook struct {
	Book
	UserID int64
}
