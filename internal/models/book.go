package models

import "fmt"

// Сентинелы для полей, которые каталог может не отдать.
const (
	UnknownTitle   = "Без названия"
	UnknownAuthors = "Неизвестен"
	NoDescription  = "Нет описания"
)

// Book — DTO (Data Transfer Object) для книги из любого каталога.
// ID непрозрачен и уникален только внутри своего каталога;
// глобальная уникальность между каталогами не гарантируется.
type Book struct {
	ID          string
	Title       string
	Authors     string // имена авторов через ", "
	Description string
	Thumbnail   string // URL обложки; пустая строка, если обложки нет
}

// String — метод для красивого вывода в консоль.
func (b Book) String() string {
	return fmt.Sprintf("📚 %s\n   Автор: %s\n   ID: %s\n", b.Title, b.Authors, b.ID)
}
