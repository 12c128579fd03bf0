package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"bookbot/internal/models"
)

var (
	// ErrEmptyQuery — пользователь прислал пустой запрос; это не сбой,
	// а повод попросить его ввести название книги.
	ErrEmptyQuery = errors.New("пустой запрос")

	// ErrNoResults — оба каталога вернули пусто (или были недоступны).
	ErrNoResults = errors.New("ничего не найдено")

	// ErrNotFound — книгу не удалось восстановить по идентификатору.
	ErrNotFound = errors.New("книга не найдена")
)

// Catalog — контракт каталога книг для агрегатора.
type Catalog interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Book, error)
}

// Aggregator объединяет два каталога: сначала дешевый Google Books,
// при пустом результате — дорогой Open Library. Строго последовательно:
// второй каталог не трогаем, пока первый что-то вернул.
type Aggregator struct {
	google      Catalog
	openLibrary Catalog
	maxResults  int
}

func NewAggregator(google Catalog, openLibrary Catalog, maxResults int) *Aggregator {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Aggregator{
		google:      google,
		openLibrary: openLibrary,
		maxResults:  maxResults,
	}
}

// Search выполняет одно пользовательское действие поиска.
// Ошибки каталогов логируются и схлопываются в "пусто": для пользователя
// недоступный каталог и каталог без совпадений выглядят одинаково.
func (a *Aggregator) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	books, err := a.google.Search(ctx, query, a.maxResults)
	if err != nil {
		log.Printf("Google Books: поиск %q: %v", query, err)
		books = nil
	}
	if len(books) > 0 {
		return books, nil
	}

	books, err = a.openLibrary.Search(ctx, query, a.maxResults)
	if err != nil {
		log.Printf("Open Library: поиск %q: %v", query, err)
		books = nil
	}
	if len(books) == 0 {
		return nil, ErrNoResults
	}
	return books, nil
}
