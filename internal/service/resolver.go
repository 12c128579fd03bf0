package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"bookbot/internal/models"
)

// WorkFetcher — каталог, умеющий отдать полную карточку по work-идентификатору.
type WorkFetcher interface {
	GetWork(ctx context.Context, workID string) (models.Book, error)
}

// openLibraryIDRe — соглашение об идентификаторах Open Library ("OL123W").
var openLibraryIDRe = regexp.MustCompile(`^OL\d+[A-Z]$`)

// Resolver восстанавливает полную карточку книги по голому идентификатору.
// К моменту нажатия "в избранное" от результата поиска остается только ID,
// поэтому карточку приходится собирать заново запросами к каталогам.
//
// Диспетчеризация по форме идентификатора — эвристика: пространства ID
// двух каталогов формально не разделены, и теоретически один ID может
// существовать в обоих. Известное ограничение, надежнее было бы нести
// метку каталога вместе с ID от поиска до нажатия кнопки.
type Resolver struct {
	google      Catalog
	openLibrary WorkFetcher
}

func NewResolver(google Catalog, openLibrary WorkFetcher) *Resolver {
	return &Resolver{
		google:      google,
		openLibrary: openLibrary,
	}
}

// Resolve возвращает карточку книги или ErrNotFound.
// Сетевые сбои на обоих путях логируются и сводятся к ErrNotFound:
// для вызывающего "не нашлось" и "не дотянулись" означают одно —
// добавить в избранное сейчас нельзя.
func (r *Resolver) Resolve(ctx context.Context, bookID string) (models.Book, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return models.Book{}, ErrNotFound
	}

	if !openLibraryIDRe.MatchString(bookID) {
		books, err := r.google.Search(ctx, bookID, 1)
		if err != nil {
			log.Printf("Resolver: Google Books по id %q: %v", bookID, err)
		} else if len(books) > 0 {
			return books[0], nil
		}
	}

	book, err := r.openLibrary.GetWork(ctx, bookID)
	if err != nil {
		log.Printf("Resolver: Open Library по id %q: %v", bookID, err)
		return models.Book{}, ErrNotFound
	}
	return book, nil
}
