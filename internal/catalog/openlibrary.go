package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"bookbot/internal/models"
)

// coverURLBase — шаблон обложек Open Library (размер M).
const coverURLBase = "https://covers.openlibrary.org/b/id/"

// detailFanout ограничивает число одновременных запросов за деталями,
// чтобы не устроить каталогу шторм из N+1 запросов.
const detailFanout = 4

// OpenLibraryClient — клиент поиска по Open Library.
// Дорогой каталог: описание книги и имена авторов приходится добирать
// отдельными запросами на каждый результат.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

func NewOpenLibraryClient(client *http.Client, baseURL string, language string) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
	}
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key        string   `json:"key"` // "/works/OL123W"
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	CoverID    int64    `json:"cover_i"`
}

// workDescription — описание работы: либо строка, либо объект {"value": "..."}.
type workDescription string

func (d *workDescription) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = workDescription(s)
		return nil
	}

	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("неожиданный формат description: %w", err)
	}
	*d = workDescription(obj.Value)
	return nil
}

type workResponse struct {
	Title       string          `json:"title"`
	Description workDescription `json:"description"`
	Covers      []int64         `json:"covers"`
	Authors     []struct {
		Author struct {
			Key string `json:"key"` // "/authors/OL123A"
		} `json:"author"`
	} `json:"authors"`
}

type authorResponse struct {
	Name string `json:"name"`
}

// Search выполняет GET /search.json и добирает описание каждого результата
// отдельным запросом к /works/{id}.json. Добор — best-effort: если деталь
// не получилась, у книги остается сентинел вместо описания, но сам поиск
// не проваливается.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, maxResults int) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(maxResults))
	if c.language != "" {
		params.Set("language", c.language)
	}

	targetURL := c.baseURL + "/search.json?" + params.Encode()

	var payload searchResponse
	if err := c.getJSON(ctx, targetURL, &payload); err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		books = append(books, doc.toBook())
	}

	// Добор описаний ограниченным веером параллельных запросов.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(detailFanout)
	for i := range books {
		i := i
		g.Go(func() error {
			work, err := c.fetchWork(gCtx, books[i].ID)
			if err != nil {
				log.Printf("OpenLibrary: детали %s не получены: %v", books[i].ID, err)
				return nil
			}
			if desc := strings.TrimSpace(string(work.Description)); desc != "" {
				books[i].Description = desc
			}
			return nil
		})
	}
	_ = g.Wait()

	return books, nil
}

func (d searchDoc) toBook() models.Book {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = models.UnknownTitle
	}

	authors := models.UnknownAuthors
	if len(d.AuthorName) > 0 {
		authors = strings.Join(d.AuthorName, ", ")
	}

	return models.Book{
		ID:          path.Base(d.Key),
		Title:       title,
		Authors:     authors,
		Description: models.NoDescription,
		Thumbnail:   CoverURL(d.CoverID),
	}
}

// GetWork собирает полную карточку книги по её work-идентификатору:
// сама работа, затем имя каждого автора отдельным запросом.
func (c *OpenLibraryClient) GetWork(ctx context.Context, workID string) (models.Book, error) {
	work, err := c.fetchWork(ctx, workID)
	if err != nil {
		return models.Book{}, err
	}

	book := models.Book{
		ID:          workID,
		Title:       strings.TrimSpace(work.Title),
		Description: strings.TrimSpace(string(work.Description)),
	}
	if book.Title == "" {
		book.Title = models.UnknownTitle
	}
	if book.Description == "" {
		book.Description = models.NoDescription
	}
	if len(work.Covers) > 0 {
		book.Thumbnail = CoverURL(work.Covers[0])
	}

	// Имена авторов добираем ограниченным веером; недоступный автор
	// пропускается, а не валит всю карточку.
	names := make([]string, len(work.Authors))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(detailFanout)
	for i, ref := range work.Authors {
		i, key := i, ref.Author.Key
		if key == "" {
			continue
		}
		g.Go(func() error {
			name, err := c.fetchAuthorName(gCtx, key)
			if err != nil {
				log.Printf("OpenLibrary: автор %s не получен: %v", key, err)
				return nil
			}
			names[i] = name
			return nil
		})
	}
	_ = g.Wait()

	var resolved []string
	for _, name := range names {
		if name != "" {
			resolved = append(resolved, name)
		}
	}
	if len(resolved) > 0 {
		book.Authors = strings.Join(resolved, ", ")
	} else {
		book.Authors = models.UnknownAuthors
	}

	return book, nil
}

func (c *OpenLibraryClient) fetchWork(ctx context.Context, workID string) (workResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, detailTimeout)
	defer cancel()

	var work workResponse
	targetURL := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(workID))
	if err := c.getJSON(ctx, targetURL, &work); err != nil {
		return workResponse{}, err
	}
	return work, nil
}

// fetchAuthorName получает имя автора по ключу вида "/authors/OL123A".
func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, detailTimeout)
	defer cancel()

	var author authorResponse
	targetURL := c.baseURL + authorKey + ".json"
	if err := c.getJSON(ctx, targetURL, &author); err != nil {
		return "", err
	}
	return strings.TrimSpace(author.Name), nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, targetURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return fmt.Errorf("ошибка запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка сети: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул код: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return nil
}

// CoverURL синтезирует URL обложки по её числовому идентификатору.
func CoverURL(coverID int64) string {
	if coverID == 0 {
		return ""
	}
	return fmt.Sprintf("%s%d-M.jpg", coverURLBase, coverID)
}
