package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookbot/internal/models"
)

// GoogleBooksClient — клиент поиска по Google Books API.
type GoogleBooksClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	langRestrict string
}

func NewGoogleBooksClient(client *http.Client, baseURL string, apiKey string, langRestrict string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient:   client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		langRestrict: langRestrict,
	}
}

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// Search выполняет один GET к /volumes и нормализует ответ.
// Сетевые и HTTP-ошибки возвращаются наружу: превращать их в пустой
// список — дело агрегатора, здесь различие "пусто" и "сломалось" сохраняем.
func (c *GoogleBooksClient) Search(ctx context.Context, query string, maxResults int) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	if c.langRestrict != "" {
		params.Set("langRestrict", c.langRestrict)
	}

	targetURL := c.baseURL + "/volumes?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка сети: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("сервер вернул код: %d", resp.StatusCode)
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	books := make([]models.Book, 0, len(payload.Items))
	for _, item := range payload.Items {
		books = append(books, item.toBook())
	}
	return books, nil
}

func (v volumeItem) toBook() models.Book {
	info := v.VolumeInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = models.UnknownTitle
	}

	authors := models.UnknownAuthors
	if len(info.Authors) > 0 {
		authors = strings.Join(info.Authors, ", ")
	}

	description := strings.TrimSpace(info.Description)
	if description == "" {
		description = models.NoDescription
	}

	return models.Book{
		ID:          v.ID,
		Title:       title,
		Authors:     authors,
		Description: description,
		Thumbnail:   info.ImageLinks.Thumbnail,
	}
}

// Таймауты исходящих запросов: поиск подольше, детали короче,
// чтобы недоступный каталог не подвешивал действие пользователя.
const (
	searchTimeout = 10 * time.Second
	detailTimeout = 5 * time.Second
)
