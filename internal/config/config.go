package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config — структура, хранящая все настройки приложения.
// Используем её, чтобы передавать параметры одной "пачкой".
type Config struct {
	TelegramToken string

	GoogleBooksURL    string
	GoogleBooksAPIKey string
	OpenLibraryURL    string
	OpenLibraryLang   string
	LangRestrict      string
	MaxResults        int

	// DatabaseURL — строка подключения к Postgres. Если пустая,
	// избранное хранится в SQLite по пути SQLitePath.
	DatabaseURL string
	SQLitePath  string

	HTTPAddr string

	// SocksProxyAddr — необязательный SOCKS5-прокси для исходящих
	// запросов к каталогам (адрес host:port). Пустая строка — без прокси.
	SocksProxyAddr string
}

// Load считывает .env файл и заполняет структуру Config.
func Load() (*Config, error) {
	// Загружаем переменные из .env в окружение процесса.
	// Если файла нет, ничего страшного (в Docker переменные передают напрямую).
	if err := godotenv.Load(); err != nil {
		fmt.Println("Инфо: файл .env не найден, ищем переменные в окружении OS")
	}

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("переменная TELEGRAM_TOKEN не задана")
	}

	maxResults, err := parseMaxResults(os.Getenv("MAX_RESULTS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramToken:     token,
		GoogleBooksURL:    withDefault(os.Getenv("GOOGLE_BOOKS_URL"), "https://www.googleapis.com/books/v1"),
		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
		OpenLibraryURL:    withDefault(os.Getenv("OPENLIBRARY_URL"), "https://openlibrary.org"),
		// Google ждет двухбуквенный код языка, Open Library — трехбуквенный.
		OpenLibraryLang: withDefault(os.Getenv("OPENLIBRARY_LANG"), "rus"),
		LangRestrict:    withDefault(os.Getenv("LANG_RESTRICT"), "ru"),
		MaxResults:      maxResults,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      withDefault(os.Getenv("SQLITE_PATH"), "data/bookbot.db"),
		HTTPAddr:        withDefault(os.Getenv("HTTP_ADDR"), ":8080"),
		SocksProxyAddr:  os.Getenv("SOCKS_PROXY"),
	}, nil
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseMaxResults(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("переменная MAX_RESULTS некорректна: %q", value)
	}
	return n, nil
}
