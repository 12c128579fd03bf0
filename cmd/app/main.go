package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"bookbot/internal/catalog"
	"bookbot/internal/config"
	"bookbot/internal/db"
	"bookbot/internal/httpapi"
	"bookbot/internal/network"
	"bookbot/internal/service"
	"bookbot/internal/telegram"
)

func main() {
	// 1. Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	log.Println("=== BOOK BOT STARTING ===")

	// 2. HTTP-клиент для каталогов (при необходимости — через SOCKS5)
	httpClient, err := network.NewHTTPClient(cfg.SocksProxyAddr, 30*time.Second)
	if err != nil {
		log.Fatalf("Ошибка сети: %v", err)
	}

	// 3. Клиенты каталогов и бизнес-логика
	google := catalog.NewGoogleBooksClient(httpClient, cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.LangRestrict)
	openLib := catalog.NewOpenLibraryClient(httpClient, cfg.OpenLibraryURL, cfg.OpenLibraryLang)

	aggregator := service.NewAggregator(google, openLib, cfg.MaxResults)
	resolver := service.NewResolver(google, openLib)

	// 3.1 Хранилище избранного: Postgres, если задан DATABASE_URL, иначе SQLite
	var store db.Favorites
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = db.OpenPostgres(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("Ошибка БД: %v", err)
		}
		log.Println("Хранилище избранного: Postgres")
	} else {
		store, err = db.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Ошибка БД: %v", err)
		}
		log.Printf("Хранилище избранного: SQLite (%s)", cfg.SQLitePath)
	}
	defer store.Close()

	// 3.2 HTTP API для Mini App
	api := httpapi.New(store, cfg.TelegramToken)
	go func() {
		log.Printf("HTTP API запущен на %s", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, api.Handler()); err != nil {
			log.Fatalf("Ошибка HTTP API: %v", err)
		}
	}()

	// 4. Инициализация бота
	bot, err := telegram.NewBot(cfg.TelegramToken, aggregator, resolver, store)
	if err != nil {
		log.Fatalf("Ошибка при создании бота: %v", err)
	}

	// 5. Запуск (блокирует до остановки процесса)
	log.Println("Бот запущен! Открой Telegram и напиши /start или название книги.")
	bot.Start()
}
