package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bookbot/internal/db"
	"bookbot/internal/models"
	"bookbot/internal/service"
)

// Searcher — агрегированный поиск по каталогам.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Book, error)
}

// Resolver восстанавливает карточку книги по голому идентификатору.
type Resolver interface {
	Resolve(ctx context.Context, bookID string) (models.Book, error)
}

type Bot struct {
	bot      *tgbotapi.BotAPI
	searcher Searcher
	resolver Resolver
	store    db.Favorites
	sessions *sessionStore
}

func NewBot(token string, searcher Searcher, resolver Resolver, store db.Favorites) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = false
	log.Printf("Авторизован как %s", bot.Self.UserName)

	return &Bot{
		bot:      bot,
		searcher: searcher,
		resolver: resolver,
		store:    store,
		sessions: newSessionStore(30*time.Minute, 1000),
	}, nil
}

const (
	defaultPageSize = 5

	cbBookPrefix   = "book:"
	cbPagePrefix   = "page:"
	cbAddPrefix    = "add:"
	cbRemovePrefix = "rm:"

	btnSearch    = "🔍 Поиск книги"
	btnFavorites = "⭐ Избранное"
	btnHelp      = "ℹ Помощь"

	// Карточка показывает не больше этого числа символов описания;
	// полный текст живет в моделях и в избранном.
	descriptionLimit = 500

	actionTimeout = 30 * time.Second
)

// Start — главный цикл. Каждое действие пользователя обрабатываем
// в своей горутине: один медленный каталог не блокирует остальных.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for update := range updates {
		// 1. Текстовое сообщение (поиск / кнопки клавиатуры)
		if update.Message != nil {
			go b.handleMessage(update.Message)
		}

		// 2. Нажатие на inline-кнопку (карточка / избранное / страницы)
		if update.CallbackQuery != nil {
			go b.handleCallback(update.CallbackQuery)
		}
	}
}

func replyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSearch),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFavorites),
		),
	)
	kb.ResizeKeyboard = true
	kb.InputFieldPlaceholder = "Выберите действие или введите название книги"
	return kb
}

// handleMessage — обработка текста (команды, кнопки клавиатуры, поиск)
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	if msg.From == nil {
		return
	}

	if msg.IsCommand() && msg.Command() == "start" {
		b.sendGreeting(msg.Chat.ID)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch strings.ToLower(text) {
	case strings.ToLower(btnHelp), "помощь":
		b.sendGreeting(msg.Chat.ID)
	case strings.ToLower(btnFavorites), "избранное":
		b.showFavorites(ctx, msg.Chat.ID, msg.From.ID)
	case strings.ToLower(btnSearch):
		b.sendMessage(msg.Chat.ID, "Введите название книги или автора:")
	default:
		b.search(ctx, msg.Chat.ID, text)
	}
}

func (b *Bot) sendGreeting(chatID int64) {
	greeting := "📚 Добро пожаловать в книжный бот!\n\n" +
		"Вы можете:\n" +
		"- Нажать кнопку '🔍 Поиск книги' и ввести название\n" +
		"- Просто написать название книги в чат\n" +
		"- Открыть '⭐ Избранное' и управлять сохраненными книгами"

	msg := tgbotapi.NewMessage(chatID, greeting)
	msg.ReplyMarkup = replyKeyboard()
	b.bot.Send(msg)
}

// search — одно пользовательское действие поиска.
func (b *Bot) search(ctx context.Context, chatID int64, query string) {
	books, err := b.searcher.Search(ctx, query)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		b.sendMessage(chatID, "Пожалуйста, введите название книги")
		return
	case errors.Is(err, service.ErrNoResults):
		b.sendMessage(chatID, "Книги не найдены 😢 Попробуйте другой запрос")
		return
	case err != nil:
		b.sendMessage(chatID, "❌ Ошибка поиска. Попробуйте позже.")
		log.Printf("Search error: %v", err)
		return
	}

	b.sessions.put(chatID, books, defaultPageSize)
	b.sendBooksPage(chatID, 0)
}

func clampPage(page, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	if page < 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func (b *Bot) findBookInSession(chatID int64, bookID string) (models.Book, bool) {
	session, ok := b.sessions.get(chatID)
	if !ok {
		return models.Book{}, false
	}

	for _, book := range session.books {
		if book.ID == bookID {
			return book, true
		}
	}

	return models.Book{}, false
}

func (b *Bot) buildPage(chatID int64, page int) (string, tgbotapi.InlineKeyboardMarkup, bool) {
	session, ok := b.sessions.get(chatID)
	if !ok || len(session.books) == 0 {
		return "", tgbotapi.InlineKeyboardMarkup{}, false
	}

	total := len(session.books)
	pages := totalPages(total, session.pageSize)
	page = clampPage(page, pages)

	start := page * session.pageSize
	end := start + session.pageSize
	if end > total {
		end = total
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	for _, book := range session.books[start:end] {
		text := fmt.Sprintf("%s - %s", book.Title, book.Authors)
		data := cbBookPrefix + book.ID
		btn := tgbotapi.NewInlineKeyboardButtonData(text, data)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
	}

	// Навигационная строка (если страниц больше одной)
	if pages > 1 {
		var navRow []tgbotapi.InlineKeyboardButton
		if page > 0 {
			prev := tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s%d", cbPagePrefix, page-1))
			navRow = append(navRow, prev)
		}

		center := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("• %d/%d •", page+1, pages),
			fmt.Sprintf("%s%d", cbPagePrefix, page),
		)
		navRow = append(navRow, center)

		if page < pages-1 {
			next := tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s%d", cbPagePrefix, page+1))
			navRow = append(navRow, next)
		}

		rows = append(rows, navRow)
	}

	b.sessions.setPage(chatID, page)

	text := fmt.Sprintf("📚 Найдено книг: %d\nСтраница %d/%d", total, page+1, pages)
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return text, markup, true
}

func (b *Bot) sendBooksPage(chatID int64, page int) {
	text, markup, ok := b.buildPage(chatID, page)
	if !ok {
		b.sendMessage(chatID, "⚠️ Результаты поиска устарели. Напишите запрос ещё раз.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.bot.Send(msg)
}

func (b *Bot) editBooksPage(chatID int64, messageID int, page int) {
	text, markup, ok := b.buildPage(chatID, page)
	if !ok {
		b.sendMessage(chatID, "⚠️ Результаты поиска устарели. Напишите запрос ещё раз.")
		return
	}

	editText := tgbotapi.NewEditMessageText(chatID, messageID, text)
	editText.ReplyMarkup = &markup
	if _, err := b.bot.Send(editText); err != nil {
		log.Printf("Edit message error: %v", err)
	}
}

// bookCaption — текст карточки книги (HTML, описание обрезано для показа).
func bookCaption(book models.Book) string {
	return fmt.Sprintf("📖 <b>%s</b>\n👤 %s\n\n%s",
		html.EscapeString(book.Title),
		html.EscapeString(book.Authors),
		html.EscapeString(truncate(book.Description, descriptionLimit)))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// sendBookCard показывает карточку книги с кнопкой добавления в избранное.
// Книгу берем из сессии; если сессия истекла, восстанавливаем по ID.
func (b *Bot) sendBookCard(ctx context.Context, chatID int64, bookID string) {
	book, ok := b.findBookInSession(chatID, bookID)
	if !ok {
		var err error
		book, err = b.resolver.Resolve(ctx, bookID)
		if err != nil {
			b.sendMessage(chatID, "❌ Не удалось получить информацию о книге.")
			log.Printf("Resolve error: %v", err)
			return
		}
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ В избранное", cbAddPrefix+book.ID),
		),
	)
	caption := bookCaption(book)

	// Если обложки нет, рисуем текстовую карточку.
	if book.Thumbnail != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(book.Thumbnail))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup
		if _, err := b.bot.Send(photo); err != nil {
			log.Printf("Send photo error: %v", err)
		} else {
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, caption)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	b.bot.Send(msg)
}

// showFavorites выводит сохраненные книги пользователя.
func (b *Bot) showFavorites(ctx context.Context, chatID int64, userID int64) {
	favorites, err := b.store.ListFavorites(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, "❌ Не удалось прочитать избранное. Попробуйте позже.")
		log.Printf("ListFavorites error: %v", err)
		return
	}

	if len(favorites) == 0 {
		b.sendMessage(chatID, "У вас пока нет избранных книг")
		return
	}

	for _, fav := range favorites {
		text := fmt.Sprintf("⭐ <b>%s</b>\n👤 %s",
			html.EscapeString(fav.Title),
			html.EscapeString(fav.Authors))
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", cbRemovePrefix+fav.ID),
			),
		)

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = markup
		b.bot.Send(msg)
	}
}

// addFavorite — нажатие "⭐ В избранное". От результата поиска к этому
// моменту остался только ID, карточку собираем заново через Resolver.
func (b *Bot) addFavorite(ctx context.Context, cb *tgbotapi.CallbackQuery, bookID string) {
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	book, err := b.resolver.Resolve(ctx, bookID)
	if err != nil {
		b.answerCallback(cb.ID, "Не удалось добавить книгу", true)
		log.Printf("Resolve error (add %q): %v", bookID, err)
		return
	}

	if err := b.store.EnsureUser(ctx, userID, cb.From.UserName); err != nil {
		log.Printf("EnsureUser error: %v", err)
	}

	fav := models.FavoriteBook{Book: book, UserID: userID}
	if err := b.store.UpsertFavorite(ctx, fav); err != nil {
		// Ошибки хранилища не прячем: молча потерять избранное хуже,
		// чем показать пользователю сбой.
		b.answerCallback(cb.ID, "Ошибка сохранения, попробуйте ещё раз", true)
		b.sendMessage(chatID, "❌ Не удалось сохранить книгу в избранное.")
		log.Printf("UpsertFavorite error: %v", err)
		return
	}

	b.answerCallback(cb.ID, "Добавлено в избранное ⭐", false)
}

// removeFavorite — нажатие "🗑 Удалить" в списке избранного.
func (b *Bot) removeFavorite(ctx context.Context, cb *tgbotapi.CallbackQuery, bookID string) {
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	removed, err := b.store.DeleteFavorite(ctx, userID, bookID)
	if err != nil {
		b.answerCallback(cb.ID, "Ошибка удаления, попробуйте ещё раз", true)
		log.Printf("DeleteFavorite error: %v", err)
		return
	}

	if !removed {
		b.answerCallback(cb.ID, "Книга не найдена в избранном", true)
		return
	}

	b.answerCallback(cb.ID, "Удалено из избранного", false)
	delMsg := tgbotapi.NewDeleteMessage(chatID, cb.Message.MessageID)
	b.bot.Send(delMsg)
}

// handleCallback — обработка нажатий на inline-кнопки
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	// Пагинация
	case strings.HasPrefix(data, cbPagePrefix):
		b.answerCallback(cb.ID, "Листаю…", false)

		pageStr := strings.TrimPrefix(data, cbPagePrefix)
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Не удалось переключить страницу.")
			log.Printf("Invalid page callback data: %q", data)
			return
		}
		b.editBooksPage(chatID, cb.Message.MessageID, page)

	// Добавление в избранное
	case strings.HasPrefix(data, cbAddPrefix):
		b.addFavorite(ctx, cb, strings.TrimPrefix(data, cbAddPrefix))

	// Удаление из избранного
	case strings.HasPrefix(data, cbRemovePrefix):
		b.removeFavorite(ctx, cb, strings.TrimPrefix(data, cbRemovePrefix))

	// Выбор книги: показываем карточку
	case strings.HasPrefix(data, cbBookPrefix):
		b.answerCallback(cb.ID, "Открываю…", false)
		b.sendBookCard(ctx, chatID, strings.TrimPrefix(data, cbBookPrefix))

	default:
		b.answerCallback(cb.ID, "", false)
		log.Printf("Unknown callback data: %q", data)
	}
}

func (b *Bot) answerCallback(callbackID string, text string, alert bool) {
	resp := tgbotapi.NewCallback(callbackID, text)
	resp.ShowAlert = alert
	b.bot.Request(resp)
}

// sendMessage — хелпер для отправки текста
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.bot.Send(msg)
}
