package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"bookbot/internal/db"
)

// Server — HTTP API для Telegram Mini App: список избранного и удаление.
type Server struct {
	store    db.Favorites
	botToken string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func New(store db.Favorites, botToken string) *Server {
	return &Server{
		store:    store,
		botToken: botToken,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/favorites", s.handleFavorites)
	mux.HandleFunc("/api/favorites/", s.handleFavorite)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)
		log.Printf("http %s %s -> %d ua=%s", r.Method, r.URL.Path, rec.status, r.UserAgent())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type favoriteItem struct {
	BookID      string `json:"book_id"`
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	s.withUser(w, r, func(ctx context.Context, user TelegramUser) {
		favorites, err := s.store.ListFavorites(ctx, user.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		items := make([]favoriteItem, 0, len(favorites))
		for _, fav := range favorites {
			items = append(items, favoriteItem{
				BookID:      fav.ID,
				Title:       fav.Title,
				Authors:     fav.Authors,
				Description: fav.Description,
				Thumbnail:   fav.Thumbnail,
			})
		}
		writeJSON(w, http.StatusOK, items)
	})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	s.withUser(w, r, func(ctx context.Context, user TelegramUser) {
		bookID := strings.TrimPrefix(r.URL.Path, "/api/favorites/")
		if bookID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "book id пустой"})
			return
		}

		removed, err := s.store.DeleteFavorite(ctx, user.ID, bookID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if !removed {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "книга не найдена в избранном"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
}

func (s *Server) withUser(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, user TelegramUser)) {
	initData := extractInitData(r)
	if initData == "" {
		log.Printf("auth: initData missing remote=%s ua=%s", r.RemoteAddr, r.UserAgent())
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "initData required"})
		return
	}

	user, err := ValidateInitData(initData, s.botToken)
	if err != nil {
		log.Printf("auth: initData invalid len=%d remote=%s err=%v", len(initData), r.RemoteAddr, err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid initData"})
		return
	}

	if err := s.store.EnsureUser(r.Context(), user.ID, user.Username); err != nil {
		log.Printf("EnsureUser error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}

	fn(r.Context(), user)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func extractInitData(r *http.Request) string {
	// Заголовки — основной канал для подписанных данных.
	if v := r.Header.Get("X-Telegram-InitData"); v != "" {
		return v
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(strings.ToLower(auth), "tma ") {
			return strings.TrimSpace(auth[4:])
		}
	}

	// Фолбэк через query — удобно для отладки в обычном браузере.
	if v := r.URL.Query().Get("initData"); v != "" {
		return v
	}
	return ""
}
