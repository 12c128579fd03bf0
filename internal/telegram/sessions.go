package telegram

import (
	"sync"
	"time"

	"bookbot/internal/models"
)

// searchSession — результаты последнего поиска в чате.
// Нужна только для пагинации и показа карточек; восстановление книги
// при добавлении в избранное на сессию не опирается.
type searchSession struct {
	books     []models.Book
	page      int
	pageSize  int
	createdAt time.Time
}

// sessionStore — per-чатовый кэш сессий с TTL и потолком записей,
// чтобы память не росла бесконечно на забытых чатах.
type sessionStore struct {
	mu         sync.Mutex
	sessions   map[int64]*searchSession
	ttl        time.Duration
	maxEntries int
}

func newSessionStore(ttl time.Duration, maxEntries int) *sessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &sessionStore{
		sessions:   make(map[int64]*searchSession),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (s *sessionStore) put(chatID int64, books []models.Book, pageSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[chatID]; !ok && len(s.sessions) >= s.maxEntries {
		s.evictOldestLocked()
	}

	s.sessions[chatID] = &searchSession{
		books:     books,
		page:      0,
		pageSize:  pageSize,
		createdAt: time.Now(),
	}
}

func (s *sessionStore) get(chatID int64) (*searchSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return nil, false
	}
	if time.Since(session.createdAt) > s.ttl {
		delete(s.sessions, chatID)
		return nil, false
	}
	return session, true
}

func (s *sessionStore) setPage(chatID int64, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[chatID]; ok {
		session.page = page
	}
}

func (s *sessionStore) evictOldestLocked() {
	var oldestID int64
	var oldestAt time.Time
	first := true
	for id, session := range s.sessions {
		if first || session.createdAt.Before(oldestAt) {
			oldestID = id
			oldestAt = session.createdAt
			first = false
		}
	}
	if !first {
		delete(s.sessions, oldestID)
	}
}
