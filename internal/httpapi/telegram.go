package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TelegramUser описывает структуру пользователя, приходящую в initData
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language_code"`
}

// ValidateInitData проверяет подпись initData от Telegram Mini App
// и возвращает данные пользователя.
func ValidateInitData(initData string, botToken string) (TelegramUser, error) {
	if initData == "" {
		return TelegramUser{}, fmt.Errorf("initData пустой")
	}
	if botToken == "" {
		return TelegramUser{}, fmt.Errorf("botToken пустой")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return TelegramUser{}, fmt.Errorf("ошибка разбора initData: %w", err)
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return TelegramUser{}, fmt.Errorf("в initData нет hash")
	}
	values.Del("hash")

	// data-check-string: ключи по алфавиту, пары через \n
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values.Get(k))
	}
	checkString := strings.Join(parts, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	calculatedHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(calculatedHash), []byte(receivedHash)) {
		return TelegramUser{}, fmt.Errorf("подпись initData не сходится")
	}

	if err := checkAuthDate(values.Get("auth_date")); err != nil {
		return TelegramUser{}, err
	}

	return parseUserFromJSON(values.Get("user"))
}

func checkAuthDate(authDateStr string) error {
	if authDateStr == "" {
		return nil
	}

	authTs, err := strconv.ParseInt(authDateStr, 10, 64)
	if err != nil {
		return nil
	}

	authTime := time.Unix(authTs, 0)
	now := time.Now()

	if now.Sub(authTime) > 24*time.Hour {
		return fmt.Errorf("initData устарел (старше 24 часов)")
	}
	// Допуск на рассинхрон часов
	if authTime.Sub(now) > 5*time.Minute {
		return fmt.Errorf("initData из будущего (проверь время сервера)")
	}
	return nil
}

func parseUserFromJSON(userJSON string) (TelegramUser, error) {
	if userJSON == "" {
		return TelegramUser{}, fmt.Errorf("поле user пустое")
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return TelegramUser{}, fmt.Errorf("ошибка разбора user: %w", err)
	}
	if user.ID == 0 {
		return TelegramUser{}, fmt.Errorf("user_id равен 0")
	}
	return user, nil
}
