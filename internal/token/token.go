// Package token подписывает и проверяет токены доступа к сервису чеков.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer подписывает идентификатор пользователя HMAC-SHA256.
// Формат токена: "<userID>.<hex-подпись>".
type Signer struct {
	secretKey []byte
}

// DevSecret подписывает токены, если секрет не задан ни клиенту, ни сервису.
// Годится только для локального запуска.
const DevSecret = "receiptly-dev-secret"

// NewSigner создаёт Signer с указанным секретом. Пустой секрет заменяется на DevSecret.
func NewSigner(secret string) *Signer {
	if secret == "" {
		secret = DevSecret
	}
	return &Signer{secretKey: []byte(secret)}
}

// Sign возвращает токен для указанного пользователя.
func (s *Signer) Sign(userID string) string {
	return userID + "." + s.signature(userID)
}

// Verify проверяет подпись токена и возвращает идентификатор пользователя.
func (s *Signer) Verify(token string) (string, bool) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}

	userID, signature := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(signature), []byte(s.signature(userID))) {
		return "", false
	}

	return userID, true
}

func (s *Signer) signature(userID string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}
