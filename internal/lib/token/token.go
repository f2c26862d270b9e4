// Package token генерирует одноразовые токены для подтверждения почты
// и сброса пароля.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New возвращает криптографически случайный токен: 32 байта в hex-кодировке.
func New() (string, error) {
	const op = "token.New"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
