package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var ErrInvalidToken = errors.New("невалидный токен")

// Claims — то, что сервис кладёт в JWT.
type Claims struct {
	UserID    int
	Role      string
	TokenType string
	ExpiresAt time.Time
}

// GenerateToken подписывает HS256-токен с user_id, role и token_type (access|refresh).
func GenerateToken(secret string, userID int, role string, duration time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    userID,
		"role":       role,
		"token_type": tokenType,
		"exp":        now.Add(duration).Unix(),
		"iat":        now.Unix(),
		// одинаковые user/role/exp в одну секунду давали бы одинаковые токены
		"jti": fmt.Sprintf("%d-%d", userID, now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия и достаёт claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, ok := mc["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	tokenType, _ := mc["token_type"].(string)

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    int(uid),
		Role:      role,
		TokenType: tokenType,
		ExpiresAt: exp.Time,
	}, nil
}
