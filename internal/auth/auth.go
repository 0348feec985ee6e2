// auth проверяет bearer-токены (HS256), выпущенные сервисом авторизации Gamerfeeds.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type claims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	Superuser bool   `json:"su,omitempty"`
	jwt.RegisteredClaims
}

// Verifier валидирует подпись, алгоритм, issuer, audience и срок действия.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

func NewVerifier(secret, issuer, audience string, leeway time.Duration) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
	}
}

// Parse возвращает пользователя из валидного токена.
func (v *Verifier) Parse(tokenStr string) (models.User, error) {
	const op = "auth.Parse"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return v.secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.UserID <= 0 {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.User{
		ID:          c.UserID,
		Username:    c.Username,
		IsSuperuser: c.Superuser,
	}, nil
}

// Issue подписывает токен для пользователя. Используется в тестах и локальном tooling (commentsctl).
func (v *Verifier) Issue(user models.User, now time.Time, ttl time.Duration) (string, error) {
	const op = "auth.Issue"

	rc := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.audience != "" {
		rc.Audience = jwt.ClaimStrings{v.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:           user.ID,
		Username:         user.Username,
		Superuser:        user.IsSuperuser,
		RegisteredClaims: rc,
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

type userKey struct{}

// WithUser кладёт аутентифицированного пользователя в контекст.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom достаёт пользователя; ok=false для анонимного запроса.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}
