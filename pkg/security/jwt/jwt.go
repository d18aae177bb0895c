package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/accounts/pkg/user"
)

// ErrInvalidToken is returned by Parse for any unusable token.
var ErrInvalidToken = errors.New("invalid or expired token")

type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGenerator(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims is the token payload: {email, sub, role} plus iat/exp.
type Claims struct {
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

func (g *Generator) Generate(_ context.Context, u user.User) (string, error) {
	now := g.now().UTC()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Parse verifies an HS256 token signed with secret and returns its claims.
func Parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
