package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims API key 载荷；jti 即用户当前有效 key 的 id
type Claims struct {
	UID  uint   `json:"uid"`
	Role string `json:"role"` // "user" or "admin"
	jwt.RegisteredClaims
}

// JWTer 签发 / 校验 API key（HS256）。TTL 为 0 时不过期，靠轮换 jti 吊销
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewKeyID() string { return uuid.NewString() }

func (j *JWTer) Issue(uid uint, role, keyID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       keyID,
			Issuer:   j.Issuer,
			Subject:  fmt.Sprint(uid),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.TTL != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.TTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.ID != "" && c.UID != 0 {
		return c, nil
	}
	return nil, ErrInvalidToken
}
