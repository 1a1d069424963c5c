package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credpay-wallet/internal/util"
)

// Claims are the JWT claims carried by a login token. The registered ID (jti)
// keys the logout blocklist.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTMaker issues and verifies HS256 login tokens.
type JWTMaker struct {
	secret []byte
	expiry time.Duration
}

// NewJWTMaker creates a JWTMaker. expiry bounds the token lifetime.
func NewJWTMaker(secret string, expiry time.Duration) *JWTMaker {
	return &JWTMaker{secret: []byte(secret), expiry: expiry}
}

// CreateToken signs a token for the given user.
func (m *JWTMaker) CreateToken(userID int64) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken parses and validates a token, returning its claims.
func (m *JWTMaker) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, util.ErrTokenInvalid
	}
	return claims, nil
}
