package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionPurpose = "session"

// TokenSigner はセッションIDをHS256のJWTに包み、クッキーの改ざんを検出します。
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner は新しいTokenSignerを作成します。
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &TokenSigner{secret: []byte(secret), now: time.Now}, nil
}

// GenerateToken はセッションIDを含むトークンを生成します。
func (s *TokenSigner) GenerateToken(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid":     sessionID,
		"purpose": sessionPurpose,
		"iat":     s.now().Unix(),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken はトークンを検証し、セッションIDを返します。
func (s *TokenSigner) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	purpose, ok := claims["purpose"].(string)
	if !ok || purpose != sessionPurpose {
		return "", fmt.Errorf("invalid token purpose")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("invalid sid in token")
	}
	return sid, nil
}
