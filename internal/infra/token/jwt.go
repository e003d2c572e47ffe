package token

import (
	"errors"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// 期限切れ
	ErrTokenExpired = errors.New("token expired")
	// 署名・形式が不正
	ErrTokenInvalid = errors.New("token invalid")
)

// トークンに載せるユーザー情報（passwordは載せない）
// roleは発行時点のスナップショット
type Claims struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// JWTService はHS256でトークンを発行・検証する。
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// DI
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// テスト用に時計を差し替える
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue はユーザーからトークンを作る。期限はttl後。
func (s *JWTService) Issue(user *model.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify は署名と期限を確認してclaimsを返す。
// 期限切れはErrTokenExpired、それ以外はErrTokenInvalid。
func (s *JWTService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.Parser{}
	token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		// 署名が不正なら期限切れでもinvalid扱い
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrTokenInvalid
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if token == nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
