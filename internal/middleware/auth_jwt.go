package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ebrahimbeiati/inventory-management/internal/infra/token"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Authenticateが検証済みclaimsを入れるキー（*token.Claims）
const CtxIdentityKey = "identity"

const (
	msgAuthRequired = usecase.MsgAuthRequired
	msgInvalidToken = "Invalid or expired token"
	msgAdminOnly    = usecase.MsgAdminRequired
	msgAccessDenied = "Access denied"
)

// トークン検証の約束（token.JWTServiceが実装）
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

type messageResponse struct {
	Message string `json:"message"`
}

func messageJSON(msg string) messageResponse {
	return messageResponse{Message: msg}
}

// Bearerトークンを検証してclaimsをcontextへ入れる
func Authenticate(verifier TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, messageJSON(msgAuthRequired))
			}

			claims, err := verifier.Verify(rawToken)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, token.ErrTokenExpired) {
					reason = "expired"
				}
				logger.Info("token rejected",
					zap.String("reason", reason),
					zap.String("path", c.Path()),
					zap.String("remote_ip", c.RealIP()),
				)
				return c.JSON(http.StatusUnauthorized, messageJSON(msgInvalidToken))
			}

			c.Set(CtxIdentityKey, claims)
			return next(c)
		}
	}
}

// Authorizationヘッダからトークンを抜く（Bearer以外はなし扱い）
func bearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}
	return raw, true
}

// Authenticateの後ならclaimsが取れる
func IdentityFrom(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(CtxIdentityKey).(*token.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
