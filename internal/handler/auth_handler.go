package handler

import (
	"context"
	"net/http"

	"github.com/ebrahimbeiati/inventory-management/internal/middleware"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/labstack/echo/v4"
)

// usecase.AuthUsecaseが実装
type AuthService interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	ValidateToken(ctx context.Context, userID string) error
}

type AuthHandler struct {
	uc AuthService
}

// DI
func NewAuthHandler(uc AuthService) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// POST /users/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Login は POST /users/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: usecase.MsgLoginRequired})
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// ValidateToken は GET /users/validate-token のハンドラ。
// 署名と期限はAuthenticateで確認済み、ここではユーザーの状態を見る
func (h *AuthHandler) ValidateToken(c echo.Context) error {
	userID := ""
	if identity, ok := middleware.IdentityFrom(c); ok {
		userID = identity.UserID
	}

	if err := h.uc.ValidateToken(c.Request().Context(), userID); err != nil {
		if he, ok := usecase.AsHTTPError(err); ok {
			return c.JSON(he.Status, validateTokenResponse{Valid: false, Message: he.Message})
		}
		return c.JSON(http.StatusInternalServerError, validateTokenResponse{Valid: false, Message: usecase.MsgTokenValidateFail})
	}

	return c.JSON(http.StatusOK, validateTokenResponse{Valid: true})
}
