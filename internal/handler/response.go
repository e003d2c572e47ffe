package handler

import (
	"net/http"

	"github.com/ebrahimbeiati/inventory-management/internal/middleware"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/labstack/echo/v4"
)

// エラーは { message: string } の形で返す
type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}

// Authenticateが入れたclaimsからActorを作る
func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return usecase.Actor{}, false
	}
	return usecase.Actor{UserID: identity.UserID, Role: identity.Role}, true
}
