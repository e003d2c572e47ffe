package handler

import (
	"context"
	"net/http"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/labstack/echo/v4"
)

// usecase.UserUsecaseが実装
type UserService interface {
	List(ctx context.Context, search string) ([]model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	Create(ctx context.Context, actor usecase.Actor, in usecase.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, actor usecase.Actor, userID string, in usecase.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor usecase.Actor, userID string) error
	SetAdmin(ctx context.Context, actor usecase.Actor, userID string) (*model.User, error)
}

// POST /users, PUT /users/:userId の入力
type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type setAdminResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

// /users 配下
type UserHandler struct {
	uc UserService
}

// DI
func NewUserHandler(uc UserService) *UserHandler {
	return &UserHandler{uc: uc}
}

// GET /users?search=
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.uc.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.uc.Get(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: usecase.MsgAuthRequired})
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: usecase.MsgCreateRequired})
	}

	user, err := h.uc.Create(c.Request().Context(), actor, usecase.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: usecase.MsgAuthRequired})
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}

	user, err := h.uc.Update(c.Request().Context(), actor, c.Param("userId"), usecase.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: usecase.MsgAuthRequired})
	}

	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("userId")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: usecase.MsgUserDeleted})
}

// PUT /users/:userId/set-admin
func (h *UserHandler) SetAdmin(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: usecase.MsgAuthRequired})
	}

	user, err := h.uc.SetAdmin(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, setAdminResponse{Message: usecase.MsgUserPromoted, User: *user})
}
