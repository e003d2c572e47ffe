package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/token"
	"github.com/ebrahimbeiati/inventory-management/internal/middleware"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: AuthService
// =====================

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.LoginOutput)
	return out, args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Mock: UserService
// =====================

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, search string) ([]model.User, error) {
	args := m.Called(ctx, search)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, actor usecase.Actor, in usecase.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, actor, in)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor usecase.Actor, userID string, in usecase.UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, actor, userID, in)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor usecase.Actor, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}

func (m *MockUserService) SetAdmin(ctx context.Context, actor usecase.Actor, userID string) (*model.User, error) {
	args := m.Called(ctx, actor, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// helper
// =====================

func newContext(method string, target string, body string, identity *token.Claims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		c.Set(middleware.CtxIdentityKey, identity)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

var (
	adminClaims    = &token.Claims{UserID: "a1", Role: model.RoleAdmin}
	employeeClaims = &token.Claims{UserID: "u1", Role: model.RoleEmployee}
	adminActor     = usecase.Actor{UserID: "a1", Role: model.RoleAdmin}
)

// =====================
// AuthHandler
// =====================

func TestAuthHandler_Login_Success(t *testing.T) {
	uc := new(MockAuthService)
	h := NewAuthHandler(uc)

	user := model.User{ID: "u1", Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$secret", Role: model.RoleEmployee, Status: model.StatusActive}
	uc.On("Login", mock.Anything, usecase.LoginInput{Email: "a@x.com", Password: "pw"}).
		Return(&usecase.LoginOutput{User: user, Token: "tok"}, nil)

	c, rec := newContext(http.MethodPost, "/users/login", `{"email":"a@x.com","password":"pw"}`, nil)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// passwordは返さない
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$secret")

	var body struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "tok", body.Token)
	assert.Equal(t, "u1", body.User["userId"])
	assert.Equal(t, "Employee", body.User["role"])

	uc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	uc := new(MockAuthService)
	h := NewAuthHandler(uc)

	uc.On("Login", mock.Anything, mock.Anything).
		Return(nil, usecase.NewHTTPError(http.StatusUnauthorized, usecase.MsgInvalidCredentials))

	c, rec := newContext(http.MethodPost, "/users/login", `{"email":"a@x.com","password":"bad"}`, nil)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Invalid credentials", body.Message)
}

func TestAuthHandler_Login_BadBody(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService))

	c, rec := newContext(http.MethodPost, "/users/login", `{"email":`, nil)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_ValidateToken(t *testing.T) {
	uc := new(MockAuthService)
	h := NewAuthHandler(uc)

	uc.On("ValidateToken", mock.Anything, "u1").Return(nil).Once()
	c, rec := newContext(http.MethodGet, "/users/validate-token", "", employeeClaims)
	assert.NoError(t, h.ValidateToken(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	uc.On("ValidateToken", mock.Anything, "u1").
		Return(usecase.NewHTTPError(http.StatusUnauthorized, usecase.MsgUserNotActive)).Once()
	c, rec = newContext(http.MethodGet, "/users/validate-token", "", employeeClaims)
	assert.NoError(t, h.ValidateToken(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"User not found or inactive"}`, rec.Body.String())

	uc.On("ValidateToken", mock.Anything, "").
		Return(usecase.NewHTTPError(http.StatusUnauthorized, usecase.MsgInvalidToken)).Once()
	c, rec = newContext(http.MethodGet, "/users/validate-token", "", nil)
	assert.NoError(t, h.ValidateToken(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Invalid token"}`, rec.Body.String())

	uc.On("ValidateToken", mock.Anything, "u1").Return(errors.New("boom")).Once()
	c, rec = newContext(http.MethodGet, "/users/validate-token", "", employeeClaims)
	assert.NoError(t, h.ValidateToken(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Error validating token"}`, rec.Body.String())

	uc.AssertExpectations(t)
}

// =====================
// UserHandler
// =====================

func TestUserHandler_List(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("List", mock.Anything, "ali").Return([]model.User{{ID: "u1", Name: "Alice"}}, nil)

	c, rec := newContext(http.MethodGet, "/users?search=ali", "", employeeClaims)
	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	decodeBody(t, rec, &body)
	if assert.Len(t, body, 1) {
		assert.Equal(t, "Alice", body[0]["name"])
	}
}

func TestUserHandler_List_EmptyIsArray(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("List", mock.Anything, "").Return([]model.User{}, nil)

	c, rec := newContext(http.MethodGet, "/users", "", employeeClaims)
	assert.NoError(t, h.List(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("Get", mock.Anything, "nope").
		Return(nil, usecase.NewHTTPError(http.StatusNotFound, "User with ID nope not found"))

	c, rec := newContext(http.MethodGet, "/users/nope", "", adminClaims)
	c.SetParamNames("userId")
	c.SetParamValues("nope")
	assert.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User with ID nope not found"}`, rec.Body.String())
}

func TestUserHandler_Create(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	in := usecase.CreateUserInput{Name: "Bob", Email: "b@x.com", Password: "pw"}
	created := &model.User{ID: "u2", Name: "Bob", Email: "b@x.com", Role: model.RoleEmployee, Status: model.StatusActive, CreatedAt: time.Now()}
	uc.On("Create", mock.Anything, adminActor, in).Return(created, nil)

	c, rec := newContext(http.MethodPost, "/users", `{"name":"Bob","email":"b@x.com","password":"pw"}`, adminClaims)
	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	uc.AssertExpectations(t)
}

func TestUserHandler_Create_Conflict(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("Create", mock.Anything, adminActor, mock.Anything).
		Return(nil, usecase.NewHTTPError(http.StatusConflict, "User with email b@x.com already exists"))

	c, rec := newContext(http.MethodPost, "/users", `{"name":"Bob","email":"b@x.com","password":"pw"}`, adminClaims)
	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// 認証情報なしは全部同じ401
func TestUserHandler_NoIdentity(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		call   func(c echo.Context) error
	}{
		{"create", http.MethodPost, "/users", `{}`, h.Create},
		{"update", http.MethodPut, "/users/u1", `{"name":"x"}`, h.Update},
		{"delete", http.MethodDelete, "/users/u1", "", h.Delete},
		{"set-admin", http.MethodPut, "/users/u1/set-admin", "", h.SetAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(tc.method, tc.target, tc.body, nil)
			c.SetParamNames("userId")
			c.SetParamValues("u1")
			assert.NoError(t, tc.call(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body ErrorResponse
			decodeBody(t, rec, &body)
			assert.Equal(t, usecase.MsgAuthRequired, body.Message)
		})
	}

	uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserHandler_Update(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	actor := usecase.Actor{UserID: "u1", Role: model.RoleEmployee}
	uc.On("Update", mock.Anything, actor, "u1", usecase.UpdateUserInput{Name: "New"}).
		Return(&model.User{ID: "u1", Name: "New"}, nil)

	c, rec := newContext(http.MethodPut, "/users/u1", `{"name":"New"}`, employeeClaims)
	c.SetParamNames("userId")
	c.SetParamValues("u1")
	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestUserHandler_Delete(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("Delete", mock.Anything, adminActor, "u2").Return(nil).Once()
	c, rec := newContext(http.MethodDelete, "/users/u2", "", adminClaims)
	c.SetParamNames("userId")
	c.SetParamValues("u2")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, rec.Body.String())

	uc.On("Delete", mock.Anything, adminActor, "a1").
		Return(usecase.NewHTTPError(http.StatusForbidden, usecase.MsgLastAdminDelete)).Once()
	c, rec = newContext(http.MethodDelete, "/users/a1", "", adminClaims)
	c.SetParamNames("userId")
	c.SetParamValues("a1")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	uc.AssertExpectations(t)
}

func TestUserHandler_SetAdmin(t *testing.T) {
	uc := new(MockUserService)
	h := NewUserHandler(uc)

	uc.On("SetAdmin", mock.Anything, adminActor, "u2").
		Return(&model.User{ID: "u2", Role: model.RoleAdmin}, nil)

	c, rec := newContext(http.MethodPut, "/users/u2/set-admin", "", adminClaims)
	c.SetParamNames("userId")
	c.SetParamValues("u2")
	assert.NoError(t, h.SetAdmin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string                 `json:"message"`
		User    map[string]interface{} `json:"user"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "User role updated to Admin", body.Message)
	assert.Equal(t, "Admin", body.User["role"])
}

func TestWriteError_Unknown(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/users", "", nil)
	assert.NoError(t, writeError(c, errors.New("db down")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
