package validator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ebrahimbeiati/inventory-management/internal/usecase"

	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidEmail  = "Invalid email format"
	msgInvalidRole   = "Role must be Admin or Employee"
	msgInvalidStatus = "Status must be Active or Inactive"
)

// 形式チェック用（空は変更なし扱い）
type userFields struct {
	Email  string `validate:"omitempty,email"`
	Role   string `validate:"omitempty,oneof=Admin Employee"`
	Status string `validate:"omitempty,oneof=Active Inactive"`
}

// フィールドごとのエラーメッセージ
var fieldMessages = map[string]string{
	"Email":  msgInvalidEmail,
	"Role":   msgInvalidRole,
	"Status": msgInvalidStatus,
}

type userValidator struct {
	validate *validator.Validate
}

// Usecaseは interface を依存注入
func NewUserValidator() usecase.UserValidator {
	return &userValidator{validate: validator.New()}
}

// ログインの入力を検証（必須のみ。形式違いも401で返すため）
func (v *userValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return badRequest(usecase.MsgLoginRequired)
	}
	return nil
}

// 作成の入力を検証
func (v *userValidator) ValidateCreate(ctx context.Context, in usecase.CreateUserInput) error {
	// 必須チェック
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return badRequest(usecase.MsgCreateRequired)
	}

	return v.check(userFields{Email: in.Email, Role: in.Role, Status: in.Status})
}

// 更新の入力を検証（空は変更なし）
func (v *userValidator) ValidateUpdate(ctx context.Context, in usecase.UpdateUserInput) error {
	return v.check(userFields{Email: in.Email, Role: in.Role, Status: in.Status})
}

// 最初に見つかったエラーだけ返す
func (v *userValidator) check(f userFields) error {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].StructField()]; ok {
			return badRequest(msg)
		}
	}
	return badRequest(err.Error())
}

func badRequest(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}
