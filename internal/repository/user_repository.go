package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email重複（unique違反）
var ErrEmailTaken = errors.New("email already taken")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。なければErrUserNotFound
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。なければErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// excludeID以外で同じemailを持つユーザーがいるか
	EmailExists(ctx context.Context, email string, excludeID string) (bool, error)
	// name/email/roleの部分一致（大文字小文字を区別しない）、name昇順
	List(ctx context.Context, search string) ([]model.User, error)
	// ユーザー情報の更新
	Update(ctx context.Context, user *model.User) error
	// 最後のログインだけ更新
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, userID string) error
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}
