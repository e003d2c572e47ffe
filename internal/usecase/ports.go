package usecase

import (
	"context"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"

	"go.uber.org/zap"
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// トークンを発行する約束
type TokenIssuer interface {
	Issue(user *model.User) (token string, expiresAt time.Time, err error)
}

// 入力検証の約束（失敗は400のHTTPError）
type UserValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateCreate(ctx context.Context, in CreateUserInput) error
	ValidateUpdate(ctx context.Context, in UpdateUserInput) error
}

type UserEventType string

const (
	UserEventCreated  UserEventType = "user.created"
	UserEventUpdated  UserEventType = "user.updated"
	UserEventDeleted  UserEventType = "user.deleted"
	UserEventPromoted UserEventType = "user.promoted"
	UserEventLoggedIn UserEventType = "user.logged_in"
)

// ユーザーのライフサイクルイベント
type UserEvent struct {
	Type        UserEventType `json:"type"`
	UserID      string        `json:"userId"`
	ActorUserID string        `json:"actorUserId,omitempty"`
	Role        model.Role    `json:"role,omitempty"`
	OccurredAt  time.Time     `json:"occurredAt"`
}

// イベント送信。失敗してもリクエストは失敗させない
type UserEventPublisher interface {
	Publish(ctx context.Context, ev UserEvent) error
}

// コマンドラインからの操作
const SystemActorID = "system"

// 操作した人（トークンのスナップショット）
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func publishEvent(ctx context.Context, pub UserEventPublisher, logger *zap.Logger, ev UserEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logger.Warn("publish user event", zap.String("type", string(ev.Type)), zap.String("user_id", ev.UserID), zap.Error(err))
	}
}
