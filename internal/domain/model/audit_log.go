package model

import "time"

// ユーザー作成、更新、削除、管理者昇格など。
type AuditAction string

const (
	AuditActionCreateUser AuditAction = "CREATE_USER"
	AuditActionUpdateUser AuditAction = "UPDATE_USER"
	AuditActionDeleteUser AuditAction = "DELETE_USER"
	AuditActionSetAdmin   AuditAction = "SET_ADMIN"
)

// 監査ログ（ユーザー管理操作ログ）。
// 「誰が」「何を」「どのユーザーに」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID（コマンドからはsystem）。
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actorUserId"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象ユーザーのID。
	TargetUserID string `gorm:"type:uuid;not null;index" json:"targetUserId"`

	//JSON文字列で保存する（passwordは含まない）。
	BeforeJSON string `gorm:"type:text" json:"before"`
	AfterJSON  string `gorm:"type:text" json:"after"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
