package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/repository"

	"go.uber.org/zap"
)

// POST /users の入力
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string // 空ならEmployee
	Status   string // 空ならActive
}

// PUT /users/:userId の入力。空の項目は変更しない
type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Status   string
}

type UserUsecase struct {
	users     repository.UserRepository
	tx        repository.TransactionManager
	hasher    PasswordHasher
	validator UserValidator
	idGen     IDGenerator
	clock     Clock
	events    UserEventPublisher
	logger    *zap.Logger
}

// DI
func NewUserUsecase(
	users repository.UserRepository,
	tx repository.TransactionManager,
	hasher PasswordHasher,
	validator UserValidator,
	idGen IDGenerator,
	clock Clock,
	events UserEventPublisher,
	logger *zap.Logger,
) *UserUsecase {
	return &UserUsecase{
		users:     users,
		tx:        tx,
		hasher:    hasher,
		validator: validator,
		idGen:     idGen,
		clock:     clock,
		events:    events,
		logger:    logger,
	}
}

// 一覧（searchはname/email/roleの部分一致）
func (u *UserUsecase) List(ctx context.Context, search string) ([]model.User, error) {
	users, err := u.users.List(ctx, search)
	if err != nil {
		u.logger.Error("list users", zap.String("search", search), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgListError)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (u *UserUsecase) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errUserNotFound(userID)
		}
		u.logger.Error("get user", zap.String("user_id", userID), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgGetError)
	}
	return user, nil
}

// ユーザー作成（管理者のみ。ルート側で保証）
func (u *UserUsecase) Create(ctx context.Context, actor Actor, in CreateUserInput) (*model.User, error) {
	if err := u.validator.ValidateCreate(ctx, in); err != nil {
		return nil, err
	}

	//email重複チェック
	exists, err := u.users.EmailExists(ctx, in.Email, "")
	if err != nil {
		u.logger.Error("create user: check email", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgCreateError)
	}
	if exists {
		u.logger.Info("create user: email taken", zap.String("email", in.Email))
		return nil, errEmailExists(in.Email)
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.logger.Error("create user: hash password", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgCreateError)
	}

	role := model.Role(in.Role)
	if role == "" {
		role = model.RoleEmployee
	}
	status := model.Status(in.Status)
	if status == "" {
		status = model.StatusActive
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, u.auditLog(actor, model.AuditActionCreateUser, user.ID, nil, user))
	})
	if err != nil {
		//チェック後に同じemailが入った場合
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, errEmailExists(in.Email)
		}
		u.logger.Error("create user", zap.String("email", in.Email), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgCreateError)
	}

	u.logger.Info("user created", zap.String("user_id", user.ID), zap.String("actor_id", actor.UserID))
	u.publish(ctx, UserEvent{
		Type:        UserEventCreated,
		UserID:      user.ID,
		ActorUserID: actor.UserID,
		Role:        user.Role,
		OccurredAt:  now,
	})

	return user, nil
}

// ユーザー更新（管理者 or 本人。ルート側で保証）
// 本人はrole/statusを変えられない
func (u *UserUsecase) Update(ctx context.Context, actor Actor, userID string, in UpdateUserInput) (*model.User, error) {
	if err := u.validator.ValidateUpdate(ctx, in); err != nil {
		return nil, err
	}

	var updated *model.User
	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		existing, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errUserNotFound(userID)
			}
			return err
		}
		before := *existing

		if !actor.IsAdmin() {
			if in.Role != "" && model.Role(in.Role) != existing.Role {
				return NewHTTPError(http.StatusForbidden, MsgAdminRequired)
			}
			if in.Status != "" && model.Status(in.Status) != existing.Status {
				return NewHTTPError(http.StatusForbidden, MsgAdminRequired)
			}
		}

		//emailを変えるなら他のユーザーと被らないか
		if in.Email != "" && in.Email != existing.Email {
			exists, err := r.Users().EmailExists(ctx, in.Email, userID)
			if err != nil {
				return err
			}
			if exists {
				return errEmailInUse(in.Email)
			}
			existing.Email = in.Email
		}

		//最後の管理者は降格できない
		if in.Role != "" && existing.Role == model.RoleAdmin && model.Role(in.Role) != model.RoleAdmin {
			if err := u.ensureNotLastAdmin(ctx, r, MsgLastAdminDemote); err != nil {
				return err
			}
		}

		if in.Name != "" {
			existing.Name = in.Name
		}
		if in.Password != "" {
			hashed, err := u.hasher.Hash(in.Password)
			if err != nil {
				return err
			}
			existing.PasswordHash = hashed
		}
		if in.Role != "" {
			existing.Role = model.Role(in.Role)
		}
		if in.Status != "" {
			existing.Status = model.Status(in.Status)
		}
		existing.UpdatedAt = u.clock.Now()

		if err := r.Users().Update(ctx, existing); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return errEmailInUse(in.Email)
			}
			return err
		}

		updated = existing
		return r.AuditLogs().Create(ctx, u.auditLog(actor, model.AuditActionUpdateUser, userID, &before, existing))
	})
	if err != nil {
		return nil, u.fail(err, MsgUpdateError, "update user", userID)
	}

	u.publish(ctx, UserEvent{
		Type:        UserEventUpdated,
		UserID:      updated.ID,
		ActorUserID: actor.UserID,
		Role:        updated.Role,
		OccurredAt:  updated.UpdatedAt,
	})

	return updated, nil
}

// ユーザー削除（管理者のみ）
// 最後の管理者は削除できない。件数確認と削除は同じTxで行う
func (u *UserUsecase) Delete(ctx context.Context, actor Actor, userID string) error {
	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		existing, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errUserNotFound(userID)
			}
			return err
		}

		if existing.Role == model.RoleAdmin {
			if err := u.ensureNotLastAdmin(ctx, r, MsgLastAdminDelete); err != nil {
				u.logger.Info("prevented deletion of the last admin", zap.String("user_id", userID))
				return err
			}
		}

		if err := r.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errUserNotFound(userID)
			}
			return err
		}

		return r.AuditLogs().Create(ctx, u.auditLog(actor, model.AuditActionDeleteUser, userID, existing, nil))
	})
	if err != nil {
		return u.fail(err, MsgDeleteError, "delete user", userID)
	}

	u.logger.Info("user deleted", zap.String("user_id", userID), zap.String("actor_id", actor.UserID))
	u.publish(ctx, UserEvent{
		Type:        UserEventDeleted,
		UserID:      userID,
		ActorUserID: actor.UserID,
		OccurredAt:  u.clock.Now(),
	})
	return nil
}

// 管理者に昇格（管理者のみ）
func (u *UserUsecase) SetAdmin(ctx context.Context, actor Actor, userID string) (*model.User, error) {
	var updated *model.User
	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		existing, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errUserNotFound(userID)
			}
			return err
		}
		before := *existing

		existing.Role = model.RoleAdmin
		existing.UpdatedAt = u.clock.Now()
		if err := r.Users().Update(ctx, existing); err != nil {
			return err
		}

		updated = existing
		return r.AuditLogs().Create(ctx, u.auditLog(actor, model.AuditActionSetAdmin, userID, &before, existing))
	})
	if err != nil {
		return nil, u.fail(err, MsgSetAdminFail, "set admin", userID)
	}

	u.publish(ctx, UserEvent{
		Type:        UserEventPromoted,
		UserID:      updated.ID,
		ActorUserID: actor.UserID,
		Role:        updated.Role,
		OccurredAt:  updated.UpdatedAt,
	})
	return updated, nil
}

// 初期管理者を作る（cmd/create-admin）。同じemailのAdminがいれば何もしない
func (u *UserUsecase) EnsureAdmin(ctx context.Context, in CreateUserInput) (*model.User, bool, error) {
	existing, err := u.users.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.Role == model.RoleAdmin {
			return existing, false, nil
		}
		return nil, false, errEmailExists(in.Email)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		u.logger.Error("ensure admin: find user", zap.String("email", in.Email), zap.Error(err))
		return nil, false, NewHTTPError(http.StatusInternalServerError, MsgCreateError)
	}

	in.Role = string(model.RoleAdmin)
	in.Status = string(model.StatusActive)
	user, err := u.Create(ctx, Actor{UserID: SystemActorID, Role: model.RoleAdmin}, in)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// 管理者が1人以下なら403
func (u *UserUsecase) ensureNotLastAdmin(ctx context.Context, r repository.TxRepos, msg string) error {
	count, err := r.Users().CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return NewHTTPError(http.StatusForbidden, msg)
	}
	return nil
}

// HTTPErrorはそのまま、それ以外はログして500
func (u *UserUsecase) fail(err error, msg string, op string, userID string) error {
	if he, ok := AsHTTPError(err); ok {
		return he
	}
	u.logger.Error(op, zap.String("user_id", userID), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, msg)
}

func (u *UserUsecase) auditLog(actor Actor, action model.AuditAction, targetID string, before, after *model.User) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       action,
		TargetUserID: targetID,
		BeforeJSON:   snapshot(before),
		AfterJSON:    snapshot(after),
		CreatedAt:    u.clock.Now(),
	}
}

// passwordはjson:"-"なので入らない
func snapshot(user *model.User) string {
	if user == nil {
		return ""
	}
	b, err := json.Marshal(user)
	if err != nil {
		return ""
	}
	return string(b)
}

func (u *UserUsecase) publish(ctx context.Context, ev UserEvent) {
	publishEvent(ctx, u.events, u.logger, ev)
}
