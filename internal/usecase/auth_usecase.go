package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"
	"github.com/ebrahimbeiati/inventory-management/internal/repository"

	"go.uber.org/zap"
)

type LoginInput struct {
	Email    string
	Password string
}

// handlerがJSONにして返す（passwordはUser側でjson:"-"）
type LoginOutput struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	verifier  PasswordVerifier
	issuer    TokenIssuer
	validator UserValidator
	clock     Clock
	events    UserEventPublisher
	logger    *zap.Logger
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	validator UserValidator,
	clock Clock,
	events UserEventPublisher,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		verifier:  verifier,
		issuer:    issuer,
		validator: validator,
		clock:     clock,
		events:    events,
		logger:    logger,
	}
}

// ログイン処理
// ユーザーなし・パスワード違い・停止中は全部同じ401（ユーザー列挙させない）
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	//emailでユーザー取得
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
		}
		u.logger.Error("login: find user", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgLoginError)
	}

	//パスワード照合（bcrypt）
	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return nil, NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive() {
		u.logger.Info("login: inactive user", zap.String("user_id", user.ID))
		return nil, NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	}

	//最終ログイン時刻更新
	now := u.clock.Now()
	if err := u.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		u.logger.Error("login: update last login", zap.String("user_id", user.ID), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgLoginError)
	}
	user.LastLogin = &now

	token, _, err := u.issuer.Issue(user)
	if err != nil {
		u.logger.Error("login: issue token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, MsgLoginError)
	}

	u.publish(ctx, UserEvent{
		Type:       UserEventLoggedIn,
		UserID:     user.ID,
		Role:       user.Role,
		OccurredAt: now,
	})

	return &LoginOutput{User: *user, Token: token}, nil
}

// ValidateToken はトークンのユーザーがまだ存在してActiveかを確認する。
// 停止はここでトークン期限前に効く。
func (u *AuthUsecase) ValidateToken(ctx context.Context, userID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return NewHTTPError(http.StatusUnauthorized, MsgUserNotActive)
		}
		u.logger.Error("validate token: find user", zap.String("user_id", userID), zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, MsgTokenValidateFail)
	}

	if !user.IsActive() {
		return NewHTTPError(http.StatusUnauthorized, MsgUserNotActive)
	}

	return nil
}

func (u *AuthUsecase) publish(ctx context.Context, ev UserEvent) {
	publishEvent(ctx, u.events, u.logger, ev)
}
