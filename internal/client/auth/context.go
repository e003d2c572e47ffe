// Package auth はクライアント全体で1つのセッション状態を持つ。
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/ebrahimbeiati/inventory-management/internal/client/api"
	"github.com/ebrahimbeiati/inventory-management/internal/client/storage"
	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"

	"go.uber.org/zap"
)

// ログイン中にもう一度Loginした
var ErrLoginInProgress = errors.New("login already in progress")

// api.Clientが実装
type SessionAPI interface {
	Login(ctx context.Context, email string, password string) (*api.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) error
}

// storage.Storeが実装
type SessionStore interface {
	Save(ctx context.Context, sess storage.Session) error
	Load(ctx context.Context) (*storage.Session, error)
	Clear(ctx context.Context) error
}

type State struct {
	User    *model.User
	Loading bool
	Error   string
}

// Context はアプリのルートで1つだけ作る
type Context struct {
	api    SessionAPI
	store  SessionStore
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	loggingIn  bool
	nextSubID  int
	subscribed map[int]func(State)
}

// DI
func NewContext(sessionAPI SessionAPI, store SessionStore, logger *zap.Logger) *Context {
	return &Context{
		api:        sessionAPI,
		store:      store,
		logger:     logger,
		subscribed: map[int]func(State){},
	}
}

// 現在の状態のコピー
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// 状態が変わるたびにfnを呼ぶ。戻り値で解除
func (c *Context) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribed[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribed, id)
		c.mu.Unlock()
	}
}

// Init は保存済みのセッションをサーバーで確かめる。
// 拒否・通信エラー・キャンセルはすべてセッション破棄（fail closed）
func (c *Context) Init(ctx context.Context) {
	c.update(func(s *State) { s.Loading = true })

	sess, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("load stored session", zap.Error(err))
		c.discard()
		return
	}
	if sess == nil {
		c.update(func(s *State) {
			s.User = nil
			s.Loading = false
		})
		return
	}

	if err := c.api.ValidateToken(ctx, sess.Token); err != nil {
		c.logger.Info("stored session rejected", zap.Error(err))
		c.discard()
		return
	}

	user := sess.User
	c.update(func(s *State) {
		s.User = &user
		s.Loading = false
	})
}

// Login はサーバーでログインして保存する。失敗はerrorにサーバーの文言を入れて返す
func (c *Context) Login(ctx context.Context, email string, password string) error {
	c.mu.Lock()
	if c.loggingIn {
		c.mu.Unlock()
		return ErrLoginInProgress
	}
	c.loggingIn = true
	c.mu.Unlock()

	c.update(func(s *State) {
		s.Loading = true
		s.Error = ""
	})

	user, err := c.login(ctx, email, password)

	c.update(func(s *State) {
		if err != nil {
			s.Error = message(err)
		} else {
			s.User = user
		}
		s.Loading = false
	})

	c.mu.Lock()
	c.loggingIn = false
	c.mu.Unlock()

	return err
}

func (c *Context) login(ctx context.Context, email string, password string) (*model.User, error) {
	out, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, storage.Session{User: out.User, Token: out.Token}); err != nil {
		c.logger.Error("save session", zap.Error(err))
		return nil, err
	}
	user := out.User
	return &user, nil
}

// Logout は通信なしでその場で消す
func (c *Context) Logout() {
	if err := c.store.Clear(context.Background()); err != nil {
		c.logger.Warn("clear session", zap.Error(err))
	}
	c.update(func(s *State) {
		s.User = nil
		s.Error = ""
	})
}

// ストレージを消してuser=nil, loading=false
func (c *Context) discard() {
	if err := c.store.Clear(context.Background()); err != nil {
		c.logger.Warn("clear session", zap.Error(err))
	}
	c.update(func(s *State) {
		s.User = nil
		s.Loading = false
	})
}

// 状態を変えて購読者へ通知（ロックの外で呼ぶ）
func (c *Context) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.snapshot()
	subs := make([]func(State), 0, len(c.subscribed))
	for _, sub := range c.subscribed {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func (c *Context) snapshot() State {
	snap := c.state
	if c.state.User != nil {
		u := *c.state.User
		snap.User = &u
	}
	return snap
}

func message(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
