// Package storage はクライアントのセッション（userとtoken）をローカルのSQLiteに保存する。
package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	keyUser  = "user"
	keyToken = "token"
)

// 保存されたセッション
type Session struct {
	User  model.User
	Token string
}

type Store struct {
	db *sql.DB
}

// pathのSQLiteを開いてマイグレーションする（":memory:"も可）
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// 書き込みは1本、:memory:も同じDBを見る
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate session db: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// userとtokenを同じTxで書く
func (s *Store) Save(ctx context.Context, sess Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.withinTx(ctx, func(tx *sql.Tx) error {
		if err := set(ctx, tx, keyUser, userJSON); err != nil {
			return err
		}
		return set(ctx, tx, keyToken, []byte(sess.Token))
	})
}

// どちらかが無ければ (nil, nil)
func (s *Store) Load(ctx context.Context) (*Session, error) {
	userJSON, err := s.get(ctx, keyUser)
	if err != nil {
		return nil, err
	}
	tok, err := s.get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	if userJSON == nil || len(tok) == 0 {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, fmt.Errorf("unmarshal stored user: %w", err)
	}
	return &Session{User: user, Token: string(tok)}, nil
}

// 両方のキーを消す
func (s *Store) Clear(ctx context.Context) error {
	return s.withinTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM session WHERE key IN (?, ?)`, keyUser, keyToken)
		if err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, tx *sql.Tx, key string, value []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) withinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
