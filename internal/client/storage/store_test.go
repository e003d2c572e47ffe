package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ebrahimbeiati/inventory-management/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoad_Empty_ReturnsNilNil(t *testing.T) {
	s := setupStore(t)

	sess, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSaveAndLoad(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	user := model.User{ID: "u1", Name: "Alice", Email: "a@x.com", Role: model.RoleAdmin, Status: model.StatusActive}
	require.NoError(t, s.Save(ctx, Session{User: user, Token: "tok-1"}))

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, model.RoleAdmin, sess.User.Role)

	// 上書き
	require.NoError(t, s.Save(ctx, Session{User: user, Token: "tok-2"}))
	sess, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", sess.Token)
}

func TestClear_RemovesBothKeys(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{User: model.User{ID: "u1"}, Token: "tok"}))
	require.NoError(t, s.Clear(ctx))

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	v, err := s.get(ctx, keyUser)
	require.NoError(t, err)
	assert.Nil(t, v)

	// 何度消してもOK
	require.NoError(t, s.Clear(ctx))
}

// tokenだけ残っている場合はセッションなし
func TestLoad_MissingUser(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.withinTx(ctx, func(tx *sql.Tx) error {
		return set(ctx, tx, keyToken, []byte("tok"))
	}))

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

// ファイルに保存したものは開き直しても残る
func TestOpen_File_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Session{User: model.User{ID: "u1"}, Token: "tok"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok", sess.Token)
}
