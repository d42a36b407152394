package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-fleetpay/internal/auth"
	userMock "go-fleetpay/internal/user/mock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func TestSessionStore_IsActiveSession(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour

	t.Run("cache hit matches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, mock := redismock.NewClientMock()
		store := auth.NewSessionStore(users, rdb, ttl)

		mock.ExpectGet("session:u1").SetVal("sid-1")

		ok, err := store.IsActiveSession(ctx, "u1", "sid-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache hit with older sid is superseded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, mock := redismock.NewClientMock()
		store := auth.NewSessionStore(users, rdb, ttl)

		mock.ExpectGet("session:u1").SetVal("sid-2")

		ok, err := store.IsActiveSession(ctx, "u1", "sid-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("cache miss falls back to database and repopulates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, mock := redismock.NewClientMock()
		store := auth.NewSessionStore(users, rdb, ttl)
		active := "sid-1"

		mock.ExpectGet("session:u1").RedisNil()
		users.EXPECT().GetActiveSession(ctx, "u1").Return(&active, nil)
		mock.ExpectSet("session:u1", "sid-1", ttl).SetVal("OK")

		ok, err := store.IsActiveSession(ctx, "u1", "sid-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure still consults database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, mock := redismock.NewClientMock()
		store := auth.NewSessionStore(users, rdb, ttl)

		mock.ExpectGet("session:u1").SetErr(errors.New("connection refused"))
		users.EXPECT().GetActiveSession(ctx, "u1").Return(nil, nil)

		ok, err := store.IsActiveSession(ctx, "u1", "sid-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("database failure surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		store := auth.NewSessionStore(users, nil, ttl)

		users.EXPECT().GetActiveSession(ctx, "u1").Return(nil, errors.New("db down"))

		_, err := store.IsActiveSession(ctx, "u1", "sid-1")
		assert.Error(t, err)
	})
}

func TestSessionStore_StartAndRevoke(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := userMock.NewMockRepository(ctrl)
	rdb, mock := redismock.NewClientMock()
	store := auth.NewSessionStore(users, rdb, time.Minute)

	var stored string
	users.EXPECT().SetActiveSession(ctx, "u1", gomock.Any()).DoAndReturn(func(ctx context.Context, id string, sid *string) error {
		require.NotNil(t, sid)
		stored = *sid
		return nil
	})
	mock.Regexp().ExpectSet("session:u1", `.+`, time.Minute).SetVal("OK")

	sid, err := store.Start(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, stored, sid)

	users.EXPECT().SetActiveSession(ctx, "u1", nil).Return(nil)
	mock.ExpectDel("session:u1").SetVal(1)

	require.NoError(t, store.Revoke(ctx, "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_DeactivatedUserHasNoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := userMock.NewMockRepository(ctrl)
	store := auth.NewSessionStore(users, nil, time.Hour)

	users.EXPECT().GetActiveSession(gomock.Any(), "u1").Return(nil, gorm.ErrRecordNotFound)

	ok, err := store.IsActiveSession(context.Background(), "u1", "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
