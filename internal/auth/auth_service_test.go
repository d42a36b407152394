package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-fleetpay/internal/auth"
	autherrors "go-fleetpay/internal/auth/errors"
	"go-fleetpay/internal/auth/token"
	"go-fleetpay/internal/user"
	userMock "go-fleetpay/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeSessions struct {
	sid      string
	startErr error
	revoked  []string
}

func (f *fakeSessions) Start(ctx context.Context, userID string) (string, error) {
	return f.sid, f.startErr
}

func (f *fakeSessions) Revoke(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &user.User{
		ID:       uuid.New(),
		Name:     "Ops",
		Email:    "ops@fleet.test",
		Password: string(hashed),
		Role:     "OPERATIONS",
		IsActive: true,
	}

	t.Run("success issues token with session id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		sessions := &fakeSessions{sid: "sid-42"}
		svc := auth.NewService(users, sessions, testSecret, time.Hour, nil)

		users.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)

		resp, err := svc.Login(ctx, u.Email, "password123")
		require.NoError(t, err)
		assert.Equal(t, "OPERATIONS", resp.User.Role)

		claims, err := token.Parse(testSecret, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.UserID)
		assert.Equal(t, "sid-42", claims.SessionID)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		svc := auth.NewService(users, &fakeSessions{}, testSecret, time.Hour, nil)

		users.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)

		_, err := svc.Login(ctx, u.Email, "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		svc := auth.NewService(users, &fakeSessions{}, testSecret, time.Hour, nil)

		users.EXPECT().FindByEmail(ctx, "ghost@fleet.test").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Login(ctx, "ghost@fleet.test", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		svc := auth.NewService(users, &fakeSessions{}, testSecret, time.Hour, nil)
		inactive := *u
		inactive.IsActive = false

		users.EXPECT().FindByEmail(ctx, u.Email).Return(&inactive, nil)

		_, err := svc.Login(ctx, u.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrUserInactive)
	})

	t.Run("session store down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		svc := auth.NewService(users, &fakeSessions{startErr: errors.New("db down")}, testSecret, time.Hour, nil)

		users.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)

		_, err := svc.Login(ctx, u.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrSessionUnavailable)
	})
}

func TestService_LogoutAndMe(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := userMock.NewMockRepository(ctrl)
	sessions := &fakeSessions{}
	svc := auth.NewService(users, sessions, testSecret, time.Hour, nil)

	require.NoError(t, svc.Logout(ctx, "u1"))
	assert.Equal(t, []string{"u1"}, sessions.revoked)

	users.EXPECT().FindByID(ctx, "u1").Return(nil, gorm.ErrRecordNotFound)
	_, err := svc.Me(ctx, "u1")
	assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
}
