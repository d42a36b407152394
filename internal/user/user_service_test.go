package user_test

import (
	"context"
	"errors"
	"testing"

	"go-fleetpay/internal/user"
	usererrors "go-fleetpay/internal/user/errors"
	userMock "go-fleetpay/internal/user/mock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeAssignments struct{ n int64 }

func (f fakeAssignments) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	return f.n, nil
}

type fakeRevoker struct{ revoked []string }

func (f *fakeRevoker) Revoke(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes password and normalises email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{}, nil, nil)

		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, u *user.User) error {
			assert.Equal(t, "driver@fleet.test", u.Email)
			assert.Equal(t, "DRIVER", u.Role)
			assert.True(t, u.IsActive)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
			return nil
		})

		resp, err := svc.Create(ctx, user.CreateUserRequest{
			Name: "Budi", Email: " Driver@Fleet.test ", Password: "secret123", Role: "driver",
		})
		assert.NoError(t, err)
		assert.Equal(t, "DRIVER", resp.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{}, nil, nil)

		repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

		_, err := svc.Create(ctx, user.CreateUserRequest{Name: "A", Email: "a@b.c", Password: "secret123", Role: "ADMIN"})
		assert.ErrorIs(t, err, usererrors.ErrUserAlreadyExists)
	})

	t.Run("invalid role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := user.NewService(userMock.NewMockRepository(ctrl), nil, nil, nil)

		_, err := svc.Create(ctx, user.CreateUserRequest{Name: "A", Email: "a@b.c", Password: "secret123", Role: "PILOT"})
		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	actor := uuid.NewString()

	t.Run("conflict when assigned to active shipments", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{n: 2}, nil, nil)

		repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Email: "d@x"}, nil)

		err := svc.Delete(ctx, actor, id.String())
		assert.ErrorIs(t, err, usererrors.ErrHasActiveShipments)
	})

	t.Run("success revokes session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		revoker := &fakeRevoker{}
		svc := user.NewService(repo, fakeAssignments{}, revoker, nil)

		repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Email: "d@x"}, nil)
		repo.EXPECT().Delete(ctx, id.String()).Return(nil)

		assert.NoError(t, svc.Delete(ctx, actor, id.String()))
		assert.Equal(t, []string{id.String()}, revoker.revoked)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{}, nil, nil)

		repo.EXPECT().FindByID(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, actor, id.String()), usererrors.ErrUserNotFound)
	})

	t.Run("self delete rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := user.NewService(userMock.NewMockRepository(ctrl), fakeAssignments{}, nil, nil)

		assert.ErrorIs(t, svc.Delete(ctx, id.String(), id.String()), usererrors.ErrCannotDeleteSelf)
	})
}

func TestUserService_UpdateDeactivate(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	inactive := false

	t.Run("blocked by active shipments", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{n: 1}, nil, nil)

		repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Role: "DRIVER", IsActive: true}, nil)

		_, err := svc.Update(ctx, uuid.NewString(), id.String(), user.UpdateUserRequest{IsActive: &inactive})
		assert.ErrorIs(t, err, usererrors.ErrHasActiveShipments)
	})

	t.Run("clears session when deactivated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		revoker := &fakeRevoker{}
		svc := user.NewService(repo, fakeAssignments{}, revoker, nil)
		sid := "sid-1"

		repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Role: "DRIVER", IsActive: true, ActiveSessionID: &sid}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, u *user.User) error {
			assert.False(t, u.IsActive)
			assert.Nil(t, u.ActiveSessionID)
			return nil
		})

		resp, err := svc.Update(ctx, uuid.NewString(), id.String(), user.UpdateUserRequest{IsActive: &inactive})
		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.Len(t, revoker.revoked, 1)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := userMock.NewMockRepository(ctrl)
		svc := user.NewService(repo, fakeAssignments{}, nil, nil)
		name := "New"

		repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Role: "FINANCE", IsActive: true}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(errors.New("db down"))

		_, err := svc.Update(ctx, uuid.NewString(), id.String(), user.UpdateUserRequest{Name: &name})
		assert.EqualError(t, err, "db down")
	})
}
