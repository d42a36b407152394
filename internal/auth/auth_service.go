package auth

import (
	"context"
	"errors"
	"time"

	"go-fleetpay/internal/activity"
	autherrors "go-fleetpay/internal/auth/errors"
	"go-fleetpay/internal/auth/token"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sessions starts and ends the single active session of a user.
type Sessions interface {
	Start(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, userID string) error
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Logout(ctx context.Context, userID string) error
	Me(ctx context.Context, userID string) (AuthResponse, error)
}

type service struct {
	users    user.Repository
	sessions Sessions
	secret   string
	ttl      time.Duration
	recorder activity.Recorder
	logger   *zap.Logger
}

func NewService(
	users user.Repository,
	sessions Sessions,
	secret string,
	ttl time.Duration,
	recorder activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{
		users:    users,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		recorder: recorder,
		logger:   l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("login rejected: unknown email")
			return LoginResponse{}, autherrors.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		l.Info("login rejected: wrong password", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return LoginResponse{}, autherrors.ErrUserInactive
	}

	userID := u.ID.String()
	sid, err := s.sessions.Start(ctx, userID)
	if err != nil {
		l.Error("start session failed", zap.String("user_id", userID), zap.Error(err))
		return LoginResponse{}, autherrors.ErrSessionUnavailable.WithCause(err)
	}

	now := contextutil.Now(ctx)
	signed, err := token.Sign(s.secret, userID, u.Role, sid, s.ttl, now)
	if err != nil {
		return LoginResponse{}, err
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  userID,
		Action:   "LOGIN",
		Entity:   "user",
		EntityID: userID,
		Message:  u.Email + " signed in",
	})
	l.Info("login success", zap.String("user_id", userID), zap.String("role", u.Role))

	return LoginResponse{
		AccessToken: signed,
		ExpiresAt:   now.Add(s.ttl).UTC().Format(time.RFC3339),
		User:        toAuthResponse(u),
	}, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return err
	}
	s.recorder.Record(ctx, activity.Entry{
		ActorID:  userID,
		Action:   "LOGOUT",
		Entity:   "user",
		EntityID: userID,
		Message:  "signed out",
	})
	return nil
}

func (s *service) Me(ctx context.Context, userID string) (AuthResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}
	return toAuthResponse(u), nil
}

func toAuthResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
