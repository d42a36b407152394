package user

import (
	"context"
	"strings"
	"time"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/shared/contextutil"
	usererrors "go-fleetpay/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AssignmentChecker counts shipments that still need the user.
type AssignmentChecker interface {
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
}

// SessionRevoker ends the user's active session.
type SessionRevoker interface {
	Revoke(ctx context.Context, userID string) error
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, f ListFilter) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, id string) error
}

type service struct {
	repo        Repository
	assignments AssignmentChecker
	sessions    SessionRevoker
	recorder    activity.Recorder
	logger      *zap.Logger
}

func NewService(
	repo Repository,
	assignments AssignmentChecker,
	sessions SessionRevoker,
	recorder activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{
		repo:        repo,
		assignments: assignments,
		sessions:    sessions,
		recorder:    recorder,
		logger:      l,
	}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]UserResponse, error) {
	role := ""
	if f.Role != "" {
		r, ok := domain.ParseRole(f.Role)
		if !ok {
			return nil, usererrors.ErrInvalidRole
		}
		role = string(r)
	}

	users, err := s.repo.FindAll(ctx, RepoFilter{Role: role, Q: strings.TrimSpace(f.Q), Active: f.Active})
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("create user requested", zap.String("email", req.Email), zap.String("role", req.Role))

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     string(role),
		IsActive: true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		l.Warn("create user persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:   "USER_CREATED",
		Entity:   "user",
		EntityID: u.ID.String(),
		Message:  "user " + u.Email + " created",
		Meta:     map[string]any{"role": u.Role},
	})
	l.Info("create user success", zap.String("user_id", u.ID.String()))

	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	deactivating := req.IsActive != nil && !*req.IsActive && u.IsActive
	roleChanging := false
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return UserResponse{}, usererrors.ErrInvalidRole
		}
		roleChanging = string(role) != u.Role
		u.Role = string(role)
	}

	if deactivating && actorID == id {
		return UserResponse{}, usererrors.ErrCannotDeleteSelf
	}
	if deactivating || roleChanging {
		if err := s.ensureNoActiveShipments(ctx, id); err != nil {
			return UserResponse{}, err
		}
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return UserResponse{}, err
		}
		u.Password = string(hashed)
	}
	revoke := deactivating || roleChanging || req.Password != nil
	if revoke {
		u.ActiveSessionID = nil
	}

	if err := s.repo.Update(ctx, u); err != nil {
		l.Warn("update user persist failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	if revoke {
		s.revokeSession(ctx, id)
	}

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  actorID,
		Action:   "USER_UPDATED",
		Entity:   "user",
		EntityID: id,
		Message:  "user " + u.Email + " updated",
		Meta:     map[string]any{"role": u.Role, "is_active": u.IsActive},
	})

	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if actorID == id {
		return usererrors.ErrCannotDeleteSelf
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.ensureNoActiveShipments(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.revokeSession(ctx, id)

	s.recorder.Record(ctx, activity.Entry{
		ActorID:  actorID,
		Action:   "USER_DELETED",
		Entity:   "user",
		EntityID: id,
		Message:  "user " + u.Email + " deleted",
	})
	return nil
}

func (s *service) ensureNoActiveShipments(ctx context.Context, id string) error {
	if s.assignments == nil {
		return nil
	}
	n, err := s.assignments.CountActiveByUser(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return usererrors.ErrHasActiveShipments
	}
	return nil
}

func (s *service) revokeSession(ctx context.Context, id string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Revoke(ctx, id); err != nil {
		s.logger.Warn("revoke session failed", zap.String("user_id", id), zap.Error(err))
	}
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
