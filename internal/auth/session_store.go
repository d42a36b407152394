package auth

import (
	"context"
	"errors"
	"time"

	"go-fleetpay/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps one active session per user. The database is the
// source of truth; Redis caches the active sid for the auth middleware.
type SessionStore struct {
	users  user.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionStore(users user.Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *SessionStore {
	l := zap.L().Named("auth.session")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.session")
	}
	return &SessionStore{users: users, rdb: rdb, ttl: ttl, logger: l}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// Start replaces any previous session of the user and returns the new sid.
func (s *SessionStore) Start(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	if err := s.users.SetActiveSession(ctx, userID, &sid); err != nil {
		return "", err
	}
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, sessionKey(userID), sid, s.ttl).Err(); err != nil {
			s.logger.Warn("cache session failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return sid, nil
}

func (s *SessionStore) IsActiveSession(ctx context.Context, userID, sid string) (bool, error) {
	if sid == "" {
		return false, nil
	}

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
		switch {
		case err == nil:
			return cached == sid, nil
		case errors.Is(err, redis.Nil):
		default:
			s.logger.Warn("session cache read failed, using database", zap.String("user_id", userID), zap.Error(err))
		}
	}

	active, err := s.users.GetActiveSession(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if active == nil {
		return false, nil
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, sessionKey(userID), *active, s.ttl).Err(); err != nil {
			s.logger.Warn("repopulate session cache failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return *active == sid, nil
}

func (s *SessionStore) Revoke(ctx context.Context, userID string) error {
	if err := s.users.SetActiveSession(ctx, userID, nil); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
			s.logger.Warn("drop cached session failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}
