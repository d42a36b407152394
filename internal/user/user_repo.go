package user

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type RepoFilter struct {
	Role   string
	Q      string
	Active *bool
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, f RepoFilter) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	SetActiveSession(ctx context.Context, id string, sid *string) error
	GetActiveSession(ctx context.Context, id string) (*string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	return &u, err
}

func (r *repository) FindAll(ctx context.Context, f RepoFilter) ([]User, error) {
	q := r.db.WithContext(ctx).Model(&User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}

	var users []User
	err := q.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&User{}, "id = ?", id).Error
}

func (r *repository) SetActiveSession(ctx context.Context, id string, sid *string) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("active_session_id", sid).Error
}

func (r *repository) GetActiveSession(ctx context.Context, id string) (*string, error) {
	var u User
	err := r.db.WithContext(ctx).
		Select("id", "active_session_id").
		Where("is_active = ?", true).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return u.ActiveSessionID, nil
}
