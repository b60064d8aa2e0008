package store

import (
	"context"
	"errors"

	"expensetracker/models"

	"gorm.io/gorm"
)

// UserStore 用户存储
type UserStore struct {
	db *gorm.DB
}

// NewUserStore 创建用户存储
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// EnsureUser 按 uid 获取用户，不存在则创建
// 首次登录/注册成功后调用，密码不落库
func (s *UserStore) EnsureUser(ctx context.Context, uid, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &PersistenceError{Op: "ensure_user", Err: err}
	}

	user = models.User{UID: uid, Email: email}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &PersistenceError{Op: "ensure_user", Err: err}
	}
	return &user, nil
}

// GetByUID 按 uid 获取用户
func (s *UserStore) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get_user", Err: err}
	}
	return &user, nil
}
