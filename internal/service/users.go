package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks-api/internal/core/cache"
	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/repo"
)

// UserService 管理端 / CLI 用
type UserService struct {
	db    *gorm.DB
	users *repo.UserRepo
	cache *cache.Cache
	l     *zap.Logger
}

func NewUserService(db *gorm.DB, users *repo.UserRepo, c *cache.Cache, l *zap.Logger) *UserService {
	return &UserService{db: db, users: users, cache: c, l: l}
}

func (s *UserService) List(ctx context.Context, actor domain.Identity, q domain.PageQuery) (domain.Page[domain.UserWithStats], error) {
	if err := requireAdmin(actor); err != nil {
		return domain.Page[domain.UserWithStats]{}, err
	}
	return s.users.List(ctx, q)
}

// Delete 级联删除用户的书签与标签
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, userID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.NotFound("User")
	}
	if u.ID == actor.UserID {
		return domain.Conflict("You cannot delete your own account.")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.users.WithTx(tx).Delete(ctx, u.ID)
	})
	if err != nil {
		return err
	}
	s.evict(ctx, u)
	return nil
}

// Promote 设为 admin（CLI，无请求身份）
func (s *UserService) Promote(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User")
	}
	if u.Role == domain.RoleAdmin {
		return nil, domain.Conflict("This user is already an admin.")
	}
	u.Role = domain.RoleAdmin
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.evict(ctx, u)
	return u, nil
}

// ListAll CLI 列表，不做身份校验
func (s *UserService) ListAll(ctx context.Context, q domain.PageQuery) (domain.Page[domain.UserWithStats], error) {
	return s.users.List(ctx, q)
}

func (s *UserService) evict(ctx context.Context, u *domain.User) {
	if err := s.cache.Delete(ctx, apiKeyCacheKey(u.APIKeyID)); err != nil {
		s.l.Warn("evict api key cache failed", zap.Uint("uid", u.ID), zap.Error(err))
	}
}
