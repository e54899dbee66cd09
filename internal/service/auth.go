package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks-api/internal/core/auth"
	"bookmarks-api/internal/core/cache"
	"bookmarks-api/internal/core/database"
	"bookmarks-api/internal/core/mail"
	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/repo"
	"bookmarks-api/pkg/utils"
)

const (
	MsgRegistered  = "Your account was successfully created. Your api key was sent to your email address."
	MsgRegenerated = "A new API Key was generated and sent to your email address."
)

func apiKeyCacheKey(keyID string) string { return "apikey:" + keyID }

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService struct {
	db    *gorm.DB
	users *repo.UserRepo
	keys  *auth.JWTer
	cache *cache.Cache
	ttl   time.Duration
	mail  mail.Queue
	l     *zap.Logger
}

func NewAuthService(db *gorm.DB, users *repo.UserRepo, keys *auth.JWTer, c *cache.Cache, ttl time.Duration, q mail.Queue, l *zap.Logger) *AuthService {
	return &AuthService{db: db, users: users, keys: keys, cache: c, ttl: ttl, mail: q, l: l}
}

// Register 建用户 + 生成 API key 同一事务；提交后再发邮件。返回明文 key
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	email := strings.TrimSpace(in.Email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", emailTaken()
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	u := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		APIKeyID:     auth.NewKeyID(),
	}
	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, u); err != nil {
			if database.IsDuplicate(err) {
				return emailTaken()
			}
			return err
		}
		tok, err := s.keys.Issue(u.ID, u.Role, u.APIKeyID)
		if err != nil {
			return err
		}
		token = tok
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	s.sendKey(ctx, u, token)
	return u, token, nil
}

func emailTaken() error { return domain.Invalid("email", "The email has already been taken.") }

// RegenerateAPIKey 轮换 jti：旧 key 立即失效
func (s *AuthService) RegenerateAPIKey(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", domain.Invalid("email", "The provided credentials are incorrect.")
	}

	old := u.APIKeyID
	u.APIKeyID = auth.NewKeyID()
	token, err := s.keys.Issue(u.ID, u.Role, u.APIKeyID)
	if err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return "", err
	}
	if err := s.cache.Delete(ctx, apiKeyCacheKey(old)); err != nil {
		s.l.Warn("evict api key cache failed", zap.Uint("uid", u.ID), zap.Error(err))
	}
	s.sendKey(ctx, u, token)
	return token, nil
}

func (s *AuthService) sendKey(ctx context.Context, u *domain.User, token string) {
	m, err := mail.APIKeyMessage(u.Email, u.Name, token)
	if err == nil {
		err = s.mail.Enqueue(ctx, m)
	}
	if err != nil {
		s.l.Error("queue api key mail failed", zap.Uint("uid", u.ID), zap.Error(err))
	}
}

// Authenticate 校验签名后按 jti 取身份（走缓存）；已轮换的 key 取不到
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.keys.Parse(token)
	if err != nil {
		return domain.Identity{}, domain.Unauthenticated()
	}
	id, err := cache.GetOrLoadJSON(s.cache, ctx, apiKeyCacheKey(claims.ID), s.ttl,
		func(ctx context.Context) (*domain.Identity, error) {
			u, err := s.users.FindByKeyID(ctx, claims.ID)
			if err != nil || u == nil {
				return nil, err
			}
			return &domain.Identity{UserID: u.ID, Role: u.Role, KeyID: u.APIKeyID}, nil
		})
	if err != nil {
		return domain.Identity{}, err
	}
	if id == nil || id.UserID != claims.UID || id.KeyID != claims.ID {
		return domain.Identity{}, domain.Unauthenticated()
	}
	return *id, nil
}

func (s *AuthService) Me(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.Unauthenticated()
	}
	return u, nil
}
