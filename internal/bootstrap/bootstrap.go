package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks-api/internal/core/auth"
	"bookmarks-api/internal/core/cache"
	"bookmarks-api/internal/core/config"
	"bookmarks-api/internal/core/database"
	"bookmarks-api/internal/core/mail"
	"bookmarks-api/internal/repo"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/router"
)

// App 进程内共享的依赖；三个入口（api / admin / bookmarkctl）共用
type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache

	// 有 redis 时为可靠队列（需要跑 worker），否则为进程内 Async
	Queue  mail.Queue
	Worker *mail.RedisQueue
	async  *mail.Async

	Auth      *service.AuthService
	Bookmarks *service.BookmarkService
	Tags      *service.TagService
	Users     *service.UserService
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	return db, nil
}

// New 打开 DB / Redis，组装 repo 与 service
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *App, err error) {
	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Log: l, DB: db}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	sender, err := mail.NewSender(cfg.Mail, l)
	if err != nil {
		return nil, fmt.Errorf("mail sender: %w", err)
	}
	if cfg.Redis.Addr != "" {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := a.Cache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.Worker = mail.NewRedisQueue(a.Cache.RDB, cfg.Mail.QueueKey, cfg.Mail.MaxAttempts, sender, l)
		a.Queue = a.Worker
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		a.async = mail.NewAsync(sender, l)
		a.Queue = a.async
		l.Warn("redis disabled: api key cache off, mails delivered in-process")
	}

	keys := &auth.JWTer{Secret: []byte(cfg.APIKey.Secret), Issuer: cfg.APIKey.Issuer}
	users, bms, tagRepo := repo.NewUserRepo(db), repo.NewBookmarkRepo(db), repo.NewTagRepo(db)
	ttl := time.Duration(cfg.APIKey.CacheTTLSec) * time.Second

	a.Tags = service.NewTagService(db, tagRepo)
	a.Bookmarks = service.NewBookmarkService(db, bms, tagRepo, a.Tags)
	a.Auth = service.NewAuthService(db, users, keys, a.Cache, ttl, a.Queue, l)
	a.Users = service.NewUserService(db, users, a.Cache, l)
	return a, nil
}

// Health DB 与 Redis 探活
func (a *App) Health(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return errors.Join(sqlDB.PingContext(ctx), a.Cache.Ping(ctx))
}

func (a *App) RouterDeps() router.Deps {
	return router.Deps{
		Log:       a.Log,
		Env:       a.Cfg.App.Env,
		Limits:    a.Cfg.Limits,
		Auth:      a.Auth,
		Bookmarks: a.Bookmarks,
		Tags:      a.Tags,
		Users:     a.Users,
		Health:    a.Health,
	}
}

// Close 等进程内邮件发完，再关 Redis / DB
func (a *App) Close() {
	if a.async != nil {
		a.async.Wait()
	}
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("redis close", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
