package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks-api/internal/core/auth"
	"bookmarks-api/internal/core/cache"
	"bookmarks-api/internal/core/database"
	"bookmarks-api/internal/core/mail"
	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/repo"
)

type recordingQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (q *recordingQueue) Enqueue(_ context.Context, m mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, m)
	return nil
}

func (q *recordingQueue) last() mail.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.msgs[len(q.msgs)-1]
}

type env struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	userRepo  *repo.UserRepo
	bmRepo    *repo.BookmarkRepo
	tagRepo   *repo.TagRepo
	tags      *TagService
	bookmarks *BookmarkService
	auth      *AuthService
	users     *UserService
	queue     *recordingQueue
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := database.NewTestDB(t)
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })

	users, bms, tagRepo := repo.NewUserRepo(db), repo.NewBookmarkRepo(db), repo.NewTagRepo(db)
	tags := NewTagService(db, tagRepo)
	q := &recordingQueue{}
	keys := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test"}
	return &env{
		db:        db,
		mr:        mr,
		userRepo:  users,
		bmRepo:    bms,
		tagRepo:   tagRepo,
		tags:      tags,
		bookmarks: NewBookmarkService(db, bms, tagRepo, tags),
		auth:      NewAuthService(db, users, keys, c, time.Minute, q, zap.NewNop()),
		users:     NewUserService(db, users, c, zap.NewNop()),
		queue:     q,
	}
}

func (e *env) identity(t *testing.T, email string) domain.Identity {
	t.Helper()
	u := &domain.User{Name: "Someone", Email: email, PasswordHash: "x", Role: domain.RoleUser, APIKeyID: auth.NewKeyID()}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return domain.Identity{UserID: u.ID, Role: u.Role, KeyID: u.APIKeyID}
}

func (e *env) bookmark(t *testing.T, id domain.Identity, title string, tags ...string) *domain.Bookmark {
	t.Helper()
	b, err := e.bookmarks.Create(context.Background(), id, BookmarkInput{
		Title: title, URL: "https://example.com/" + title, Tags: tags,
	})
	require.NoError(t, err)
	return b
}

func tagNames(ts []domain.Tag) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func ptr[T any](v T) *T { return &v }
