package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookmarks-api/internal/domain"
)

func TestCreateWithTags(t *testing.T) {
	e := newEnv(t)
	me := e.identity(t, "me@example.com")

	b := e.bookmark(t, me, "laravel", "PHP", "php", "Laravel  News")
	assert.Equal(t, me.UserID, b.UserID)
	assert.False(t, b.Archived())
	assert.Equal(t, []string{"php", "laravel news"}, tagNames(b.Tags))

	plain := e.bookmark(t, me, "no-tags")
	assert.NotNil(t, plain.Tags)
	assert.Empty(t, plain.Tags)
}

func TestCreateIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")

	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:fail_assoc", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "bookmark_tag" {
			_ = tx.AddError(errors.New("association insert failed"))
		}
	}))

	_, err := e.bookmarks.Create(ctx, me, BookmarkInput{Title: "t", URL: "https://a.com", Tags: []string{"new tag"}})
	require.Error(t, err)

	var n int64
	require.NoError(t, e.db.Model(&domain.Bookmark{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, e.db.Model(&domain.Tag{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestOwnershipChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.identity(t, "owner@example.com")
	intruder := e.identity(t, "intruder@example.com")
	b := e.bookmark(t, owner, "mine", "secret")

	_, err := e.bookmarks.Get(ctx, intruder, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.bookmarks.Update(ctx, intruder, b.ID, BookmarkPatch{Title: ptr("hacked")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, e.bookmarks.Delete(ctx, intruder, b.ID), domain.ErrForbidden)
	_, err = e.bookmarks.Favorite(ctx, intruder, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.bookmarks.Archive(ctx, intruder, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// 不存在的 id 永远是 404
	_, err = e.bookmarks.Get(ctx, intruder, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.bookmarks.Delete(ctx, intruder, 424242), domain.ErrNotFound)

	_, err = e.bookmarks.Get(ctx, domain.Identity{}, b.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	got, err := e.bookmarks.Get(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestFavoriteTransitions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	b := e.bookmark(t, me, "fav")

	got, err := e.bookmarks.Favorite(ctx, me, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	_, err = e.bookmarks.Favorite(ctx, me, b.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, msgAlreadyFavorite, err.Error())

	got, err = e.bookmarks.Unfavorite(ctx, me, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Favorite)
	_, err = e.bookmarks.Unfavorite(ctx, me, b.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err = e.bookmarks.Favorite(ctx, me, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
}

func TestTransitionLosesToConcurrentWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	b := e.bookmark(t, me, "contested")

	// 前置检查通过之后、写之前，另一个请求先改了同一行
	var rival string
	var rivalArgs []any
	require.NoError(t, e.db.Callback().Update().Before("gorm:update").Register("test:rival_write", func(tx *gorm.DB) {
		if rival == "" || tx.Statement.Table != "bookmarks" {
			return
		}
		sql, args := rival, rivalArgs
		rival = ""
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, sql, args...)
		require.NoError(t, err)
	}))

	rival, rivalArgs = "UPDATE bookmarks SET favorite = ? WHERE id = ?", []any{true, b.ID}
	_, err := e.bookmarks.Favorite(ctx, me, b.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, msgAlreadyFavorite, err.Error())

	rival, rivalArgs = "UPDATE bookmarks SET deleted_at = ? WHERE id = ?", []any{time.Now(), b.ID}
	_, err = e.bookmarks.Archive(ctx, me, b.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, msgAlreadyArchived, err.Error())

	got, err := e.bookmarks.Get(ctx, me, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.True(t, got.Archived())

	// 没有竞争时照常切换
	got, err = e.bookmarks.Unarchive(ctx, me, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived())
}

func TestFavoriteBlockedWhileArchived(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	plain := e.bookmark(t, me, "plain")
	fav := e.bookmark(t, me, "fav")
	_, err := e.bookmarks.Favorite(ctx, me, fav.ID)
	require.NoError(t, err)

	_, err = e.bookmarks.Archive(ctx, me, plain.ID)
	require.NoError(t, err)
	_, err = e.bookmarks.Archive(ctx, me, fav.ID)
	require.NoError(t, err)

	_, err = e.bookmarks.Favorite(ctx, me, plain.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = e.bookmarks.Unfavorite(ctx, me, fav.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = e.bookmarks.Update(ctx, me, plain.ID, BookmarkPatch{Favorite: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// 归档状态下仍可改标题；favorite 不变不算冲突
	got, err := e.bookmarks.Update(ctx, me, fav.ID, BookmarkPatch{Title: ptr("renamed"), Favorite: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestArchiveRoundTripKeepsTags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	b := e.bookmark(t, me, "keep", "go", "rust")

	got, err := e.bookmarks.Archive(ctx, me, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived())
	_, err = e.bookmarks.Archive(ctx, me, b.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, msgAlreadyArchived, err.Error())

	active, err := e.bookmarks.List(ctx, me, domain.ScopeActive, domain.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, active.Items)
	archived, err := e.bookmarks.List(ctx, me, domain.ScopeArchived, domain.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, archived.Items, 1)

	got, err = e.bookmarks.Unarchive(ctx, me, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
	assert.Equal(t, []string{"go", "rust"}, tagNames(got.Tags))

	_, err = e.bookmarks.Unarchive(ctx, me, b.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateSemantics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	b := e.bookmark(t, me, "orig", "go", "php")

	// 无变化不写库
	same, err := e.bookmarks.Update(ctx, me, b.ID, BookmarkPatch{Title: ptr("orig")})
	require.NoError(t, err)
	assert.True(t, same.UpdatedAt.Equal(b.UpdatedAt))

	// tags 缺省不动
	got, err := e.bookmarks.Update(ctx, me, b.ID, BookmarkPatch{URL: ptr("https://new.example.com")})
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", got.URL)
	assert.Equal(t, []string{"go", "php"}, tagNames(got.Tags))

	// tags 同步
	got, err = e.bookmarks.Update(ctx, me, b.ID, BookmarkPatch{Tags: &[]string{"PHP", "Rust"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"php", "rust"}, tagNames(got.Tags))

	// 空集合解除全部关联
	got, err = e.bookmarks.Update(ctx, me, b.ID, BookmarkPatch{Tags: &[]string{}})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	// tag 本身保留
	var n int64
	require.NoError(t, e.db.Model(&domain.Tag{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestPermanentDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	b := e.bookmark(t, me, "gone", "go")
	_, err := e.bookmarks.Archive(ctx, me, b.ID)
	require.NoError(t, err)

	require.NoError(t, e.bookmarks.Delete(ctx, me, b.ID))
	assert.ErrorIs(t, e.bookmarks.Delete(ctx, me, b.ID), domain.ErrNotFound)

	var n int64
	require.NoError(t, e.db.Model(&domain.BookmarkTag{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListSearchAndPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	for _, in := range []BookmarkInput{
		{Title: "Luke Downing Blog", URL: "https://downing.tech"},
		{Title: "Some Dummy Website", URL: "https://websiteisdown.com"},
		{Title: "Laravel Website", URL: "https://laravel.com"},
	} {
		_, err := e.bookmarks.Create(ctx, me, in)
		require.NoError(t, err)
	}
	p, err := e.bookmarks.List(ctx, me, domain.ScopeActive, domain.PageQuery{Search: "down"})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	for _, b := range p.Items {
		assert.NotEqual(t, "Laravel Website", b.Title)
	}

	other := e.identity(t, "other@example.com")
	for i := 0; i < 20; i++ {
		e.bookmark(t, other, fmt.Sprintf("b%d", i))
	}
	p, err = e.bookmarks.List(ctx, other, domain.ScopeActive, domain.PageQuery{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, int64(20), p.Total)
	assert.Equal(t, 2, p.LastPage())
}

func TestListByTag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	me := e.identity(t, "me@example.com")
	other := e.identity(t, "other@example.com")
	b := e.bookmark(t, me, "tagged", "go")
	e.bookmark(t, me, "untagged")
	lonely, err := e.tags.Create(ctx, me, "lonely")
	require.NoError(t, err)

	p, err := e.bookmarks.ListByTag(ctx, me, b.Tags[0].ID, domain.PageQuery{})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "tagged", p.Items[0].Title)

	_, err = e.bookmarks.ListByTag(ctx, me, 9999, domain.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.bookmarks.ListByTag(ctx, me, lonely.ID, domain.PageQuery{})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, msgTagNotAssociated, err.Error())

	_, err = e.bookmarks.ListByTag(ctx, other, b.Tags[0].ID, domain.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
