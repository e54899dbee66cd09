package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/repo"
)

const (
	msgAlreadyFavorite  = "This bookmark has already been added to your favorites."
	msgNotFavorite      = "This bookmark is not in your favorites."
	msgArchivedFavorite = "An archived bookmark cannot be added to or removed from your favorites."
	msgAlreadyArchived  = "This bookmark has already been added to the archives."
	msgNotArchived      = "This bookmark is not in the archives."
	msgTagNotAssociated = "This tag is not associated to any of your bookmarks."
	msgStateChanged     = "This bookmark was changed by another request. Please try again."
)

type BookmarkInput struct {
	Title    string
	URL      string
	Favorite bool
	Tags     []string
}

// BookmarkPatch nil 字段不改；Tags 非 nil（含空）即同步，空则全部解除
type BookmarkPatch struct {
	Title    *string
	URL      *string
	Favorite *bool
	Tags     *[]string
}

type BookmarkService struct {
	db      *gorm.DB
	bms     *repo.BookmarkRepo
	tagRepo *repo.TagRepo
	tags    *TagService
}

func NewBookmarkService(db *gorm.DB, bms *repo.BookmarkRepo, tagRepo *repo.TagRepo, tags *TagService) *BookmarkService {
	return &BookmarkService{db: db, bms: bms, tagRepo: tagRepo, tags: tags}
}

func (s *BookmarkService) List(ctx context.Context, id domain.Identity, scope domain.BookmarkScope, q domain.PageQuery) (domain.Page[domain.Bookmark], error) {
	if err := requireIdentity(id); err != nil {
		return domain.Page[domain.Bookmark]{}, err
	}
	return s.bms.ListOwned(ctx, id.UserID, scope, q)
}

func (s *BookmarkService) Get(ctx context.Context, id domain.Identity, bookmarkID uint) (*domain.Bookmark, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	b, err := s.bms.FindByID(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	if err := authorizeBookmark(id, b); err != nil {
		return nil, err
	}
	if err := s.bms.LoadTagsOne(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Create 书签 + tags 同一事务，任何一步失败全部回滚
func (s *BookmarkService) Create(ctx context.Context, id domain.Identity, in BookmarkInput) (*domain.Bookmark, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	b := &domain.Bookmark{Title: in.Title, URL: in.URL, Favorite: in.Favorite, UserID: id.UserID}
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bms := s.bms.WithTx(tx)
		if err := bms.Create(ctx, b); err != nil {
			return err
		}
		if len(in.Tags) > 0 {
			n, err := s.syncTags(ctx, tx, id.UserID, b.ID, in.Tags)
			if err != nil {
				return err
			}
			created = n
		}
		return bms.LoadTagsOne(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	tagsCreated.Add(float64(created))
	return b, nil
}

// syncTags 返回新建 tag 数
func (s *BookmarkService) syncTags(ctx context.Context, tx *gorm.DB, owner, bookmarkID uint, names []string) (int, error) {
	tags, created, err := s.tags.FetchOrCreate(ctx, tx, owner, names)
	if err != nil {
		return 0, err
	}
	ids := make([]uint, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return created, s.bms.WithTx(tx).ReplaceTags(ctx, bookmarkID, ids)
}

// Update 只写变化的列；已归档书签不能改 favorite
func (s *BookmarkService) Update(ctx context.Context, id domain.Identity, bookmarkID uint, p BookmarkPatch) (*domain.Bookmark, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	var out *domain.Bookmark
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bms := s.bms.WithTx(tx)
		b, err := bms.FindByID(ctx, bookmarkID)
		if err != nil {
			return err
		}
		if err := authorizeBookmark(id, b); err != nil {
			return err
		}

		cols := map[string]any{}
		if p.Title != nil && *p.Title != b.Title {
			cols["title"] = *p.Title
		}
		if p.URL != nil && *p.URL != b.URL {
			cols["url"] = *p.URL
		}
		if p.Favorite != nil && *p.Favorite != b.Favorite {
			if b.Archived() {
				return domain.Conflict(msgArchivedFavorite)
			}
			cols["favorite"] = *p.Favorite
		}
		if err := bms.UpdateColumns(ctx, b, cols); err != nil {
			return err
		}
		if p.Tags != nil {
			n, err := s.syncTags(ctx, tx, id.UserID, b.ID, *p.Tags)
			if err != nil {
				return err
			}
			created = n
		}
		if err := bms.LoadTagsOne(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	tagsCreated.Add(float64(created))
	return out, nil
}

// Delete 永久删除，不论是否归档
func (s *BookmarkService) Delete(ctx context.Context, id domain.Identity, bookmarkID uint) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bms := s.bms.WithTx(tx)
		b, err := bms.FindByID(ctx, bookmarkID)
		if err != nil {
			return err
		}
		if err := authorizeBookmark(id, b); err != nil {
			return err
		}
		return bms.Delete(ctx, b.ID)
	})
}

// 未归档
const notArchived = "deleted_at IS NULL"

func (s *BookmarkService) Favorite(ctx context.Context, id domain.Identity, bookmarkID uint) (*domain.Bookmark, error) {
	return s.transition(ctx, id, bookmarkID, "favorite", func(b *domain.Bookmark) (stateChange, error) {
		if b.Favorite {
			return stateChange{}, domain.Conflict(msgAlreadyFavorite)
		}
		if b.Archived() {
			return stateChange{}, domain.Conflict(msgArchivedFavorite)
		}
		return stateChange{
			cols: map[string]any{"favorite": true},
			cond: "favorite = ? AND " + notArchived, args: []any{false},
		}, nil
	})
}

func (s *BookmarkService) Unfavorite(ctx context.Context, id domain.Identity, bookmarkID uint) (*domain.Bookmark, error) {
	return s.transition(ctx, id, bookmarkID, "unfavorite", func(b *domain.Bookmark) (stateChange, error) {
		if !b.Favorite {
			return stateChange{}, domain.Conflict(msgNotFavorite)
		}
		if b.Archived() {
			return stateChange{}, domain.Conflict(msgArchivedFavorite)
		}
		return stateChange{
			cols: map[string]any{"favorite": false},
			cond: "favorite = ? AND " + notArchived, args: []any{true},
		}, nil
	})
}

func (s *BookmarkService) Archive(ctx context.Context, id domain.Identity, bookmarkID uint) (*domain.Bookmark, error) {
	return s.transition(ctx, id, bookmarkID, "archive", func(b *domain.Bookmark) (stateChange, error) {
		if b.Archived() {
			return stateChange{}, domain.Conflict(msgAlreadyArchived)
		}
		return stateChange{cols: map[string]any{"deleted_at": time.Now()}, cond: notArchived}, nil
	})
}

func (s *BookmarkService) Unarchive(ctx context.Context, id domain.Identity, bookmarkID uint) (*domain.Bookmark, error) {
	return s.transition(ctx, id, bookmarkID, "unarchive", func(b *domain.Bookmark) (stateChange, error) {
		if !b.Archived() {
			return stateChange{}, domain.Conflict(msgNotArchived)
		}
		return stateChange{cols: map[string]any{"deleted_at": nil}, cond: "deleted_at IS NOT NULL"}, nil
	})
}

// stateChange 要写的列 + 写入时仍须成立的前置条件
type stateChange struct {
	cols map[string]any
	cond string
	args []any
}

// transition 找 → 鉴权 → 前置条件 → 条件更新。
// 条件更新 0 行说明并发请求先改了状态，重读后按新状态给出 409。
func (s *BookmarkService) transition(
	ctx context.Context,
	id domain.Identity,
	bookmarkID uint,
	name string,
	apply func(b *domain.Bookmark) (stateChange, error),
) (*domain.Bookmark, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	b, err := s.bms.FindByID(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	if err := authorizeBookmark(id, b); err != nil {
		return nil, err
	}
	ch, err := apply(b)
	if err != nil {
		return nil, err
	}
	ok, err := s.bms.UpdateColumnsIf(ctx, b, ch.cols, ch.cond, ch.args...)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.lostRace(ctx, id, bookmarkID, apply)
	}
	transitions.WithLabelValues(name).Inc()
	if err := s.bms.LoadTagsOne(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookmarkService) lostRace(ctx context.Context, id domain.Identity, bookmarkID uint, apply func(*domain.Bookmark) (stateChange, error)) error {
	fresh, err := s.bms.FindByID(ctx, bookmarkID)
	if err != nil {
		return err
	}
	if err := authorizeBookmark(id, fresh); err != nil {
		return err
	}
	if _, err := apply(fresh); err != nil {
		return err
	}
	return domain.Conflict(msgStateChanged)
}

// ListByTag tag 不存在 404；不在本人任一书签上 409
func (s *BookmarkService) ListByTag(ctx context.Context, id domain.Identity, tagID uint, q domain.PageQuery) (domain.Page[domain.Bookmark], error) {
	var zero domain.Page[domain.Bookmark]
	if err := requireIdentity(id); err != nil {
		return zero, err
	}
	t, err := s.tagRepo.FindByID(ctx, tagID)
	if err != nil {
		return zero, err
	}
	if t == nil {
		return zero, domain.NotFound("Tag")
	}
	ok, err := s.tagRepo.AttachedToOwner(ctx, t.ID, id.UserID)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, domain.Conflict(msgTagNotAssociated)
	}
	return s.bms.ListTagged(ctx, id.UserID, t.ID, q)
}
