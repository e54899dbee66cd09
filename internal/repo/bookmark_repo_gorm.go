package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookmarks-api/internal/domain"
)

type BookmarkRepo struct{ db *gorm.DB }

func NewBookmarkRepo(db *gorm.DB) *BookmarkRepo { return &BookmarkRepo{db: db} }

func (r *BookmarkRepo) WithTx(tx *gorm.DB) *BookmarkRepo { return &BookmarkRepo{db: tx} }

func (r *BookmarkRepo) Create(ctx context.Context, b *domain.Bookmark) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// FindByID 含已归档；不存在返回 (nil, nil)
func (r *BookmarkRepo) FindByID(ctx context.Context, id uint) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scoped(scope domain.BookmarkScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch scope {
		case domain.ScopeArchived:
			return db.Where("bookmarks.deleted_at IS NOT NULL")
		case domain.ScopeFavorites:
			return db.Where("bookmarks.deleted_at IS NULL").Where("bookmarks.favorite = ?", true)
		default:
			return db.Where("bookmarks.deleted_at IS NULL")
		}
	}
}

// ListOwned owner 的书签列表：范围 + 搜索（title/url）+ 排序 + 分页，附带 tags
func (r *BookmarkRepo) ListOwned(ctx context.Context, owner uint, scope domain.BookmarkScope, q domain.PageQuery) (domain.Page[domain.Bookmark], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Bookmark{}).
			Where("bookmarks.user_id = ?", owner).
			Scopes(scoped(scope), searchIn(q.Search, "bookmarks.title", "bookmarks.url"))
	}
	return r.pageWithTags(ctx, base, q)
}

// ListTagged owner 名下挂了该 tag 的未归档书签
func (r *BookmarkRepo) ListTagged(ctx context.Context, owner, tagID uint, q domain.PageQuery) (domain.Page[domain.Bookmark], error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx)
		tagged := db.Model(&domain.BookmarkTag{}).Select("bookmark_id").Where("tag_id = ?", tagID)
		return db.Model(&domain.Bookmark{}).
			Where("bookmarks.user_id = ?", owner).
			Where("bookmarks.id IN (?)", tagged).
			Scopes(scoped(domain.ScopeActive), searchIn(q.Search, "bookmarks.title", "bookmarks.url"))
	}
	return r.pageWithTags(ctx, base, q)
}

func (r *BookmarkRepo) pageWithTags(ctx context.Context, base func() *gorm.DB, q domain.PageQuery) (domain.Page[domain.Bookmark], error) {
	page, err := findPage[domain.Bookmark](base, "bookmarks", q)
	if err != nil {
		return page, err
	}
	if err := r.LoadTags(ctx, page.Items); err != nil {
		return page, err
	}
	return page, nil
}

// UpdateColumns 只写变化的列；cols 为空不发 SQL（不动 updated_at）
func (r *BookmarkRepo) UpdateColumns(ctx context.Context, b *domain.Bookmark, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(b).Updates(cols).Error
}

// UpdateColumnsIf 带条件的更新；条件不满足（0 行）返回 false
func (r *BookmarkRepo) UpdateColumnsIf(ctx context.Context, b *domain.Bookmark, cols map[string]any, cond string, args ...any) (bool, error) {
	res := r.db.WithContext(ctx).Model(b).Where(cond, args...).Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete 永久删除（含 tag 关联）；需在事务内调用
func (r *BookmarkRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("bookmark_id = ?", id).Delete(&domain.BookmarkTag{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.Bookmark{}, id).Error
}

// ReplaceTags 同步关联：删掉不在 tagIDs 中的，按顺序补上缺的
func (r *BookmarkRepo) ReplaceTags(ctx context.Context, bookmarkID uint, tagIDs []uint) error {
	db := r.db.WithContext(ctx)

	del := db.Where("bookmark_id = ?", bookmarkID)
	if len(tagIDs) > 0 {
		del = del.Where("tag_id NOT IN ?", tagIDs)
	}
	if err := del.Delete(&domain.BookmarkTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	var existing []uint
	if err := db.Model(&domain.BookmarkTag{}).Where("bookmark_id = ?", bookmarkID).
		Pluck("tag_id", &existing).Error; err != nil {
		return err
	}
	have := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	var rows []domain.BookmarkTag
	for _, id := range tagIDs {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		rows = append(rows, domain.BookmarkTag{BookmarkID: bookmarkID, TagID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

// LoadTags 一次查询批量填充 Tags，按关联先后排序
func (r *BookmarkRepo) LoadTags(ctx context.Context, bms []domain.Bookmark) error {
	if len(bms) == 0 {
		return nil
	}
	ids := make([]uint, len(bms))
	for i := range bms {
		ids[i] = bms[i].ID
		bms[i].Tags = []domain.Tag{}
	}

	type row struct {
		domain.Tag
		BookmarkID uint
	}
	var rows []row
	err := r.db.WithContext(ctx).Table("tags").
		Select("tags.*, bookmark_tag.bookmark_id AS bookmark_id").
		Joins("JOIN bookmark_tag ON bookmark_tag.tag_id = tags.id").
		Where("bookmark_tag.bookmark_id IN ?", ids).
		Order("bookmark_tag.id ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	idx := make(map[uint]int, len(bms))
	for i := range bms {
		idx[bms[i].ID] = i
	}
	for _, rw := range rows {
		if i, ok := idx[rw.BookmarkID]; ok {
			bms[i].Tags = append(bms[i].Tags, rw.Tag)
		}
	}
	return nil
}

func (r *BookmarkRepo) LoadTagsOne(ctx context.Context, b *domain.Bookmark) error {
	one := []domain.Bookmark{*b}
	if err := r.LoadTags(ctx, one); err != nil {
		return err
	}
	b.Tags = one[0].Tags
	return nil
}
