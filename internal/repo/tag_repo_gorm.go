package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookmarks-api/internal/domain"
)

type TagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) *TagRepo { return &TagRepo{db: db} }

func (r *TagRepo) WithTx(tx *gorm.DB) *TagRepo { return &TagRepo{db: tx} }

func (r *TagRepo) FindByID(ctx context.Context, id uint) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) FindByName(ctx context.Context, owner uint, name string) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.WithContext(ctx).First(&t, "user_id = ? AND name = ?", owner, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByNameLocked FOR SHARE 读，拿到已提交的最新行（sqlite 方言忽略锁子句）
func (r *TagRepo) FindByNameLocked(ctx context.Context, owner uint, name string) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "SHARE"}).
		First(&t, "user_id = ? AND name = ?", owner, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NameTaken 同一 owner 下是否已有该 name（exceptID 非 0 时排除自身）
func (r *TagRepo) NameTaken(ctx context.Context, owner uint, name string, exceptID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Tag{}).Where("user_id = ? AND name = ?", owner, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *TagRepo) Create(ctx context.Context, t *domain.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Rename 写 name（BeforeSave 同步 slug）
func (r *TagRepo) Rename(ctx context.Context, t *domain.Tag) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// Delete 删除 tag 及其全部关联，书签保留；需在事务内调用
func (r *TagRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tag_id = ?", id).Delete(&domain.BookmarkTag{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.Tag{}, id).Error
}

func (r *TagRepo) ListOwned(ctx context.Context, owner uint, q domain.PageQuery) (domain.Page[domain.Tag], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Tag{}).
			Where("tags.user_id = ?", owner).
			Scopes(searchIn(q.Search, "tags.name"))
	}
	return findPage[domain.Tag](base, "tags", q)
}

// AttachedToOwner tag 是否挂在 owner 的任一书签上（含已归档）
func (r *TagRepo) AttachedToOwner(ctx context.Context, tagID, owner uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.BookmarkTag{}).
		Joins("JOIN bookmarks ON bookmarks.id = bookmark_tag.bookmark_id").
		Where("bookmark_tag.tag_id = ? AND bookmarks.user_id = ?", tagID, owner).
		Count(&n).Error
	return n > 0, err
}
