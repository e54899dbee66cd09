package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookmarks-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *gorm.DB) *UserRepo { return &UserRepo{db: tx} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

// FindByKeyID 按当前有效 API key 的 jti 查
func (r *UserRepo) FindByKeyID(ctx context.Context, keyID string) (*domain.User, error) {
	if keyID == "" {
		return nil, nil
	}
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "api_key_id = ?", keyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// List 管理端：按 name/email 搜索，附带书签数
func (r *UserRepo) List(ctx context.Context, q domain.PageQuery) (domain.Page[domain.UserWithStats], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.User{}).
			Scopes(searchIn(q.Search, "users.name", "users.email"))
	}
	page, err := findPage[domain.User](base, "users", q)
	if err != nil {
		return domain.Page[domain.UserWithStats]{}, err
	}

	ids := make([]uint, len(page.Items))
	for i, u := range page.Items {
		ids[i] = u.ID
	}
	type countRow struct {
		UserID uint
		N      int64
	}
	var rows []countRow
	if len(ids) > 0 {
		err = r.db.WithContext(ctx).Model(&domain.Bookmark{}).
			Select("user_id, COUNT(*) AS n").
			Where("user_id IN ?", ids).
			Group("user_id").
			Scan(&rows).Error
		if err != nil {
			return domain.Page[domain.UserWithStats]{}, err
		}
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.N
	}

	items := make([]domain.UserWithStats, len(page.Items))
	for i, u := range page.Items {
		items[i] = domain.UserWithStats{User: u, BookmarksCount: counts[u.ID]}
	}
	return domain.Page[domain.UserWithStats]{Items: items, Total: page.Total, Page: page.Page, PerPage: page.PerPage}, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete 级联删除：书签关联、书签、标签关联、标签、用户。需在事务内调用
func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&domain.Bookmark{}).Select("id").Where("user_id = ?", id)
	ownedTags := db.Model(&domain.Tag{}).Select("id").Where("user_id = ?", id)

	if err := db.Where("bookmark_id IN (?)", owned).Delete(&domain.BookmarkTag{}).Error; err != nil {
		return err
	}
	if err := db.Where("tag_id IN (?)", ownedTags).Delete(&domain.BookmarkTag{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&domain.Bookmark{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&domain.Tag{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.User{}, id).Error
}
