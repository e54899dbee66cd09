package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"bookmarks-api/internal/core/database"
	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/repo"
)

const maxTagName = 255

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeTagName 空白折叠成一个空格、去首尾空白、转小写
func NormalizeTagName(raw string) string {
	return strings.ToLower(strings.TrimSpace(spaceRun.ReplaceAllString(raw, " ")))
}

// NormalizeTagNames 规范化后按首次出现去重
func NormalizeTagNames(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n := NormalizeTagName(r)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type TagService struct {
	db   *gorm.DB
	tags *repo.TagRepo
}

func NewTagService(db *gorm.DB, tags *repo.TagRepo) *TagService {
	return &TagService{db: db, tags: tags}
}

// FetchOrCreate 每个规范化名字取已有 tag 或新建；并发重复插入在 savepoint 内失败后回查。
// created 是本次新插入的条数，调用方在事务提交后再计数。
func (s *TagService) FetchOrCreate(ctx context.Context, tx *gorm.DB, owner uint, names []string) ([]domain.Tag, int, error) {
	tags := s.tags.WithTx(tx)
	created := 0
	normalized := NormalizeTagNames(names)
	out := make([]domain.Tag, 0, len(normalized))
	for _, name := range normalized {
		t, err := tags.FindByName(ctx, owner, name)
		if err != nil {
			return nil, 0, err
		}
		if t == nil {
			var fresh bool
			t, fresh, err = s.create(ctx, tx, owner, name)
			if err != nil {
				return nil, 0, err
			}
			if fresh {
				created++
			}
		}
		out = append(out, *t)
	}
	return out, created, nil
}

func (s *TagService) create(ctx context.Context, tx *gorm.DB, owner uint, name string) (*domain.Tag, bool, error) {
	t := &domain.Tag{Name: name, UserID: owner}
	err := tx.Transaction(func(sp *gorm.DB) error {
		return s.tags.WithTx(sp).Create(ctx, t)
	})
	if err == nil {
		return t, true, nil
	}
	if !database.IsDuplicate(err) {
		return nil, false, err
	}
	// 别的请求抢先建了同名 tag；加锁读拿到已提交的那一行
	got, ferr := s.tags.WithTx(tx).FindByNameLocked(ctx, owner, name)
	if ferr != nil {
		return nil, false, ferr
	}
	if got == nil {
		return nil, false, fmt.Errorf("tag %q: %w", name, domain.ErrDuplicate)
	}
	return got, false, nil
}

func (s *TagService) List(ctx context.Context, id domain.Identity, q domain.PageQuery) (domain.Page[domain.Tag], error) {
	if err := requireIdentity(id); err != nil {
		return domain.Page[domain.Tag]{}, err
	}
	return s.tags.ListOwned(ctx, id.UserID, q)
}

func (s *TagService) Get(ctx context.Context, id domain.Identity, tagID uint) (*domain.Tag, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	t, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTag(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

func validTagName(name string) error {
	switch {
	case name == "":
		return domain.Invalid("name", "The name field is required.")
	case len([]rune(name)) > maxTagName:
		return domain.Invalid("name", "The name must not be greater than 255 characters.")
	}
	return nil
}

func tagTaken() error { return domain.Invalid("name", "The name has already been taken.") }

func (s *TagService) Create(ctx context.Context, id domain.Identity, rawName string) (*domain.Tag, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	name := NormalizeTagName(rawName)
	if err := validTagName(name); err != nil {
		return nil, err
	}
	taken, err := s.tags.NameTaken(ctx, id.UserID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, tagTaken()
	}
	t := &domain.Tag{Name: name, UserID: id.UserID}
	if err := s.tags.Create(ctx, t); err != nil {
		if database.IsDuplicate(err) {
			return nil, tagTaken()
		}
		return nil, err
	}
	tagsCreated.Inc()
	return t, nil
}

// Rename 名字不变时不写库
func (s *TagService) Rename(ctx context.Context, id domain.Identity, tagID uint, rawName string) (*domain.Tag, error) {
	t, err := s.Get(ctx, id, tagID)
	if err != nil {
		return nil, err
	}
	name := NormalizeTagName(rawName)
	if err := validTagName(name); err != nil {
		return nil, err
	}
	if name == t.Name {
		return t, nil
	}
	taken, err := s.tags.NameTaken(ctx, id.UserID, name, t.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, tagTaken()
	}
	t.Name = name
	if err := s.tags.Rename(ctx, t); err != nil {
		if database.IsDuplicate(err) {
			return nil, tagTaken()
		}
		return nil, err
	}
	return t, nil
}

func (s *TagService) Delete(ctx context.Context, id domain.Identity, tagID uint) error {
	t, err := s.Get(ctx, id, tagID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.tags.WithTx(tx).Delete(ctx, t.ID)
	})
}
