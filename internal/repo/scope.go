package repo

import (
	"strings"

	"gorm.io/gorm"

	"bookmarks-api/internal/domain"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern 大小写不敏感的子串匹配，转义通配符
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// searchIn 在多列上做 OR 搜索，整体加括号与其它条件 AND
func searchIn(term string, cols ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(cols) == 0 {
			return db
		}
		p := likePattern(term)
		parts := make([]string, len(cols))
		args := make([]any, len(cols))
		for i, c := range cols {
			parts[i] = "LOWER(" + c + ") LIKE ? ESCAPE '!'"
			args[i] = p
		}
		return db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
}

// ordered 按创建时间排序，id 兜底保证翻页稳定
func ordered(table string, o domain.Order) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		dir := "DESC"
		if o == domain.OrderOldest {
			dir = "ASC"
		}
		return db.Order(table + ".created_at " + dir).Order(table + ".id " + dir)
	}
}

func paginate(q domain.PageQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.PerPage)
	}
}

// findPage base 每次调用都要返回新的查询链（count 与 find 各用一次）
func findPage[T any](base func() *gorm.DB, table string, q domain.PageQuery) (domain.Page[T], error) {
	q = q.Normalize()
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return domain.Page[T]{}, err
	}
	var items []T
	if total > 0 {
		if err := base().Scopes(ordered(table, q.Order), paginate(q)).Find(&items).Error; err != nil {
			return domain.Page[T]{}, err
		}
	}
	return domain.NewPage(items, total, q), nil
}
