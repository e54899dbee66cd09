package router

import (
	"time"

	"bookmarks-api/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

func stamp(t time.Time) string { return t.UTC().Format(timeLayout) }

type tagResource struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
}

func newTagResource(t *domain.Tag) tagResource {
	return tagResource{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: stamp(t.CreatedAt)}
}

type bookmarkResource struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Favorite  bool          `json:"favorite"`
	Archived  bool          `json:"archived"`
	CreatedAt string        `json:"created_at"`
	Tags      []tagResource `json:"tags"`
}

func newBookmarkResource(b *domain.Bookmark) bookmarkResource {
	tags := make([]tagResource, len(b.Tags))
	for i := range b.Tags {
		tags[i] = newTagResource(&b.Tags[i])
	}
	return bookmarkResource{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		Favorite:  b.Favorite,
		Archived:  b.Archived(),
		CreatedAt: stamp(b.CreatedAt),
		Tags:      tags,
	}
}

type userResource struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	CreatedAt      string `json:"created_at"`
	BookmarksCount *int64 `json:"bookmarks_count,omitempty"`
}

func newUserResource(u *domain.User) userResource {
	return userResource{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: stamp(u.CreatedAt)}
}

func newUserStatsResource(u *domain.UserWithStats) userResource {
	r := newUserResource(&u.User)
	n := u.BookmarksCount
	r.BookmarksCount = &n
	return r
}

// mapItems 列表项转换
func mapItems[T, R any](items []T, f func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = f(&items[i])
	}
	return out
}

type messageResource struct {
	Message string `json:"message"`
}
