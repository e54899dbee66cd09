package service

import "bookmarks-api/internal/domain"

// 先判存在再判归属：不存在一律 404，存在但非本人 403

func authorizeBookmark(id domain.Identity, b *domain.Bookmark) error {
	if !id.Authenticated() {
		return domain.Unauthenticated()
	}
	if b == nil {
		return domain.NotFound("Bookmark")
	}
	if !b.OwnedBy(id) {
		return domain.Forbidden("")
	}
	return nil
}

func authorizeTag(id domain.Identity, t *domain.Tag) error {
	if !id.Authenticated() {
		return domain.Unauthenticated()
	}
	if t == nil {
		return domain.NotFound("Tag")
	}
	if !t.OwnedBy(id) {
		return domain.Forbidden("")
	}
	return nil
}

func requireIdentity(id domain.Identity) error {
	if !id.Authenticated() {
		return domain.Unauthenticated()
	}
	return nil
}

func requireAdmin(id domain.Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return domain.Forbidden("")
	}
	return nil
}
