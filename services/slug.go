package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SlugAllocator выдает уникальный URL-безопасный идентификатор поста,
// производный от заголовка. Аллокация не транзакционна: уникальный
// индекс по slug в хранилище - последняя линия защиты, вызывающая
// сторона повторяет попытку при ErrConflict на вставке.
type SlugAllocator struct {
	posts PostStore
}

func NewSlugAllocator(posts PostStore) *SlugAllocator {
	return &SlugAllocator{posts: posts}
}

// Allocate возвращает свободный slug для заголовка. excludeID - ID
// обновляемого поста: совпадение slug с ним самим не считается
// коллизией, поэтому повторное сохранение с тем же заголовком не меняет
// slug.
func (sa *SlugAllocator) Allocate(ctx context.Context, title, excludeID string) (string, error) {
	base := Slugify(title)

	slug := base
	counter := 0
	for {
		existing, err := sa.posts.FindBySlug(ctx, slug)
		if errors.Is(err, ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to probe slug %q: %w", slug, err)
		}
		if excludeID != "" && existing.ID == excludeID {
			return slug, nil
		}
		counter++
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Slugify нормализует заголовок: нижний регистр, латиница, цифры и
// CJK-символы, пробелы заменяются дефисами, серии дефисов схлопываются
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 0x4e00 && r <= 0x9fa5:
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteByte(' ')
		case r == '-':
			b.WriteRune(r)
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	if slug == "" {
		slug = "post"
	}
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled-post"
	}
	return slug
}
