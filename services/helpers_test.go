package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"platform/db"
	"platform/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB поднимает sqlite в памяти вместо Postgres. Глобальный ORM
// подменяется на время теста, поэтому тесты пакета не параллелятся.
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = database.AutoMigrate(&models.User{}, &models.UserFollow{}, &models.PostFavorite{})
	require.NoError(t, err)

	prev := db.ORM
	db.ORM = database
	t.Cleanup(func() { db.ORM = prev })
}

func createTestUser(t *testing.T, roles string) *models.User {
	t.Helper()

	user := &models.User{
		Username: strings.ToLower(gofakeit.FirstName()) + "_" + gofakeit.Numerify("######"),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, false, true, true, false, 10),
		Roles:    roles,
		Status:   models.UserActive,
	}
	require.NoError(t, db.GetWriteDB(context.Background()).Create(user).Error)
	return user
}

// fakePostStore - документное хранилище постов в памяти. Счетчики
// вызовов позволяют проверять, что сборка лент не ходит в хранилище
// при пустом наборе идентификаторов.
type fakePostStore struct {
	mu    sync.Mutex
	posts map[string]models.Post
	seq   int

	findByIDInCalls       int
	findByAuthorIDInCalls int
}

var (
	_ PostStore   = (*fakePostStore)(nil)
	_ MomentStore = (*fakeMomentStore)(nil)
)

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]models.Post)}
}

func (f *fakePostStore) Insert(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == post.Slug {
			return fmt.Errorf("slug %q is taken: %w", post.Slug, ErrConflict)
		}
	}
	if post.ID == "" {
		f.seq++
		post.ID = fmt.Sprintf("post-%d", f.seq)
	}
	f.posts[post.ID] = *post
	return nil
}

func (f *fakePostStore) Save(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[post.ID]; !ok {
		return fmt.Errorf("post %s: %w", post.ID, ErrNotFound)
	}
	for id, p := range f.posts {
		if id != post.ID && p.Slug == post.Slug {
			return fmt.Errorf("slug %q is taken: %w", post.Slug, ErrConflict)
		}
	}
	f.posts[post.ID] = *post
	return nil
}

func (f *fakePostStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) FindByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (f *fakePostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("post with slug %q: %w", slug, ErrNotFound)
}

func (f *fakePostStore) selectPage(matched []models.Post, page models.PageRequest) *models.PostPage {
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		if page.SortField == "stats.views" {
			less = matched[i].Stats.Views < matched[j].Stats.Views
		} else {
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if page.SortDesc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(matched) {
		end = len(matched)
	}
	return &models.PostPage{Posts: matched[start:end], Total: total, Page: page.Page, Size: page.Size}
}

func (f *fakePostStore) FindByIDIn(ctx context.Context, ids []string, page models.PageRequest) (*models.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByIDInCalls++

	matched := []models.Post{}
	for _, id := range ids {
		if p, ok := f.posts[id]; ok {
			matched = append(matched, p)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakePostStore) FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Post{}
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			matched = append(matched, p)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakePostStore) FindByAuthorIDIn(ctx context.Context, authorIDs []int64, status models.PostStatus, page models.PageRequest) (*models.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByAuthorIDInCalls++

	matched := []models.Post{}
	for _, p := range f.posts {
		for _, id := range authorIDs {
			if p.AuthorID == id && p.Status == status {
				matched = append(matched, p)
				break
			}
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakePostStore) FindByStatus(ctx context.Context, status models.PostStatus, page models.PageRequest) (*models.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Post{}
	for _, p := range f.posts {
		if p.Status == status {
			matched = append(matched, p)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakePostStore) FindByTagsIn(ctx context.Context, tags []string, status models.PostStatus, excludeID string, page models.PageRequest) (*models.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Post{}
	for _, p := range f.posts {
		if p.ID == excludeID || p.Status != status {
			continue
		}
	tagLoop:
		for _, pt := range p.Tags {
			for _, t := range tags {
				if pt == t {
					matched = append(matched, p)
					break tagLoop
				}
			}
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakePostStore) TextSearch(ctx context.Context, keyword string) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keyword = strings.ToLower(keyword)
	matched := []models.Post{}
	for _, p := range f.posts {
		if p.Status != models.PostPublished {
			continue
		}
		if strings.Contains(strings.ToLower(p.Title), keyword) || strings.Contains(strings.ToLower(p.Content), keyword) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (f *fakePostStore) IncrementViews(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	p.Stats.Views++
	f.posts[id] = p
	return nil
}

func (f *fakePostStore) PushComment(ctx context.Context, id string, comment models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	p.Comments = append(p.Comments, comment)
	p.UpdatedAt = time.Now()
	f.posts[id] = p
	return nil
}

func (f *fakePostStore) PullComment(ctx context.Context, id string, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			p.UpdatedAt = time.Now()
			f.posts[id] = p
			return nil
		}
	}
	return fmt.Errorf("comment %s in post %s: %w", commentID, id, ErrNotFound)
}

// fakeMomentStore - документное хранилище моментов в памяти
type fakeMomentStore struct {
	mu      sync.Mutex
	moments map[string]models.Moment
	seq     int

	findByAuthorIDInCalls int
}

func newFakeMomentStore() *fakeMomentStore {
	return &fakeMomentStore{moments: make(map[string]models.Moment)}
}

func (f *fakeMomentStore) Insert(ctx context.Context, moment *models.Moment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if moment.ID == "" {
		f.seq++
		moment.ID = fmt.Sprintf("moment-%d", f.seq)
	}
	f.moments[moment.ID] = *moment
	return nil
}

func (f *fakeMomentStore) Save(ctx context.Context, moment *models.Moment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.moments[moment.ID]; !ok {
		return fmt.Errorf("moment %s: %w", moment.ID, ErrNotFound)
	}
	f.moments[moment.ID] = *moment
	return nil
}

func (f *fakeMomentStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.moments[id]; !ok {
		return fmt.Errorf("moment %s: %w", id, ErrNotFound)
	}
	delete(f.moments, id)
	return nil
}

func (f *fakeMomentStore) FindByID(ctx context.Context, id string) (*models.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.moments[id]
	if !ok {
		return nil, fmt.Errorf("moment %s: %w", id, ErrNotFound)
	}
	return &m, nil
}

func (f *fakeMomentStore) FindByIDIn(ctx context.Context, ids []string) ([]models.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, id := range ids {
		if m, ok := f.moments[id]; ok {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (f *fakeMomentStore) selectPage(matched []models.Moment, page models.PageRequest) *models.MomentPage {
	sort.Slice(matched, func(i, j int) bool {
		less := matched[i].CreatedAt.Before(matched[j].CreatedAt)
		if page.SortDesc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(matched) {
		end = len(matched)
	}
	return &models.MomentPage{Moments: matched[start:end], Total: total, Page: page.Page, Size: page.Size}
}

func (f *fakeMomentStore) FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.MomentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, m := range f.moments {
		if m.AuthorID == authorID {
			matched = append(matched, m)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakeMomentStore) FindByAuthorIDIn(ctx context.Context, authorIDs []int64, page models.PageRequest) (*models.MomentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByAuthorIDInCalls++

	matched := []models.Moment{}
	for _, m := range f.moments {
		for _, id := range authorIDs {
			if m.AuthorID == id {
				matched = append(matched, m)
				break
			}
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakeMomentStore) FindAll(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, m := range f.moments {
		matched = append(matched, m)
	}
	return f.selectPage(matched, page), nil
}

func (f *fakeMomentStore) FindPopular(ctx context.Context, minLikeCount int64, page models.PageRequest) (*models.MomentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, m := range f.moments {
		if m.LikeCount > minLikeCount {
			matched = append(matched, m)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakeMomentStore) FindWithImages(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, m := range f.moments {
		if m.Images != "" {
			matched = append(matched, m)
		}
	}
	return f.selectPage(matched, page), nil
}

func (f *fakeMomentStore) FindBetween(ctx context.Context, start, end time.Time) ([]models.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Moment{}
	for _, m := range f.moments {
		if !m.CreatedAt.Before(start) && !m.CreatedAt.After(end) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (f *fakeMomentStore) SearchByContent(ctx context.Context, keyword string) ([]models.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keyword = strings.ToLower(keyword)
	matched := []models.Moment{}
	for _, m := range f.moments {
		if strings.Contains(strings.ToLower(m.Content), keyword) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (f *fakeMomentStore) CountByAuthorID(ctx context.Context, authorID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.moments {
		if m.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMomentStore) DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for id, m := range f.moments {
		if m.AuthorID == authorID {
			delete(f.moments, id)
			count++
		}
	}
	return count, nil
}
