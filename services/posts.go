package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"platform/models"

	"github.com/google/uuid"
)

// Сколько раз повторяем вставку при проигрыше гонки за slug
const slugRetryLimit = 5

type PostService struct {
	store   PostStore
	users   *UserService
	follows *FollowService
	slugs   *SlugAllocator
	ranking *RankingService
}

func NewPostService(store PostStore, users *UserService, follows *FollowService, ranking *RankingService) *PostService {
	return &PostService{
		store:   store,
		users:   users,
		follows: follows,
		slugs:   NewSlugAllocator(store),
		ranking: ranking,
	}
}

// Create создает пост в статусе черновика. Автор денормализуется в
// документ на момент записи.
func (ps *PostService) Create(ctx context.Context, post *models.Post, author *models.User) (*models.Post, error) {
	if post == nil || author == nil {
		return nil, fmt.Errorf("post and author are required: %w", ErrInvalidArgument)
	}

	post.ID = ""
	post.AuthorID = author.ID
	post.AuthorName = author.Username
	post.Status = models.PostDraft
	post.Stats = models.PostStats{}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	// Две параллельные вставки с одинаковым заголовком могут обе
	// увидеть slug свободным; проигравшая получает ErrConflict от
	// уникального индекса и пробует следующий суффикс
	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		slug, err := ps.slugs.Allocate(ctx, post.Title, "")
		if err != nil {
			return nil, err
		}
		post.Slug = slug

		err = ps.store.Insert(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		log.Printf("slug %q lost insert race, retrying", slug)
	}
	return nil, fmt.Errorf("failed to allocate slug for %q: %w", post.Title, ErrConflict)
}

// Update изменяет пост. Разрешено автору и администратору. При смене
// заголовка slug перевыпускается с исключением самого поста.
func (ps *PostService) Update(ctx context.Context, id string, updates *models.Post, actor *models.User) (*models.Post, error) {
	existing, err := ps.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ps.users.CanModify(actor, existing.AuthorID) {
		return nil, fmt.Errorf("you are not the author of this post: %w", ErrUnauthorized)
	}

	titleChanged := false
	if updates.Title != "" && updates.Title != existing.Title {
		existing.Title = updates.Title
		titleChanged = true
	}
	if updates.Content != "" {
		existing.Content = updates.Content
	}
	if updates.Tags != nil {
		existing.Tags = updates.Tags
	}
	if updates.FeaturedImage != "" {
		existing.FeaturedImage = updates.FeaturedImage
	}

	wasPublished := existing.Status == models.PostPublished
	if updates.Status != "" {
		existing.Status = updates.Status
	}

	if titleChanged || existing.Slug == "" {
		slug, err := ps.slugs.Allocate(ctx, existing.Title, existing.ID)
		if err != nil {
			return nil, err
		}
		existing.Slug = slug
	}
	existing.UpdatedAt = time.Now()

	if err := ps.store.Save(ctx, existing); err != nil {
		return nil, err
	}

	if !wasPublished && existing.Status == models.PostPublished {
		go ps.notifyFollowers(context.Background(), existing)
	}
	return existing, nil
}

// Delete удаляет пост. Разрешено автору и администратору.
func (ps *PostService) Delete(ctx context.Context, id string, actor *models.User) error {
	post, err := ps.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ps.users.CanModify(actor, post.AuthorID) {
		return fmt.Errorf("you are not the author of this post: %w", ErrUnauthorized)
	}
	if err := ps.store.Delete(ctx, id); err != nil {
		return err
	}
	if ps.ranking != nil {
		if err := ps.ranking.RemovePost(ctx, id); err != nil {
			log.Printf("failed to drop post %s from ranking: %v", id, err)
		}
	}
	return nil
}

func (ps *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return ps.store.FindByID(ctx, id)
}

func (ps *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("slug cannot be empty: %w", ErrInvalidArgument)
	}
	return ps.store.FindBySlug(ctx, slug)
}

// GetPublished возвращает страницу опубликованных постов, новые первыми
func (ps *PostService) GetPublished(ctx context.Context, page models.PageRequest) (*models.PostPage, error) {
	return ps.store.FindByStatus(ctx, models.PostPublished, page.Normalize())
}

// GetByAuthor возвращает страницу постов автора
func (ps *PostService) GetByAuthor(ctx context.Context, authorID int64, page models.PageRequest) (*models.PostPage, error) {
	return ps.store.FindByAuthorID(ctx, authorID, page.Normalize())
}

// IncrementViews атомарно увеличивает счетчик просмотров на стороне
// хранилища и обновляет рейтинг популярности
func (ps *PostService) IncrementViews(ctx context.Context, id string) error {
	if err := ps.store.IncrementViews(ctx, id); err != nil {
		return err
	}
	if ps.ranking != nil {
		if err := ps.ranking.RecordView(ctx, id); err != nil {
			log.Printf("failed to record view for post %s in ranking: %v", id, err)
		}
	}
	return nil
}

// AddComment добавляет встроенный комментарий к посту
func (ps *PostService) AddComment(ctx context.Context, postID, content string, author *models.User) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content cannot be empty: %w", ErrInvalidArgument)
	}
	if _, err := ps.store.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		Content:    content,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		CreatedAt:  time.Now(),
	}
	if err := ps.store.PushComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	return ps.store.FindByID(ctx, postID)
}

// DeleteComment удаляет комментарий из поста. Разрешено автору
// комментария и администратору.
func (ps *PostService) DeleteComment(ctx context.Context, postID, commentID string, actor *models.User) (*models.Post, error) {
	post, err := ps.store.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var target *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			target = &post.Comments[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("comment %s in post %s: %w", commentID, postID, ErrNotFound)
	}
	if !ps.users.CanModify(actor, target.AuthorID) {
		return nil, fmt.Errorf("you are not the author of this comment: %w", ErrUnauthorized)
	}

	if err := ps.store.PullComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	return ps.store.FindByID(ctx, postID)
}

// PopularPosts возвращает посты с наибольшим числом просмотров. Сначала
// пробуем рейтинг в Redis, при его недоступности сортируем по
// счетчикам в документном хранилище.
func (ps *PostService) PopularPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", ErrInvalidArgument)
	}

	page := models.PageRequest{Page: 0, Size: limit, SortField: "stats.views", SortDesc: true}

	if ps.ranking != nil {
		ids, err := ps.ranking.TopPosts(ctx, limit)
		if err != nil {
			log.Printf("popular ranking unavailable, falling back to store: %v", err)
		} else if len(ids) > 0 {
			result, err := ps.store.FindByIDIn(ctx, ids, page)
			if err != nil {
				return nil, err
			}
			return result.Posts, nil
		}
	}

	result, err := ps.store.FindByStatus(ctx, models.PostPublished, page)
	if err != nil {
		return nil, err
	}
	return result.Posts, nil
}

// notifyFollowers рассылает событие о публикации подписчикам автора.
// Ошибки рассылки не откатывают сам пост.
func (ps *PostService) notifyFollowers(ctx context.Context, post *models.Post) {
	if ps.follows == nil {
		return
	}
	followerIDs, err := ps.follows.ListFollowerIDs(ctx, post.AuthorID)
	if err != nil {
		log.Printf("failed to list followers of user %d: %v", post.AuthorID, err)
		return
	}

	for _, followerID := range followerIDs {
		event := PostEvent{
			UserID:     followerID,
			PostID:     post.ID,
			AuthorID:   post.AuthorID,
			AuthorName: post.AuthorName,
			Title:      post.Title,
			CreatedAt:  post.CreatedAt,
		}
		if err := PublishPostEvent(ctx, event); err != nil {
			// Fallback: без брокера шлем напрямую в WebSocket
			if wsErr := SendWsNotify(followerID, "post_published", post.AuthorName+" published: "+post.Title); wsErr != nil {
				log.Printf("failed to notify follower %d: %v", followerID, wsErr)
			}
		}
	}
}
