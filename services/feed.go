package services

import (
	"context"
	"fmt"
	"strings"

	"platform/metrics"
	"platform/models"

	"github.com/samber/lo"
)

// FeedService собирает производные ленты по двухфазной схеме: сначала
// реляционная БД отдает набор идентификаторов (подписки, избранное),
// затем один пакетный запрос в документное хранилище гидрирует
// содержимое. Идентификаторы, указывающие на удаленные документы,
// молча выпадают из результата.
type FeedService struct {
	follows   *FollowService
	favorites *FavoriteService
	users     *UserService
	posts     PostStore
	moments   MomentStore
}

func NewFeedService(follows *FollowService, favorites *FavoriteService, users *UserService, posts PostStore, moments MomentStore) *FeedService {
	return &FeedService{
		follows:   follows,
		favorites: favorites,
		users:     users,
		posts:     posts,
		moments:   moments,
	}
}

// GetFavoritePosts гидрирует избранное пользователя. Реляционная
// сторона отдает полный неупорядоченный набор id, порядок и пагинация
// целиком на документном хранилище.
func (fs *FeedService) GetFavoritePosts(ctx context.Context, userID int64, page models.PageRequest) (result *models.PostPage, err error) {
	defer metrics.RecordFeedRequest("favorites", &err)

	if _, err = fs.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	page = page.Normalize()

	ids, err := fs.favorites.ListFavoritePostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Пустое избранное не стоит похода в документное хранилище
	if len(ids) == 0 {
		return &models.PostPage{Posts: []models.Post{}, Total: 0, Page: page.Page, Size: page.Size}, nil
	}

	return fs.posts.FindByIDIn(ctx, ids, page)
}

// GetFollowingFeed возвращает опубликованные посты людей, на которых
// подписан userID, новые первыми
func (fs *FeedService) GetFollowingFeed(ctx context.Context, userID int64, page models.PageRequest) (result *models.PostPage, err error) {
	defer metrics.RecordFeedRequest("following_posts", &err)

	page = page.Normalize()
	following, err := fs.follows.GetFollowing(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if len(following.Users) == 0 {
		return &models.PostPage{Posts: []models.Post{}, Total: 0, Page: page.Page, Size: page.Size}, nil
	}

	authorIDs := lo.Map(following.Users, func(u models.User, _ int) int64 { return u.ID })
	return fs.posts.FindByAuthorIDIn(ctx, authorIDs, models.PostPublished, page)
}

// GetFollowingMoments - та же сборка, что и GetFollowingFeed, но для
// ленты моментов
func (fs *FeedService) GetFollowingMoments(ctx context.Context, userID int64, page models.PageRequest) (result *models.MomentPage, err error) {
	defer metrics.RecordFeedRequest("following_moments", &err)

	page = page.Normalize()
	following, err := fs.follows.GetFollowing(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if len(following.Users) == 0 {
		return &models.MomentPage{Moments: []models.Moment{}, Total: 0, Page: page.Page, Size: page.Size}, nil
	}

	authorIDs := lo.Map(following.Users, func(u models.User, _ int) int64 { return u.ID })
	return fs.moments.FindByAuthorIDIn(ctx, authorIDs, page)
}

// SearchByKeyword выполняет полнотекстовый поиск по опубликованным постам
func (fs *FeedService) SearchByKeyword(ctx context.Context, keyword string) (posts []models.Post, err error) {
	defer metrics.RecordFeedRequest("search", &err)

	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("search keyword cannot be empty: %w", ErrInvalidArgument)
	}
	return fs.posts.TextSearch(ctx, keyword)
}

// RecommendByTag подбирает опубликованные посты, разделяющие хотя бы
// один тег с исходным постом. Пост без тегов дает пустой список:
// запасной стратегии рекомендаций нет.
func (fs *FeedService) RecommendByTag(ctx context.Context, postID string, limit int) (posts []models.Post, err error) {
	defer metrics.RecordFeedRequest("recommend", &err)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", ErrInvalidArgument)
	}

	source, err := fs.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	tags := lo.Uniq(source.Tags)
	if len(tags) == 0 {
		return []models.Post{}, nil
	}

	page := models.PageRequest{Page: 0, Size: limit, SortField: "created_at", SortDesc: true}
	result, err := fs.posts.FindByTagsIn(ctx, tags, models.PostPublished, source.ID, page)
	if err != nil {
		return nil, err
	}
	return result.Posts, nil
}
