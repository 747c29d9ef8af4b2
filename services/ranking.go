package services

import (
	"context"
	"fmt"
)

const POPULAR_POSTS_KEY = "popular_posts" // sorted set: member - id поста, score - просмотры

// RankingService ведет рейтинг популярности постов в Redis. Каждый
// просмотр инкрементит score поста в sorted set, выборка топа - одно
// обращение без похода в документное хранилище.
type RankingService struct{}

func NewRankingService() *RankingService {
	return &RankingService{}
}

// RecordView увеличивает счетчик поста в рейтинге
func (rs *RankingService) RecordView(ctx context.Context, postID string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	return RedisClient.ZIncrBy(ctx, POPULAR_POSTS_KEY, 1, postID).Err()
}

// TopPosts возвращает id самых просматриваемых постов
func (rs *RankingService) TopPosts(ctx context.Context, limit int) ([]string, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return RedisClient.ZRevRange(ctx, POPULAR_POSTS_KEY, 0, int64(limit-1)).Result()
}

// RemovePost выкидывает пост из рейтинга (вызывается при удалении)
func (rs *RankingService) RemovePost(ctx context.Context, postID string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.ZRem(ctx, POPULAR_POSTS_KEY, postID).Err()
}
