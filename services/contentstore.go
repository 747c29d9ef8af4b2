package services

import (
	"context"
	"time"

	"platform/models"
)

// PostStore - документное хранилище постов. Реализации сигнализируют об
// отсутствии документа через ErrNotFound, о нарушении уникального
// индекса slug - через ErrConflict.
//
// Все списочные методы применяют пагинацию и сортировку на стороне
// хранилища и возвращают общее количество независимо от страницы.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByIDIn(ctx context.Context, ids []string, page models.PageRequest) (*models.PostPage, error)
	FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.PostPage, error)
	FindByAuthorIDIn(ctx context.Context, authorIDs []int64, status models.PostStatus, page models.PageRequest) (*models.PostPage, error)
	FindByStatus(ctx context.Context, status models.PostStatus, page models.PageRequest) (*models.PostPage, error)
	FindByTagsIn(ctx context.Context, tags []string, status models.PostStatus, excludeID string, page models.PageRequest) (*models.PostPage, error)
	TextSearch(ctx context.Context, keyword string) ([]models.Post, error)
	IncrementViews(ctx context.Context, id string) error
	PushComment(ctx context.Context, id string, comment models.Comment) error
	PullComment(ctx context.Context, id string, commentID string) error
}

// MomentStore - документное хранилище моментов
type MomentStore interface {
	Insert(ctx context.Context, moment *models.Moment) error
	Save(ctx context.Context, moment *models.Moment) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Moment, error)
	FindByIDIn(ctx context.Context, ids []string) ([]models.Moment, error)
	FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.MomentPage, error)
	FindByAuthorIDIn(ctx context.Context, authorIDs []int64, page models.PageRequest) (*models.MomentPage, error)
	FindAll(ctx context.Context, page models.PageRequest) (*models.MomentPage, error)
	FindPopular(ctx context.Context, minLikeCount int64, page models.PageRequest) (*models.MomentPage, error)
	FindWithImages(ctx context.Context, page models.PageRequest) (*models.MomentPage, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]models.Moment, error)
	SearchByContent(ctx context.Context, keyword string) ([]models.Moment, error)
	CountByAuthorID(ctx context.Context, authorID int64) (int64, error)
	DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error)
}
