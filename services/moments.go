package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"platform/models"
)

type MomentService struct {
	store MomentStore
	users *UserService
}

func NewMomentService(store MomentStore, users *UserService) *MomentService {
	return &MomentService{store: store, users: users}
}

// Create сохраняет момент с денормализованным автором
func (ms *MomentService) Create(ctx context.Context, moment *models.Moment, author *models.User) (*models.Moment, error) {
	if moment == nil || author == nil {
		return nil, fmt.Errorf("moment and author are required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(moment.Content) == "" {
		return nil, fmt.Errorf("moment content cannot be empty: %w", ErrInvalidArgument)
	}

	moment.ID = ""
	moment.AuthorID = author.ID
	moment.AuthorName = author.Username
	moment.LikeCount = 0
	if moment.Comments == nil {
		moment.Comments = []models.Comment{}
	}
	now := time.Now()
	moment.CreatedAt = now
	moment.UpdatedAt = now

	if err := ms.store.Insert(ctx, moment); err != nil {
		return nil, err
	}
	return moment, nil
}

func (ms *MomentService) GetByID(ctx context.Context, id string) (*models.Moment, error) {
	if id == "" {
		return nil, fmt.Errorf("moment id cannot be empty: %w", ErrInvalidArgument)
	}
	return ms.store.FindByID(ctx, id)
}

// Delete удаляет момент. Разрешено автору и администратору.
func (ms *MomentService) Delete(ctx context.Context, id string, actor *models.User) error {
	if id == "" {
		return fmt.Errorf("moment id cannot be empty: %w", ErrInvalidArgument)
	}
	moment, err := ms.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !ms.users.CanModify(actor, moment.AuthorID) {
		return fmt.Errorf("you are not the author of this moment: %w", ErrUnauthorized)
	}
	return ms.store.Delete(ctx, id)
}

// GetByAuthor возвращает страницу моментов автора, новые первыми
func (ms *MomentService) GetByAuthor(ctx context.Context, authorID int64, page models.PageRequest) (*models.MomentPage, error) {
	return ms.store.FindByAuthorID(ctx, authorID, page.Normalize())
}

// GetAll возвращает общую ленту моментов
func (ms *MomentService) GetAll(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	return ms.store.FindAll(ctx, page.Normalize())
}

// GetPopular возвращает моменты с числом лайков выше порога
func (ms *MomentService) GetPopular(ctx context.Context, minLikeCount int64, page models.PageRequest) (*models.MomentPage, error) {
	if minLikeCount < 0 {
		return nil, fmt.Errorf("like count threshold cannot be negative: %w", ErrInvalidArgument)
	}
	return ms.store.FindPopular(ctx, minLikeCount, page.Normalize())
}

// GetWithImages возвращает страницу моментов с изображениями
func (ms *MomentService) GetWithImages(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	return ms.store.FindWithImages(ctx, page.Normalize())
}

// GetBetween возвращает моменты, созданные в интервале времени
func (ms *MomentService) GetBetween(ctx context.Context, start, end time.Time) ([]models.Moment, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("time range bounds are required: %w", ErrInvalidArgument)
	}
	if start.After(end) {
		return nil, fmt.Errorf("start must not be after end: %w", ErrInvalidArgument)
	}
	return ms.store.FindBetween(ctx, start, end)
}

// SearchByContent ищет моменты по содержимому
func (ms *MomentService) SearchByContent(ctx context.Context, keyword string) ([]models.Moment, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("search keyword cannot be empty: %w", ErrInvalidArgument)
	}
	return ms.store.SearchByContent(ctx, keyword)
}

// GetByIDs выполняет пакетную выборку моментов
func (ms *MomentService) GetByIDs(ctx context.Context, ids []string) ([]models.Moment, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("moment id list cannot be empty: %w", ErrInvalidArgument)
	}
	return ms.store.FindByIDIn(ctx, ids)
}

func (ms *MomentService) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return ms.store.CountByAuthorID(ctx, authorID)
}

// DeleteByAuthor удаляет все моменты автора и возвращает их количество
func (ms *MomentService) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return ms.store.DeleteByAuthorID(ctx, authorID)
}
