package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"platform/db"
	"platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteService struct {
	users *UserService
	posts PostStore
}

func NewFavoriteService(users *UserService, posts PostStore) *FavoriteService {
	return &FavoriteService{users: users, posts: posts}
}

// AddFavorite добавляет пост в избранное пользователя. Запись с мягким
// удалением реактивируется вместо вставки новой.
func (fs *FavoriteService) AddFavorite(ctx context.Context, userID int64, postID string) error {
	// Проверяем обе стороны до записи: пользователя в реляционной БД,
	// пост в документном хранилище
	if _, err := fs.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := fs.posts.FindByID(ctx, postID); err != nil {
		return err
	}

	var fav models.PostFavorite
	err := db.GetWriteDB(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&fav).Error
	if err == nil {
		if fav.Deleted == 0 {
			return fmt.Errorf("post %s already favorited: %w", postID, ErrConflict)
		}
		// Реактивация мягко удаленной записи
		fav.Deleted = 0
		fav.UpdatedAt = time.Now()
		if err := db.GetWriteDB(ctx).Save(&fav).Error; err != nil {
			return fmt.Errorf("failed to reactivate favorite: %w", err)
		}
		log.Printf("user %d re-favorited post %s", userID, postID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check favorite: %w", err)
	}

	fav = models.PostFavorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		PostID:    postID,
		Deleted:   0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(&fav).Error; err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	log.Printf("user %d favorited post %s", userID, postID)
	return nil
}

// RemoveFavorite мягко удаляет запись избранного
func (fs *FavoriteService) RemoveFavorite(ctx context.Context, userID int64, postID string) error {
	var fav models.PostFavorite
	err := db.GetWriteDB(ctx).
		Where("user_id = ? AND post_id = ? AND deleted = 0", userID, postID).
		First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("post %s is not favorited: %w", postID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check favorite: %w", err)
	}

	fav.Deleted = 1
	fav.UpdatedAt = time.Now()
	if err := db.GetWriteDB(ctx).Save(&fav).Error; err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	log.Printf("user %d unfavorited post %s", userID, postID)
	return nil
}

// IsFavorited проверяет наличие активной записи избранного
func (fs *FavoriteService) IsFavorited(ctx context.Context, userID int64, postID string) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.PostFavorite{}).
		Where("user_id = ? AND post_id = ? AND deleted = 0", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavoritePostIDs возвращает все активные post_id пользователя.
// Порядок не гарантируется, пагинацию и сортировку выполняет
// документное хранилище при гидрации.
func (fs *FavoriteService) ListFavoritePostIDs(ctx context.Context, userID int64) ([]string, error) {
	var ids []string
	err := db.GetReadOnlyDB(ctx).Model(&models.PostFavorite{}).
		Where("user_id = ? AND deleted = 0", userID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite post ids: %w", err)
	}
	return ids, nil
}
