package services

import (
	"context"
	"fmt"
	"time"

	"platform/db"
	"platform/models"
)

type FollowService struct {
	users *UserService
}

func NewFollowService(users *UserService) *FollowService {
	return &FollowService{users: users}
}

// Follow создает направленное ребро follower -> following
func (fs *FollowService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return fmt.Errorf("cannot follow yourself: %w", ErrInvalidArgument)
	}

	// Проверяем, что оба пользователя существуют
	if _, err := fs.users.GetByID(ctx, followerID); err != nil {
		return err
	}
	if _, err := fs.users.GetByID(ctx, followingID); err != nil {
		return err
	}

	// Проверяем, что подписка еще не существует
	var existing int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check follow edge: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("already following user %d: %w", followingID, ErrConflict)
	}

	edge := &models.UserFollow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	// Гонку двух одновременных Follow ловит уникальный индекс по паре
	if err := db.GetWriteDB(ctx).Create(edge).Error; err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

// Unfollow удаляет ребро подписки
func (fs *FollowService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	var existing int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check follow edge: %w", err)
	}
	if existing == 0 {
		return fmt.Errorf("not following user %d: %w", followingID, ErrNotFound)
	}

	err = db.GetWriteDB(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.UserFollow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	return nil
}

// IsFollowing проверяет наличие активного ребра. Чистое чтение.
func (fs *FollowService) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return count > 0, nil
}

// GetFollowing возвращает страницу пользователей, на которых подписан
// userID, в порядке создания подписки (новые первыми). Количество
// считается отдельным запросом и под конкурентной записью может
// незначительно расходиться со страницей.
func (fs *FollowService) GetFollowing(ctx context.Context, userID int64, page models.PageRequest) (*models.UserPage, error) {
	if _, err := fs.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	page = page.Normalize()

	var total int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	var users []models.User
	err = db.GetReadOnlyDB(ctx).
		Table("users u").
		Joins("JOIN user_follows uf ON u.id = uf.following_id").
		Where("uf.follower_id = ?", userID).
		Order("uf.created_at DESC").
		Select("u.*").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following list: %w", err)
	}

	return &models.UserPage{Users: users, Total: total, Page: page.Page, Size: page.Size}, nil
}

// GetFollowers возвращает страницу подписчиков userID
func (fs *FollowService) GetFollowers(ctx context.Context, userID int64, page models.PageRequest) (*models.UserPage, error) {
	if _, err := fs.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	page = page.Normalize()

	var total int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("following_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	var users []models.User
	err = db.GetReadOnlyDB(ctx).
		Table("users u").
		Joins("JOIN user_follows uf ON u.id = uf.follower_id").
		Where("uf.following_id = ?", userID).
		Order("uf.created_at DESC").
		Select("u.*").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers list: %w", err)
	}

	return &models.UserPage{Users: users, Total: total, Page: page.Page, Size: page.Size}, nil
}

// ListFollowerIDs возвращает всех подписчиков автора без пагинации.
// Используется для рассылки событий о новых постах.
func (fs *FollowService) ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.UserFollow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list follower ids: %w", err)
	}
	return ids, nil
}
