package services

import (
	"context"
	"errors"
	"fmt"

	"platform/db"
	"platform/models"

	"gorm.io/gorm"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// GetByID возвращает пользователя по числовому ID
func (us *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по уникальному имени
func (us *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

func (us *UserService) IsAdmin(user *models.User) bool {
	return user != nil && user.HasRole(models.RoleAdmin)
}

// CanModify - единая проверка прав: владелец ресурса или администратор.
// Используется при удалении постов, комментариев и избранного.
func (us *UserService) CanModify(actor *models.User, ownerID int64) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || us.IsAdmin(actor)
}

// SearchUsers ищет пользователей по префиксу имени и статусу
func (us *UserService) SearchUsers(ctx context.Context, username string, status models.UserStatus, page models.PageRequest) (*models.UserPage, error) {
	page = page.Normalize()

	query := db.GetReadOnlyDB(ctx).Model(&models.User{})
	if username != "" {
		query = query.Where("username LIKE ?", username+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := query.
		Order("id").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return &models.UserPage{Users: users, Total: total, Page: page.Page, Size: page.Size}, nil
}
