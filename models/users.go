package models

import (
	"strings"
	"time"
)

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
	UserLocked UserStatus = "locked"
)

const RoleAdmin = "admin"

// User - учетная запись в реляционной БД. Хеш пароля принадлежит
// внешнему сервису аутентификации и здесь хранится как непрозрачная строка.
type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string     `gorm:"size:60;uniqueIndex" json:"username"`
	Email     string     `gorm:"size:255" json:"email"`
	Password  string     `gorm:"size:255" json:"-"`
	Roles     string     `gorm:"size:255" json:"roles"` // роли через запятую: "user,admin"
	Status    UserStatus `gorm:"size:20;default:active" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasRole(role string) bool {
	for _, r := range strings.Split(u.Roles, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

// UserFollow - направленное ребро графа подписок: follower_id читает
// посты following_id. Уникальный индекс гарантирует не более одного
// активного ребра на упорядоченную пару.
type UserFollow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID  int64     `gorm:"index:follow_pair_idx,unique" json:"follower_id"`
	FollowingID int64     `gorm:"index:follow_pair_idx,unique" json:"following_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}

// PostFavorite - закладка пользователя на пост. post_id указывает в
// документное хранилище и не является внешним ключом. Удаление мягкое:
// повторное добавление в избранное реактивирует запись.
type PostFavorite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    int64     `gorm:"index:favorite_pair_idx,unique" json:"user_id"`
	PostID    string    `gorm:"size:64;index:favorite_pair_idx,unique" json:"post_id"`
	Deleted   int       `gorm:"default:0" json:"-"` // 0 - активна, 1 - удалена
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostFavorite) TableName() string {
	return "post_favorite"
}

// UserPage - страница пользователей с общим количеством записей
type UserPage struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}
