package models

import "time"

type PostStatus string

const (
	PostDraft     PostStatus = "DRAFT"
	PostPublished PostStatus = "PUBLISHED"
	PostArchived  PostStatus = "ARCHIVED"
)

// PostStats - встроенный блок статистики поста
type PostStats struct {
	Views  int64 `bson:"views" json:"views"`
	Likes  int64 `bson:"likes" json:"likes"`
	Shares int64 `bson:"shares" json:"shares"`
}

// Comment - встроенный документ комментария. Живет только внутри
// родительского поста и удаляется выдергиванием из его списка.
type Comment struct {
	ID         string    `bson:"id" json:"id"`
	Content    string    `bson:"content" json:"content"`
	AuthorID   int64     `bson:"authorId" json:"author_id"`
	AuthorName string    `bson:"authorName" json:"author_name"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

// Post - документ поста в MongoDB. Автор денормализован: authorId и
// authorName копируются из реляционной БД на момент записи.
type Post struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	Slug          string     `bson:"slug" json:"slug"`
	Title         string     `bson:"title" json:"title"`
	Content       string     `bson:"content" json:"content"`
	AuthorID      int64      `bson:"authorId" json:"author_id"`
	AuthorName    string     `bson:"authorName" json:"author_name"`
	Tags          []string   `bson:"tags" json:"tags"`
	Comments      []Comment  `bson:"comments" json:"comments"`
	FeaturedImage string     `bson:"featuredImage,omitempty" json:"featured_image,omitempty"`
	Status        PostStatus `bson:"status" json:"status"`
	Stats         PostStats  `bson:"stats" json:"stats"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

// PostPage - страница постов с общим количеством для пагинации
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// PageRequest - параметры страницы для всех списочных операций.
// Нумерация страниц с нуля.
type PageRequest struct {
	Page      int    `json:"page"`
	Size      int    `json:"size"`
	SortField string `json:"sort_field"`
	SortDesc  bool   `json:"sort_desc"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize приводит параметры страницы к допустимым значениям
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	if p.SortField == "" {
		p.SortField = "created_at"
		p.SortDesc = true
	}
	return p
}

// Offset возвращает смещение для запроса страницы
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}
