package models

import "time"

// Moment - короткий пост (лента моментов). Та же схема хранения, что и
// у Post: документ в MongoDB со встроенными комментариями, автор
// денормализован из реляционной БД.
type Moment struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Content    string    `bson:"content" json:"content"`
	Images     string    `bson:"images,omitempty" json:"images,omitempty"`
	AuthorID   int64     `bson:"authorId" json:"author_id"`
	AuthorName string    `bson:"authorName" json:"author_name"`
	LikeCount  int64     `bson:"likeCount" json:"like_count"`
	Comments   []Comment `bson:"comments" json:"comments"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type MomentPage struct {
	Moments []Moment `json:"moments"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Size    int      `json:"size"`
}
