package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a single feed entry. IDs and CreatedAt are assigned by the store;
// the client never fabricates them.
type Post struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID       string `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorUsername string `gorm:"not null" json:"author_username"`
	// ImageRef is an opaque reference into the external object store.
	ImageRef    string `gorm:"not null" json:"image_ref"`
	Description string `json:"description"`
	// Rating is 1-5; zero means the author did not rate.
	Rating int `json:"rating,omitempty"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int            `gorm:"->;-:migration" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// MaxDescriptionLen bounds the post description accepted by the store.
const MaxDescriptionLen = 500
