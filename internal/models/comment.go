package models

import "time"

// Comment belongs to a post and is ordered by creation time within it,
// ties broken by id.
type Comment struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID         string    `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID       string    `gorm:"type:uuid;not null" json:"author_id"`
	AuthorUsername string    `gorm:"not null" json:"author_username"`
	Content        string    `gorm:"not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// MaxCommentLen bounds comment content accepted by the store.
const MaxCommentLen = 1000
