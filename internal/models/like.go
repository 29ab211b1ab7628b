package models

import "time"

// Like relates a user to a post. The (PostID, UserID) pair is unique:
// a user likes a post at most once. Deletion is by-match on the pair;
// clients never see or need the row id.
type Like struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
