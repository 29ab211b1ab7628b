package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the store-side account row. Password is the bcrypt hash and is
// never serialized.
type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"-"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile is the public slice of a user the client works with.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LeaderboardEntry ranks an author by total likes received across their posts.
type LeaderboardEntry struct {
	Username  string `json:"username"`
	LikeCount int    `json:"like_count"`
}
