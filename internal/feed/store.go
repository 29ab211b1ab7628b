// Package feed holds the client-side feed state and keeps it consistent
// with the remote store under optimistic local mutation and asynchronous
// change notification.
package feed

import (
	"context"

	"kava/internal/models"
)

// Store is the remote contract the feed core consumes. Reads return
// authoritative server-side state (counts are computed by the store, not
// derived client-side); writes are fire-and-check, the store assigns all
// identity and timestamps.
type Store interface {
	// FetchPosts returns the feed ordered by recency, each post annotated
	// with its current like and comment counts.
	FetchPosts(ctx context.Context) ([]models.Post, error)
	// FetchLikedPostIDs returns the ids of posts the signed-in user likes.
	FetchLikedPostIDs(ctx context.Context) ([]string, error)
	// FetchComments returns a post's comments ascending by creation time.
	FetchComments(ctx context.Context, postID string) ([]models.Comment, error)
	FetchLikeCount(ctx context.Context, postID string) (int, error)
	FetchCommentCount(ctx context.Context, postID string) (int, error)
	// FetchHasLike reports whether the signed-in user likes the post.
	FetchHasLike(ctx context.Context, postID string) (bool, error)

	CreatePost(ctx context.Context, description string, rating int, imageRef string) error
	AddLike(ctx context.Context, postID string) error
	// RemoveLike deletes by (post, user) match; no row id is involved.
	RemoveLike(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, content string) error
	RemoveComment(ctx context.Context, commentID string) error
	RemovePost(ctx context.Context, postID string) error
	// RemoveImage deletes the stored object behind an image ref. Callers
	// treat failures as non-fatal.
	RemoveImage(ctx context.Context, imageRef string) error
}

// Session identifies the signed-in user. A nil *Session means signed out.
type Session struct {
	UserID   string
	Username string
}
