package feed

import (
	"context"
	"strings"

	"kava/internal/models"
	"kava/internal/observability"
)

// Refresher triggers authoritative refetches after writes whose results the
// client cannot predict locally (server-assigned ids and timestamps).
// Implemented by Reconciler.
type Refresher interface {
	RefreshPosts(ctx context.Context) error
	RefreshComments(ctx context.Context, postID string) error
}

// Mutator applies user actions to the model optimistically, before remote
// confirmation, and rolls them back exactly on remote failure. The errors it
// returns are the user-visible outcome of the action; it never leaves the
// model diverged from what a later reconciliation can repair.
type Mutator struct {
	model   *Model
	store   Store
	refresh Refresher
	session *Session
	log     *observability.Logger
}

func NewMutator(model *Model, store Store, refresh Refresher) *Mutator {
	return &Mutator{
		model:   model,
		store:   store,
		refresh: refresh,
		log:     observability.Component("mutator"),
	}
}

// SetSession installs the signed-in user. Pass nil on sign-out.
func (mu *Mutator) SetSession(s *Session) {
	mu.session = s
}

func (mu *Mutator) Session() *Session {
	return mu.session
}

// ToggleLike flips the current user's like on a post. The liked flag and the
// count delta are applied together before the remote write is issued; on
// remote failure both are reverted exactly.
func (mu *Mutator) ToggleLike(ctx context.Context, postID string) error {
	if mu.session == nil {
		return models.NewUnauthenticatedError("sign in to like posts")
	}

	t := mu.model.BeginLikeToggle(postID)

	var err error
	if t.WasLiked() {
		err = mu.store.RemoveLike(ctx, postID)
	} else {
		err = mu.store.AddLike(ctx, postID)
	}
	if err != nil {
		t.Rollback()
		mu.log.Error("like toggle failed", "post_id", postID, "error", err)
		return models.NewRemoteWriteError("toggle like", err)
	}

	t.Settle()
	return nil
}

// SubmitComment sends a new comment. The comment row is not inserted
// locally since its id and timestamp are server-assigned, so the contract
// is refetch-after-write: on success the post's comment list and the
// global counts are refreshed to surface it.
func (mu *Mutator) SubmitComment(ctx context.Context, postID, text string) error {
	if mu.session == nil {
		return models.NewUnauthenticatedError("sign in to comment")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.NewValidationError("comment cannot be empty")
	}
	if len(text) > models.MaxCommentLen {
		return models.NewValidationError("comment too long")
	}

	if err := mu.store.AddComment(ctx, postID, text); err != nil {
		mu.log.Error("comment submit failed", "post_id", postID, "error", err)
		return models.NewRemoteWriteError("submit comment", err)
	}

	if err := mu.refresh.RefreshComments(ctx, postID); err != nil {
		mu.log.Error("comment refetch after submit failed", "post_id", postID, "error", err)
	}
	if err := mu.refresh.RefreshPosts(ctx); err != nil {
		mu.log.Error("post refetch after submit failed", "error", err)
	}
	return nil
}

// DeleteComment removes the caller's own comment, optimistically: the cached
// copy is dropped before the remote delete and restored if it fails. On
// success the post's comment count is recounted from the store.
func (mu *Mutator) DeleteComment(ctx context.Context, postID, commentID string) error {
	if mu.session == nil {
		return models.NewUnauthenticatedError("sign in to delete comments")
	}

	comment, ok := mu.model.Comment(postID, commentID)
	if !ok {
		return models.NewNotFoundError("comment", commentID)
	}
	if comment.AuthorID != mu.session.UserID {
		return models.NewForbiddenError("only the author can delete a comment")
	}

	removed, _ := mu.model.RemoveComment(postID, commentID)

	if err := mu.store.RemoveComment(ctx, commentID); err != nil {
		mu.model.InsertComment(postID, removed)
		mu.log.Error("comment delete failed", "comment_id", commentID, "error", err)
		return models.NewRemoteWriteError("delete comment", err)
	}

	count, err := mu.store.FetchCommentCount(ctx, postID)
	if err != nil {
		mu.log.Error("comment recount after delete failed", "post_id", postID, "error", err)
		return nil
	}
	mu.model.SetCommentCount(postID, count)
	return nil
}

// DeletePost removes the caller's own post. Unlike the like and comment
// paths this is not optimistic: the remote row delete must succeed before
// anything disappears locally, because the action is irreversible. Removing
// the stored image afterwards is best-effort; the row is the source of
// truth for visibility.
func (mu *Mutator) DeletePost(ctx context.Context, postID string) error {
	if mu.session == nil {
		return models.NewUnauthenticatedError("sign in to delete posts")
	}

	post, ok := mu.model.Post(postID)
	if !ok {
		return models.NewNotFoundError("post", postID)
	}
	if post.AuthorID != mu.session.UserID {
		return models.NewForbiddenError("only the author can delete a post")
	}

	if err := mu.store.RemovePost(ctx, postID); err != nil {
		mu.log.Error("post delete failed", "post_id", postID, "error", err)
		return models.NewRemoteWriteError("delete post", err)
	}

	mu.model.DropPost(postID)

	if post.ImageRef != "" {
		if err := mu.store.RemoveImage(ctx, post.ImageRef); err != nil {
			mu.log.Warn("image cleanup failed", "image_ref", post.ImageRef, "error", err)
		}
	}
	return nil
}

// CreatePost uploads a new post and refetches the feed; post creation is
// never optimistic since the store assigns id and creation time.
func (mu *Mutator) CreatePost(ctx context.Context, description string, rating int, imageRef string) error {
	if mu.session == nil {
		return models.NewUnauthenticatedError("sign in to post")
	}
	description = strings.TrimSpace(description)
	if len(description) > models.MaxDescriptionLen {
		return models.NewValidationError("description too long")
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return models.NewValidationError("rating must be between 1 and 5")
	}

	if err := mu.store.CreatePost(ctx, description, rating, imageRef); err != nil {
		mu.log.Error("post create failed", "error", err)
		return models.NewRemoteWriteError("create post", err)
	}

	if err := mu.refresh.RefreshPosts(ctx); err != nil {
		mu.log.Error("post refetch after create failed", "error", err)
	}
	return nil
}
