package feed

import (
	"context"

	"kava/internal/models"
	"kava/internal/observability"
)

// Reconciler turns change signals into authoritative model updates. Every
// update it applies is an absolute read (a count, a list, a flag), never a
// delta, so duplicated or reordered signals converge on the same state.
// Failed background reads are logged and the affected entries keep their
// last-known values; the next signal or poll tick retries naturally.
type Reconciler struct {
	model *Model
	store Store
	log   *observability.Logger
}

func NewReconciler(model *Model, store Store) *Reconciler {
	return &Reconciler{
		model: model,
		store: store,
		log:   observability.Component("reconciler"),
	}
}

// Run pumps signals until the stream closes or ctx is done. Signals are
// processed one at a time on this goroutine.
func (r *Reconciler) Run(ctx context.Context, signals <-chan Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			r.Apply(ctx, sig)
		}
	}
}

// Apply reconciles one signal. Targeted refetches are used when the signal
// resolves to a post; anything unresolvable falls back to an unscoped
// refetch, since under-reconciling is worse than over-fetching.
func (r *Reconciler) Apply(ctx context.Context, sig Signal) {
	switch sig.Table {
	case models.TablePosts:
		r.refreshAll(ctx)
	case models.TableLikes:
		if sig.PostID == "" {
			r.recountAllLikes(ctx)
			r.refreshLikedSet(ctx)
			return
		}
		r.reconcileLike(ctx, sig.PostID)
	case models.TableComments:
		if sig.PostID == "" {
			r.refreshAll(ctx)
			return
		}
		r.reconcileComments(ctx, sig.PostID)
	default:
		r.log.Warn("signal for unknown table", "table", sig.Table)
		r.refreshAll(ctx)
	}
}

// RefreshPosts refetches the whole feed with server-side counts and swaps
// it into the model.
func (r *Reconciler) RefreshPosts(ctx context.Context) error {
	posts, err := r.store.FetchPosts(ctx)
	if err != nil {
		r.log.Error("post refetch failed", "error", err)
		return models.NewRemoteReadError("fetch posts", err)
	}
	r.model.ReplacePosts(posts)
	return nil
}

// RefreshComments refetches one post's comment list.
func (r *Reconciler) RefreshComments(ctx context.Context, postID string) error {
	comments, err := r.store.FetchComments(ctx, postID)
	if err != nil {
		r.log.Error("comment refetch failed", "post_id", postID, "error", err)
		return models.NewRemoteReadError("fetch comments", err)
	}
	r.model.SetComments(postID, comments)
	return nil
}

func (r *Reconciler) refreshAll(ctx context.Context) {
	if err := r.RefreshPosts(ctx); err != nil {
		return
	}
	r.refreshLikedSet(ctx)
}

func (r *Reconciler) refreshLikedSet(ctx context.Context) {
	ids, err := r.store.FetchLikedPostIDs(ctx)
	if err != nil {
		if !models.IsUnauthenticated(err) {
			r.log.Error("liked set refetch failed", "error", err)
		}
		return
	}
	r.model.SetLikedAll(ids)
}

func (r *Reconciler) reconcileLike(ctx context.Context, postID string) {
	count, err := r.store.FetchLikeCount(ctx, postID)
	if err != nil {
		r.log.Error("like recount failed", "post_id", postID, "error", err)
		return
	}
	r.model.SetLikeCount(postID, count)

	liked, err := r.store.FetchHasLike(ctx, postID)
	if err != nil {
		if !models.IsUnauthenticated(err) {
			r.log.Error("liked flag refetch failed", "post_id", postID, "error", err)
		}
		return
	}
	r.model.SetLiked(postID, liked)
}

func (r *Reconciler) reconcileComments(ctx context.Context, postID string) {
	count, err := r.store.FetchCommentCount(ctx, postID)
	if err != nil {
		r.log.Error("comment recount failed", "post_id", postID, "error", err)
		return
	}
	r.model.SetCommentCount(postID, count)

	if r.model.CommentsOpen(postID) {
		if err := r.RefreshComments(ctx, postID); err != nil {
			r.log.Error("open comment view refetch failed", "post_id", postID, "error", err)
		}
	}
}

func (r *Reconciler) recountAllLikes(ctx context.Context) {
	for _, postID := range r.model.PostIDs() {
		count, err := r.store.FetchLikeCount(ctx, postID)
		if err != nil {
			r.log.Error("like recount failed", "post_id", postID, "error", err)
			continue
		}
		r.model.SetLikeCount(postID, count)
	}
}
