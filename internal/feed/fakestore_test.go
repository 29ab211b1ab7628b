package feed

import (
	"context"
	"errors"
	"sync"

	"kava/internal/models"
)

// fakeStore is an in-memory Store for exercising the feed core without a
// network. Fail flags make individual operations error; hooks observe model
// state at the moment a remote call is issued.
type fakeStore struct {
	mu sync.Mutex

	posts         []models.Post
	likedIDs      []string
	comments      map[string][]models.Comment
	likeCounts    map[string]int
	commentCounts map[string]int
	hasLike       map[string]bool

	failAddLike       bool
	failRemoveLike    bool
	failAddComment    bool
	failRemoveComment bool
	failRemovePost    bool
	failRemoveImage   bool
	failReads         bool

	calls  []string
	onCall func(method string)
}

var errFake = errors.New("remote unavailable")

func newFakeStore() *fakeStore {
	return &fakeStore{
		comments:      make(map[string][]models.Comment),
		likeCounts:    make(map[string]int),
		commentCounts: make(map[string]int),
		hasLike:       make(map[string]bool),
	}
}

func (f *fakeStore) record(method string) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(method)
	}
}

func (f *fakeStore) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeStore) FetchPosts(context.Context) ([]models.Post, error) {
	f.record("FetchPosts")
	if f.failReads {
		return nil, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

func (f *fakeStore) FetchLikedPostIDs(context.Context) ([]string, error) {
	f.record("FetchLikedPostIDs")
	if f.failReads {
		return nil, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.likedIDs...), nil
}

func (f *fakeStore) FetchComments(_ context.Context, postID string) ([]models.Comment, error) {
	f.record("FetchComments")
	if f.failReads {
		return nil, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments[postID]...), nil
}

func (f *fakeStore) FetchLikeCount(_ context.Context, postID string) (int, error) {
	f.record("FetchLikeCount")
	if f.failReads {
		return 0, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likeCounts[postID], nil
}

func (f *fakeStore) FetchCommentCount(_ context.Context, postID string) (int, error) {
	f.record("FetchCommentCount")
	if f.failReads {
		return 0, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commentCounts[postID], nil
}

func (f *fakeStore) FetchHasLike(_ context.Context, postID string) (bool, error) {
	f.record("FetchHasLike")
	if f.failReads {
		return false, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasLike[postID], nil
}

func (f *fakeStore) CreatePost(_ context.Context, _ string, _ int, _ string) error {
	f.record("CreatePost")
	return nil
}

func (f *fakeStore) AddLike(_ context.Context, postID string) error {
	f.record("AddLike")
	if f.failAddLike {
		return errFake
	}
	return nil
}

func (f *fakeStore) RemoveLike(_ context.Context, postID string) error {
	f.record("RemoveLike")
	if f.failRemoveLike {
		return errFake
	}
	return nil
}

func (f *fakeStore) AddComment(_ context.Context, postID, content string) error {
	f.record("AddComment")
	if f.failAddComment {
		return errFake
	}
	return nil
}

func (f *fakeStore) RemoveComment(_ context.Context, commentID string) error {
	f.record("RemoveComment")
	if f.failRemoveComment {
		return errFake
	}
	return nil
}

func (f *fakeStore) RemovePost(_ context.Context, postID string) error {
	f.record("RemovePost")
	if f.failRemovePost {
		return errFake
	}
	return nil
}

func (f *fakeStore) RemoveImage(_ context.Context, imageRef string) error {
	f.record("RemoveImage")
	if f.failRemoveImage {
		return errFake
	}
	return nil
}
