package feed

import (
	"sort"
	"sync"

	"kava/internal/models"
	"kava/internal/observability"
)

// Model is the in-memory, UI-facing snapshot of the feed: posts with their
// counts, the signed-in user's liked set, and a per-post comment cache.
// It does no I/O. All reads and writes go through its methods; every method
// completes its related reads and writes under one lock acquisition, so a
// liked flag and its count can never be observed mid-update.
type Model struct {
	mu       sync.Mutex
	posts    []models.Post
	index    map[string]int // post id -> position in posts
	liked    map[string]bool
	comments map[string][]models.Comment
	open     map[string]bool // posts whose comment view is on screen
	pending  map[string][]*LikeMutation
	log      *observability.Logger
}

func NewModel() *Model {
	return &Model{
		index:    make(map[string]int),
		liked:    make(map[string]bool),
		comments: make(map[string][]models.Comment),
		open:     make(map[string]bool),
		pending:  make(map[string][]*LikeMutation),
		log:      observability.Component("model"),
	}
}

// LikeMutation is one in-flight optimistic like toggle. It lives from the
// moment the local delta is applied until the remote write settles, and is
// re-applied over any authoritative overwrite that lands in between.
type LikeMutation struct {
	model     *Model
	postID    string
	delta     int  // +1 for an optimistic like, -1 for an unlike
	liked     bool // flag value while in flight
	prevLiked bool
	applied   int // delta actually applied, after clamping
	done      bool
}

// BeginLikeToggle flips the liked flag and adjusts the count in a single
// critical section, and registers the in-flight mutation. The returned
// mutation must be settled or rolled back exactly once.
func (m *Model) BeginLikeToggle(postID string) *LikeMutation {
	m.mu.Lock()
	defer m.mu.Unlock()

	was := m.liked[postID]
	delta := 1
	if was {
		delta = -1
	}
	m.liked[postID] = !was

	t := &LikeMutation{
		model:     m,
		postID:    postID,
		delta:     delta,
		liked:     !was,
		prevLiked: was,
	}
	t.applied = m.adjustLikeCountLocked(postID, delta)
	m.pending[postID] = append(m.pending[postID], t)
	return t
}

// WasLiked reports the flag value before the toggle.
func (t *LikeMutation) WasLiked() bool { return t.prevLiked }

// Settle marks the remote write confirmed. Local state is already correct,
// so nothing is re-applied; the mutation simply stops shadowing
// authoritative overwrites.
func (t *LikeMutation) Settle() {
	m := t.model
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	m.unregisterPendingLocked(t)
}

// Rollback reverts the flag and the exact applied count delta after a
// failed remote write.
func (t *LikeMutation) Rollback() {
	m := t.model
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	m.unregisterPendingLocked(t)
	m.liked[t.postID] = t.prevLiked
	m.adjustLikeCountLocked(t.postID, -t.applied)
}

func (m *Model) unregisterPendingLocked(t *LikeMutation) {
	list := m.pending[t.postID]
	for i, p := range list {
		if p == t {
			m.pending[t.postID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(m.pending[t.postID]) == 0 {
		delete(m.pending, t.postID)
	}
}

// ReplacePosts atomically swaps the posts collection with a freshly fetched
// list. Posts absent from the new list are dropped along with their cached
// comments and liked flags. Optimistic like deltas still in flight are
// re-applied on top of the fetched counts so a concurrent full refresh
// cannot lose them.
func (m *Model) ReplacePosts(posts []models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts = make([]models.Post, len(posts))
	copy(m.posts, posts)
	m.index = make(map[string]int, len(posts))
	for i := range m.posts {
		p := &m.posts[i]
		m.index[p.ID] = i
		for _, t := range m.pending[p.ID] {
			p.LikeCount += t.delta
		}
		if p.LikeCount < 0 {
			m.log.Warn("clamped negative like count", "post_id", p.ID, "count", p.LikeCount)
			p.LikeCount = 0
		}
		if list := m.pending[p.ID]; len(list) > 0 {
			m.liked[p.ID] = list[len(list)-1].liked
		}
	}

	// Drop state that now dangles.
	for id := range m.liked {
		if _, ok := m.index[id]; !ok {
			delete(m.liked, id)
		}
	}
	for id := range m.comments {
		if _, ok := m.index[id]; !ok {
			delete(m.comments, id)
			delete(m.open, id)
		}
	}
}

// AdjustLikeCount applies a signed adjustment to a post's like count,
// clamping at zero.
func (m *Model) AdjustLikeCount(postID string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustLikeCountLocked(postID, delta)
}

// adjustLikeCountLocked returns the delta actually applied, which differs
// from the requested one only when clamping fired.
func (m *Model) adjustLikeCountLocked(postID string, delta int) int {
	i, ok := m.index[postID]
	if !ok {
		return 0
	}
	before := m.posts[i].LikeCount
	after := before + delta
	if after < 0 {
		m.log.Warn("clamped negative like count", "post_id", postID, "count", after)
		after = 0
	}
	m.posts[i].LikeCount = after
	return after - before
}

// SetLikeCount applies an authoritative count read, re-applying any
// in-flight optimistic deltas on top of it.
func (m *Model) SetLikeCount(postID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[postID]
	if !ok {
		return
	}
	for _, t := range m.pending[postID] {
		count += t.delta
	}
	if count < 0 {
		m.log.Warn("clamped negative like count", "post_id", postID, "count", count)
		count = 0
	}
	m.posts[i].LikeCount = count
}

// SetLiked applies an authoritative liked flag. A pending optimistic toggle
// outranks it until the toggle settles.
func (m *Model) SetLiked(postID string, liked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending[postID]) > 0 {
		return
	}
	if _, ok := m.index[postID]; !ok {
		return
	}
	m.liked[postID] = liked
}

// SetLikedAll rebuilds the liked set from an authoritative id list,
// keeping only ids that refer to loaded posts and preserving in-flight
// optimistic flags.
func (m *Model) SetLikedAll(postIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	liked := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := m.index[id]; ok {
			liked[id] = true
		}
	}
	for id, list := range m.pending {
		if len(list) > 0 {
			liked[id] = list[len(list)-1].liked
		}
	}
	m.liked = liked
}

// SetCommentCount applies an authoritative comment count read.
func (m *Model) SetCommentCount(postID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[postID]
	if !ok {
		return
	}
	if count < 0 {
		m.log.Warn("clamped negative comment count", "post_id", postID, "count", count)
		count = 0
	}
	m.posts[i].CommentCount = count
}

// SetComments replaces a post's cached comment list, normalizing order to
// creation time ascending with ties broken by id.
func (m *Model) SetComments(postID string, comments []models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]models.Comment, len(comments))
	copy(list, comments)
	sortComments(list)
	m.comments[postID] = list
}

// RemoveComment drops a comment from the cache and returns the removed copy
// so a failed remote delete can restore it.
func (m *Model) RemoveComment(postID, commentID string) (models.Comment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.comments[postID]
	for i, c := range list {
		if c.ID == commentID {
			m.comments[postID] = append(list[:i], list[i+1:]...)
			return c, true
		}
	}
	return models.Comment{}, false
}

// InsertComment puts a comment back into the cache in order. Used to undo
// an optimistic removal.
func (m *Model) InsertComment(postID string, comment models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.comments[postID], comment)
	sortComments(list)
	m.comments[postID] = list
}

// DropPost removes a post and all state referencing it.
func (m *Model) DropPost(postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[postID]
	if !ok {
		return
	}
	m.posts = append(m.posts[:i], m.posts[i+1:]...)
	m.index = make(map[string]int, len(m.posts))
	for j := range m.posts {
		m.index[m.posts[j].ID] = j
	}
	delete(m.liked, postID)
	delete(m.comments, postID)
	delete(m.open, postID)
}

// SetCommentsOpen records whether a post's comment view is on screen, which
// decides if a comments-table signal refetches the full list or only the count.
func (m *Model) SetCommentsOpen(postID string, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if open {
		m.open[postID] = true
	} else {
		delete(m.open, postID)
	}
}

func (m *Model) CommentsOpen(postID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[postID]
}

// Posts returns a snapshot copy of the feed.
func (m *Model) Posts() []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Post, len(m.posts))
	copy(out, m.posts)
	return out
}

// Post returns a copy of one post by id.
func (m *Model) Post(postID string) (models.Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[postID]
	if !ok {
		return models.Post{}, false
	}
	return m.posts[i], true
}

// PostIDs returns the ids of all loaded posts, in feed order.
func (m *Model) PostIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.posts))
	for i := range m.posts {
		out[i] = m.posts[i].ID
	}
	return out
}

func (m *Model) Liked(postID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liked[postID]
}

// Comments returns a snapshot copy of a post's cached comments.
func (m *Model) Comments(postID string) []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.comments[postID]
	out := make([]models.Comment, len(list))
	copy(out, list)
	return out
}

// Comment finds a cached comment by id.
func (m *Model) Comment(postID, commentID string) (models.Comment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comments[postID] {
		if c.ID == commentID {
			return c, true
		}
	}
	return models.Comment{}, false
}

func sortComments(list []models.Comment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
