package models

// ChangeTable names a table a change event refers to.
type ChangeTable string

const (
	TablePosts    ChangeTable = "posts"
	TableLikes    ChangeTable = "likes"
	TableComments ChangeTable = "comments"
)

// ChangeKind is the kind of row change an event reports.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeRow is the partial row carried inside a change event. Every field
// is optional: delete events in particular may carry only the row id, with
// the parent post reference missing. Consumers must not assume PostID is set.
type ChangeRow struct {
	ID     string `json:"id,omitempty"`
	PostID string `json:"post_id,omitempty"`
}

// ChangeEvent is the envelope the store emits on its change channel.
// New is set for inserts and updates, Old for updates and deletes, but
// neither is guaranteed to be complete.
type ChangeEvent struct {
	Table ChangeTable `json:"table"`
	Kind  ChangeKind  `json:"event"`
	New   *ChangeRow  `json:"new,omitempty"`
	Old   *ChangeRow  `json:"old,omitempty"`
}

// PostID resolves the parent post reference from either payload row.
// The second return is false when no reference survived transport, which
// forces consumers onto their unscoped-refetch path.
func (e ChangeEvent) PostID() (string, bool) {
	if e.Table == TablePosts {
		if e.New != nil && e.New.ID != "" {
			return e.New.ID, true
		}
		if e.Old != nil && e.Old.ID != "" {
			return e.Old.ID, true
		}
		return "", false
	}
	if e.New != nil && e.New.PostID != "" {
		return e.New.PostID, true
	}
	if e.Old != nil && e.Old.PostID != "" {
		return e.Old.PostID, true
	}
	return "", false
}
