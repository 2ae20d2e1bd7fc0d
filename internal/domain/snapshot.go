package domain

import "time"

// NewDraftKey is the snapshot key of the single unsaved new post of a session.
const NewDraftKey = "new_temp"

// DefaultSnapshotHistory is the number of snapshots kept per draft key.
const DefaultSnapshotHistory = 3

// Draft holds the editable fields of a post as they sit in the editor buffer.
type Draft struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Excerpt string     `json:"excerpt"`
	Tags    []string   `json:"tags"`
	Status  PostStatus `json:"status"`
}

// DraftFromPost copies the editable fields of p.
func DraftFromPost(p *Post) Draft {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return Draft{
		Title:   p.Title,
		Content: p.Content,
		Excerpt: p.Excerpt,
		Tags:    tags,
		Status:  p.Status,
	}
}

// DraftSnapshot is an ephemeral recovery copy of a draft. It is never the
// durable record of a post.
type DraftSnapshot struct {
	Key       string    `json:"key"`
	Draft     Draft     `json:"draft"`
	Timestamp time.Time `json:"timestamp"`
}

// NewerThan reports whether the snapshot was captured strictly after the
// last durable save of p.
func (s *DraftSnapshot) NewerThan(p *Post) bool {
	return s.Timestamp.After(p.EditedAt())
}
