package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PostStatus is the visibility flag of a post. It is independent of deletion.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// CurrentSchemaVersion is the version stamped on every stored post.
const CurrentSchemaVersion = 1

// DefaultAuthor owns legacy posts stored without an author.
const DefaultAuthor = "irsal"

// Post represents a unit of authored content.
type Post struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Excerpt        string     `json:"excerpt"`
	Content        string     `json:"content"`
	Date           time.Time  `json:"date"`
	ReadTime       string     `json:"readTime"`
	Tags           []string   `json:"tags"`
	Likes          int        `json:"likes"`
	Shares         int        `json:"shares"`
	AuthorUsername string     `json:"authorUsername"`
	Comments       []Comment  `json:"comments"`
	Status         PostStatus `json:"status"`
	LastEdited     *time.Time `json:"lastEdited,omitempty"`
	IsDeleted      bool       `json:"isDeleted"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	SchemaVersion  int        `json:"schemaVersion"`
}

// ValidStatuses contains all valid post statuses.
var ValidStatuses = []PostStatus{StatusDraft, StatusPublished}

// IsValidStatus checks if a status is valid.
func IsValidStatus(status PostStatus) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsPublic reports whether the post may appear in public listings, search and trending.
func (p *Post) IsPublic() bool {
	return p.Status == StatusPublished && !p.IsDeleted
}

// EditedAt returns LastEdited, falling back to Date for posts never edited.
func (p *Post) EditedAt() time.Time {
	if p.LastEdited != nil {
		return *p.LastEdited
	}
	return p.Date
}

// Score is the trending score: likes + comment count + shares.
func (p *Post) Score() int {
	return p.Likes + len(p.Comments) + p.Shares
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTimeLabel estimates reading time at 200 words per minute.
func ReadTimeLabel(content string) string {
	minutes := int(math.Ceil(float64(WordCount(content)) / 200))
	return fmt.Sprintf("%d min baca", minutes)
}

// ParseTags splits a comma separated tag list, dropping empty entries.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// StoredPost is the on-disk shape of a post of any schema version.
// Missing fields decode to nil so UpgradePost can tell absent from zero.
type StoredPost struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Excerpt        string     `json:"excerpt"`
	Content        string     `json:"content"`
	Date           time.Time  `json:"date"`
	ReadTime       string     `json:"readTime"`
	Tags           []string   `json:"tags"`
	Likes          *int       `json:"likes"`
	Shares         *int       `json:"shares"`
	AuthorUsername string     `json:"authorUsername"`
	Comments       []Comment  `json:"comments"`
	Status         PostStatus `json:"status"`
	LastEdited     *time.Time `json:"lastEdited"`
	IsDeleted      *bool      `json:"isDeleted"`
	DeletedAt      *time.Time `json:"deletedAt"`
	SchemaVersion  int        `json:"schemaVersion"`
}

// NeedsUpgrade reports whether the record predates CurrentSchemaVersion.
func (s *StoredPost) NeedsUpgrade() bool {
	return s.SchemaVersion < CurrentSchemaVersion
}

// UpgradePost converts a stored record to the current schema. It is total:
// every missing field gets a default and no input shape is rejected.
func UpgradePost(s StoredPost) Post {
	p := Post{
		ID:             s.ID,
		Title:          s.Title,
		Excerpt:        s.Excerpt,
		Content:        s.Content,
		Date:           s.Date,
		ReadTime:       s.ReadTime,
		Tags:           s.Tags,
		AuthorUsername: s.AuthorUsername,
		Comments:       s.Comments,
		Status:         s.Status,
		LastEdited:     s.LastEdited,
		DeletedAt:      s.DeletedAt,
		SchemaVersion:  CurrentSchemaVersion,
	}
	if s.Likes != nil {
		p.Likes = *s.Likes
	}
	if s.Shares != nil {
		p.Shares = *s.Shares
	}
	if s.IsDeleted != nil {
		p.IsDeleted = *s.IsDeleted
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.AuthorUsername == "" {
		p.AuthorUsername = DefaultAuthor
	}
	if !IsValidStatus(p.Status) {
		p.Status = StatusPublished
	}
	if p.LastEdited == nil && !p.Date.IsZero() {
		date := p.Date
		p.LastEdited = &date
	}
	if !p.IsDeleted {
		p.DeletedAt = nil
	}
	return p
}
