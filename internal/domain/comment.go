package domain

import "time"

// Comment is an append-only child of exactly one post.
type Comment struct {
	ID             string    `json:"id"`
	AuthorUsername string    `json:"authorUsername"`
	Content        string    `json:"content"`
	Date           time.Time `json:"date"`
}
