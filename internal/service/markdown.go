package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"taman-digital/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportMarkdown renders post as a markdown document and returns a file name
// derived from the title.
func ExportMarkdown(post *domain.Post, loc *time.Location) (string, []byte) {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", post.Title)
	fmt.Fprintf(&b, "*Ditulis oleh %s pada %s*\n\n", post.AuthorUsername, post.Date.In(loc).Format("2/1/2006"))
	if post.Excerpt != "" {
		fmt.Fprintf(&b, "> %s\n\n", post.Excerpt)
	}
	b.WriteString(post.Content)

	name := whitespaceRun.ReplaceAllString(strings.ToLower(post.Title), "_")
	if name == "" {
		name = post.ID
	}
	return name + ".md", []byte(b.String())
}
