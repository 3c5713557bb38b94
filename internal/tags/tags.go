// Package tags matches configured keywords against extracted comments.
package tags

import (
	"strings"

	"github.com/jward/burl/internal/comment"
)

// Annotation is one occurrence of a keyword inside a source comment.
type Annotation struct {
	File string `json:"file"`
	Line int    `json:"line"` // start line of the containing comment, 1-based
	Tag  string `json:"tag"`
	Text string `json:"text"` // full comment text, delimiters included
}

// Match scans each comment for the configured keywords and returns one
// Annotation per (comment, keyword) pair. Matching is case-insensitive
// substring containment with no word-boundary requirement, so "noted"
// matches the keyword "note". Comments stay in source order; within a
// comment, keywords stay in the order the caller configured them.
func Match(path string, comments []comment.Comment, keywords []string) []Annotation {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	var annotations []Annotation
	for _, c := range comments {
		text := strings.ToLower(c.Text)
		for i, kw := range keywords {
			if lowered[i] == "" {
				continue
			}
			if strings.Contains(text, lowered[i]) {
				annotations = append(annotations, Annotation{
					File: path,
					Line: c.StartLine,
					Tag:  kw,
					Text: c.Text,
				})
			}
		}
	}
	return annotations
}
