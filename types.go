package burl

import (
	"github.com/jward/burl/internal/comment"
	"github.com/jward/burl/internal/diffscope"
	"github.com/jward/burl/internal/store"
	"github.com/jward/burl/internal/tags"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=) — identical to the internal types at compile time.

type Annotation = tags.Annotation
type Comment = comment.Comment
type LineSet = diffscope.LineSet
type Differ = diffscope.Differ
type GitDiffer = diffscope.GitDiffer
type Store = store.Store
