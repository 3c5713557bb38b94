// Package comment extracts comment nodes from source files using tree-sitter.
package comment

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/burl/internal/lang"
)

// Comment is one comment node captured from a file's syntax tree. Text is
// the exact source span including delimiter characters (#, //, /* */).
type Comment struct {
	StartLine int // 1-based
	EndLine   int // equal to StartLine for single-line comments
	Text      string
}

// Extract parses src and returns every comment in source order (depth-first,
// left-to-right, the natural order of the tree).
//
// Parsing is best-effort: malformed input still produces a tree, possibly
// with error nodes, and the query runs over whatever comment nodes were
// recognized. The only error returned is a parse abort (context cancellation).
func Extract(ctx context.Context, src []byte, language lang.Language) ([]Comment, error) {
	if len(src) == 0 {
		return nil, nil
	}

	parser := language.NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("comment: parsing: %w", err)
	}
	defer tree.Close()

	query := language.CommentQuery()
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var comments []Comment
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, src)
		for _, capture := range match.Captures {
			node := capture.Node
			comments = append(comments, Comment{
				StartLine: int(node.StartPoint().Row) + 1,
				EndLine:   int(node.EndPoint().Row) + 1,
				Text:      node.Content(src),
			})
		}
	}
	return comments, nil
}
