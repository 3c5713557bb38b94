// Package filter evaluates user-supplied Risor expressions against
// annotations. An expression sees one annotation at a time through the
// globals file, line, tag, and text, and keeps the annotation when it
// evaluates truthy:
//
//	tag == "todo" && line < 100
//	strings.contains(text, "urgent")
package filter

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"

	"github.com/jward/burl/internal/tags"
)

// Filter holds one Risor expression. The zero value keeps everything.
type Filter struct {
	expr string
}

// New creates a Filter for the given expression. An empty expression keeps
// every annotation.
func New(expr string) *Filter {
	return &Filter{expr: expr}
}

// Keep reports whether the annotation passes the expression. Compile and
// evaluation errors surface to the caller; they are not swallowed, since a
// broken expression would otherwise silently drop results.
func (f *Filter) Keep(ctx context.Context, a tags.Annotation) (bool, error) {
	if f == nil || f.expr == "" {
		return true, nil
	}
	result, err := risor.Eval(ctx, f.expr,
		risor.WithGlobal("file", a.File),
		risor.WithGlobal("line", a.Line),
		risor.WithGlobal("tag", a.Tag),
		risor.WithGlobal("text", a.Text),
	)
	if err != nil {
		return false, fmt.Errorf("filter: evaluating %q: %w", f.expr, err)
	}
	return result.IsTruthy(), nil
}
