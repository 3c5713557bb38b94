package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/jward/burl"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// collapseWhitespace replaces runs of whitespace with a single space and
// trims, so multi-line comments print on one line.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// formatAnnotationsText writes annotations as "file:line: [tag] text" lines.
func formatAnnotationsText(w io.Writer, annotations []burl.Annotation) {
	for _, a := range annotations {
		fmt.Fprintf(w, "%s:%d: [%s] %s\n", a.File, a.Line, a.Tag, collapseWhitespace(a.Text))
	}
}

// formatAnnotationsJSON writes annotations as an indented JSON array.
func formatAnnotationsJSON(w io.Writer, annotations []burl.Annotation) error {
	if annotations == nil {
		annotations = []burl.Annotation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(annotations)
}

// outputAnnotations writes annotations to stdout in the requested format.
func outputAnnotations(format string, annotations []burl.Annotation) error {
	switch format {
	case "text":
		formatAnnotationsText(os.Stdout, annotations)
		return nil
	case "json":
		return formatAnnotationsJSON(os.Stdout, annotations)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
