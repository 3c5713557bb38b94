// Package burl finds tagged annotations — keywords such as "todo", "fixme",
// or "note" — inside source-code comments, using tree-sitter to extract
// comments precisely for 10 languages: Python, Rust, JavaScript, TypeScript,
// Go, C, C++, Java, PHP, and Ruby.
//
// # Pipeline
//
// For each file, burl:
//
//  1. Classifies the language from the file extension.
//  2. Parses the source into a concrete syntax tree and runs the language's
//     compiled comment query, yielding comments in source order. Parsing is
//     best-effort: malformed files still yield whatever comments the grammar
//     recognizes.
//  3. Matches configured keywords against each comment (case-insensitive
//     substring containment), producing one annotation per (comment, tag)
//     pair.
//  4. Optionally intersects annotation lines with the set of lines that
//     `git diff --unified=0` reports as added or modified, so only
//     annotations touched by the current change survive.
//
// # Usage
//
// Create an Engine, scan, and consume annotations:
//
//	e, err := burl.New(burl.WithTags("todo", "hypothesis"), burl.WithDiffOnly(true))
//	if err != nil { ... }
//	defer e.Close()
//
//	anns, err := e.ScanDirectory(context.Background(), "path/to/project")
//	for _, a := range anns {
//		fmt.Printf("%s:%d [%s]\n", a.File, a.Line, a.Tag)
//	}
//
// # Diff scoping
//
// Diff availability is never an error: when git is missing, the file is not
// under version control, or the diff command fails, the modified-line set is
// empty — indistinguishable from "no changes". With WithDiffOnly enabled
// both cases yield zero annotations for that file.
//
// # Caching
//
// With WithCache, scan results are stored in SQLite keyed by content hash;
// unchanged files are served from the cache without reparsing. The cache is
// cleared when the configured tag set changes. Diff scoping and expression
// filters always run after cache retrieval, so cached runs stay correct.
//
// # Concurrency
//
// Grammars and compiled queries are process-wide, lazily built, and
// immutable, so they are shared freely. Each worker in the parallel scan
// path owns its parser and serializes its own diff subprocess. Serial and
// parallel runs produce identical annotation sequences.
package burl
