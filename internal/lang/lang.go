// Package lang maps file extensions to supported languages and owns the
// process-wide tree-sitter grammars and compiled comment queries.
//
// Grammars and queries are built lazily on first use and never mutated
// afterward, so they are safe to share across goroutines. Parsers are not
// thread-safe; each goroutine must create its own via NewParser.
package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies one supported language variant.
type Language int

const (
	Unsupported Language = iota
	Python
	Rust
	JavaScript
	TypeScript
	Go
	C
	CPP
	Java
	PHP
	Ruby
)

// entry holds one language's grammar constructor, comment-query pattern,
// and the lazily-built singletons.
type entry struct {
	name    string
	grammar func() *sitter.Language
	pattern string

	once  sync.Once
	lang  *sitter.Language
	query *sitter.Query
}

// entries is the closed set of supported languages. The pattern must capture
// every comment-shaped node kind the grammar produces, both single-line and
// block where the grammar distinguishes them.
var entries = map[Language]*entry{
	Python:     {name: "python", grammar: python.GetLanguage, pattern: "(comment) @comment"},
	Rust:       {name: "rust", grammar: rust.GetLanguage, pattern: "(line_comment) @comment\n(block_comment) @comment"},
	JavaScript: {name: "javascript", grammar: javascript.GetLanguage, pattern: "(comment) @comment"},
	TypeScript: {name: "typescript", grammar: ts.GetLanguage, pattern: "(comment) @comment"},
	Go:         {name: "go", grammar: golang.GetLanguage, pattern: "(comment) @comment"},
	C:          {name: "c", grammar: c.GetLanguage, pattern: "(comment) @comment"},
	CPP:        {name: "cpp", grammar: cpp.GetLanguage, pattern: "(comment) @comment"},
	Java:       {name: "java", grammar: java.GetLanguage, pattern: "(comment) @comment"},
	PHP:        {name: "php", grammar: php.GetLanguage, pattern: "(comment) @comment"},
	Ruby:       {name: "ruby", grammar: ruby.GetLanguage, pattern: "(comment) @comment"},
}

// extToLanguage maps file extensions to languages. Matching is exact and
// case-sensitive; there is no content sniffing.
var extToLanguage = map[string]Language{
	".py":   Python,
	".rs":   Rust,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".go":   Go,
	".c":    C,
	".h":    C,
	".cpp":  CPP,
	".cc":   CPP,
	".cxx":  CPP,
	".hpp":  CPP,
	".java": Java,
	".php":  PHP,
	".rb":   Ruby,
}

// Classify returns the language for a file path based on its extension.
// Returns (Unsupported, false) if the extension is not recognized.
func Classify(path string) (Language, bool) {
	l, ok := extToLanguage[filepath.Ext(path)]
	if !ok {
		return Unsupported, false
	}
	return l, true
}

// FromName returns the language for a canonical name such as "go" or
// "python". Returns (Unsupported, false) if the name is not recognized.
func FromName(name string) (Language, bool) {
	for l, e := range entries {
		if e.name == name {
			return l, true
		}
	}
	return Unsupported, false
}

// Names returns the canonical names of all supported languages, sorted.
func Names() []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// String returns the canonical language name.
func (l Language) String() string {
	if e, ok := entries[l]; ok {
		return e.name
	}
	return "unsupported"
}

func (l Language) get() *entry {
	e, ok := entries[l]
	if !ok {
		panic(fmt.Sprintf("lang: no entry for language %d", int(l)))
	}
	e.once.Do(func() {
		e.lang = e.grammar()
		q, err := sitter.NewQuery([]byte(e.pattern), e.lang)
		if err != nil {
			// Patterns are fixed strings validated by tests; a compile
			// failure here is a programming error.
			panic(fmt.Sprintf("lang: compiling %s comment query: %v", e.name, err))
		}
		e.query = q
	})
	return e
}

// Grammar returns the process-wide tree-sitter grammar for the language.
func (l Language) Grammar() *sitter.Language {
	return l.get().lang
}

// CommentQuery returns the compiled query capturing every comment node.
// The query is shared; use a per-goroutine QueryCursor to execute it.
func (l Language) CommentQuery() *sitter.Query {
	return l.get().query
}

// NewParser creates a fresh parser configured for the language. Parsers are
// not thread-safe; callers must not share one across goroutines.
func (l Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.Grammar())
	return p
}
