package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_SupportedExtensions(t *testing.T) {
	t.Parallel()
	cases := map[string]Language{
		"main.py":        Python,
		"lib.rs":         Rust,
		"app.js":         JavaScript,
		"component.jsx":  JavaScript,
		"app.ts":         TypeScript,
		"component.tsx":  TypeScript,
		"main.go":        Go,
		"util.c":         C,
		"util.h":         C,
		"engine.cpp":     CPP,
		"engine.cc":      CPP,
		"engine.cxx":     CPP,
		"engine.hpp":     CPP,
		"Main.java":      Java,
		"index.php":      PHP,
		"app.rb":         Ruby,
		"dir/nested.py":  Python,
		"/abs/path/x.rs": Rust,
	}
	for path, want := range cases {
		got, ok := Classify(path)
		require.True(t, ok, "expected %s to classify", path)
		assert.Equal(t, want, got, path)
	}
}

func TestClassify_UnsupportedExtensions(t *testing.T) {
	t.Parallel()
	for _, path := range []string{"README.md", "notes.txt", "Makefile", "script.sh", "data.json"} {
		got, ok := Classify(path)
		assert.False(t, ok, path)
		assert.Equal(t, Unsupported, got, path)
	}
}

func TestClassify_IsCaseSensitive(t *testing.T) {
	t.Parallel()
	// Extension matching is exact; ".PY" is not ".py".
	_, ok := Classify("main.PY")
	assert.False(t, ok)
}

func TestFromName(t *testing.T) {
	t.Parallel()
	l, ok := FromName("python")
	require.True(t, ok)
	assert.Equal(t, Python, l)

	l, ok = FromName("cpp")
	require.True(t, ok)
	assert.Equal(t, CPP, l)

	_, ok = FromName("cobol")
	assert.False(t, ok)
}

func TestNames_SortedAndComplete(t *testing.T) {
	t.Parallel()
	names := Names()
	assert.Equal(t, []string{
		"c", "cpp", "go", "java", "javascript",
		"php", "python", "ruby", "rust", "typescript",
	}, names)
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "go", Go.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}

func TestGrammarAndCommentQuery_LazySingletons(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		l, ok := FromName(name)
		require.True(t, ok, name)

		grammar := l.Grammar()
		require.NotNil(t, grammar, "%s grammar", name)
		query := l.CommentQuery()
		require.NotNil(t, query, "%s comment query", name)

		// Repeated access returns the same compiled objects.
		assert.Same(t, grammar, l.Grammar(), name)
		assert.Same(t, query, l.CommentQuery(), name)
	}
}

func TestNewParser_IndependentInstances(t *testing.T) {
	t.Parallel()
	p1 := Python.NewParser()
	p2 := Python.NewParser()
	defer p1.Close()
	defer p2.Close()
	assert.NotSame(t, p1, p2)
}
