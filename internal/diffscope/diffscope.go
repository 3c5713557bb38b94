// Package diffscope computes the set of working-tree lines that git reports
// as added or modified for a single file.
//
// Diff availability is never an error: a missing git binary, a file outside
// any repository, a non-zero exit status, or non-UTF8 output all yield an
// empty LineSet. An empty set therefore means "nothing known to be modified"
// and is indistinguishable from "no changes" — callers that scope results by
// the set must accept that both cases filter everything out.
package diffscope

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// LineSet is a set of 1-based line numbers.
type LineSet map[int]struct{}

// Contains reports whether line n is in the set.
func (s LineSet) Contains(n int) bool {
	_, ok := s[n]
	return ok
}

// Add inserts line n into the set.
func (s LineSet) Add(n int) {
	s[n] = struct{}{}
}

// Differ produces the modified-line set for one file. It is a narrow
// interface so the git subprocess can be swapped for an in-process
// implementation or a stub in tests.
type Differ interface {
	ModifiedLines(path string) LineSet
}

// GitDiffer shells out to git. The zero value is ready to use.
type GitDiffer struct{}

// ModifiedLines runs `git diff --unified=0 <path>` with the working
// directory set to the file's parent (or "." when the path has no parent
// component) and returns the new-side lines of every hunk. The subprocess
// call blocks until git exits; there is no timeout.
func (GitDiffer) ModifiedLines(path string) LineSet {
	cmd := exec.Command("git", "diff", "--unified=0", path)
	cmd.Dir = filepath.Dir(path)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	// stderr is deliberately ignored.
	if err := cmd.Run(); err != nil {
		return LineSet{}
	}
	if !utf8.Valid(stdout.Bytes()) {
		return LineSet{}
	}
	return ParseUnifiedDiff(stdout.String())
}

// hunkHeader matches `@@ -oldStart[,oldCount] +newStart[,newCount] @@`.
// Group 1 is the new-side start, group 2 the optional new-side count.
var hunkHeader = regexp.MustCompile(`@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// ParseUnifiedDiff extracts the new-side ranges from every hunk header in a
// unified diff and unions them into a LineSet. An omitted count defaults to
// 1 per the unified-diff convention; a count of 0 (pure deletion) adds
// nothing.
func ParseUnifiedDiff(diff string) LineSet {
	set := LineSet{}
	for _, m := range hunkHeader.FindAllStringSubmatch(diff, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		count := 1
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			count = n
		}
		for line := start; line < start+count; line++ {
			set.Add(line)
		}
	}
	return set
}
