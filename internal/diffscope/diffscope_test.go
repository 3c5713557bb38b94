package diffscope

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnifiedDiff_CountedHunk(t *testing.T) {
	t.Parallel()
	set := ParseUnifiedDiff("@@ -5,2 +5,3 @@")
	assert.Equal(t, LineSet{5: {}, 6: {}, 7: {}}, set)
}

func TestParseUnifiedDiff_OmittedCountDefaultsToOne(t *testing.T) {
	t.Parallel()
	set := ParseUnifiedDiff("@@ -1 +1 @@")
	assert.Equal(t, LineSet{1: {}}, set)
}

func TestParseUnifiedDiff_ZeroCountAddsNothing(t *testing.T) {
	t.Parallel()
	// A pure deletion: the new side contributes no lines.
	set := ParseUnifiedDiff("@@ -3,2 +2,0 @@")
	assert.Empty(t, set)
}

func TestParseUnifiedDiff_MultipleHunksUnion(t *testing.T) {
	t.Parallel()
	diff := `diff --git a/f.py b/f.py
index 1234567..89abcde 100644
--- a/f.py
+++ b/f.py
@@ -2 +2 @@
-old line 2
+new line 2
@@ -3,0 +4,2 @@
+new line 4
+new line 5
`
	set := ParseUnifiedDiff(diff)
	assert.Equal(t, LineSet{2: {}, 4: {}, 5: {}}, set)
}

func TestParseUnifiedDiff_IgnoresNonHeaderLines(t *testing.T) {
	t.Parallel()
	diff := `+++ b/f.py
+not a header
-@@ neither is this
`
	assert.Empty(t, ParseUnifiedDiff(diff))
}

func TestParseUnifiedDiff_EmptyInput(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ParseUnifiedDiff(""))
}

func TestLineSet_Contains(t *testing.T) {
	t.Parallel()
	set := LineSet{}
	set.Add(7)
	assert.True(t, set.Contains(7))
	assert.False(t, set.Contains(8))
}

// runGit runs a git command in dir, failing the test on error.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{"-c", "user.name=test", "-c", "user.email=test@example.com"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestModifiedLines_GitWorkingTree(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init")

	path := filepath.Join(dir, "test.py")
	require.NoError(t, os.WriteFile(path, []byte("line 1\nline 2\nline 3\n"), 0o644))
	runGit(t, dir, "add", "test.py")
	runGit(t, dir, "commit", "-m", "initial")

	// Modify line 2, append lines 4 and 5.
	require.NoError(t, os.WriteFile(path,
		[]byte("line 1\nmodified line 2\nline 3\nnew line 4\nnew line 5\n"), 0o644))

	modified := GitDiffer{}.ModifiedLines(path)

	assert.True(t, modified.Contains(2))
	assert.True(t, modified.Contains(4))
	assert.True(t, modified.Contains(5))
	assert.False(t, modified.Contains(1))
	assert.False(t, modified.Contains(3))
}

func TestModifiedLines_UnchangedFile(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init")

	path := filepath.Join(dir, "test.py")
	require.NoError(t, os.WriteFile(path, []byte("line 1\n"), 0o644))
	runGit(t, dir, "add", "test.py")
	runGit(t, dir, "commit", "-m", "initial")

	assert.Empty(t, GitDiffer{}.ModifiedLines(path))
}

func TestModifiedLines_NotARepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "loose.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	// Diff unavailability downgrades to an empty set, never an error.
	assert.Empty(t, GitDiffer{}.ModifiedLines(path))
}

func TestModifiedLines_MissingFile(t *testing.T) {
	requireGit(t)
	assert.Empty(t, GitDiffer{}.ModifiedLines(filepath.Join(t.TempDir(), "absent.py")))
}
