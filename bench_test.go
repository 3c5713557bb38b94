package burl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// benchPySource is a small Python file with a mix of tagged and plain
// comments, exercising parse, query, and match per file.
const benchPySource = `# todo: tighten validation
import os

# Configuration defaults live here.
DEFAULTS = {"retries": 3}


def load(path):
    # note: callers handle missing files
    with open(path) as f:
        return f.read()


def save(path, data):
    # fixme: not atomic
    with open(path, "w") as f:
        f.write(data)


# hypothesis: caching load() would win little
def main():
    print(load("config"))
`

const benchRsSource = `//! Crate docs.

/* todo: replace with a builder */
pub struct Config {
    pub retries: u32, // note: zero disables retrying
}

pub fn load() -> Config {
    // plain comment, no tag
    Config { retries: 3 }
}
`

// benchDir builds a directory of n file pairs for scanning benchmarks.
func benchDir(b *testing.B, n int) string {
	b.Helper()
	dir := b.TempDir()
	for i := 0; i < n; i++ {
		py := filepath.Join(dir, fmt.Sprintf("mod_%03d.py", i))
		if err := os.WriteFile(py, []byte(benchPySource), 0o644); err != nil {
			b.Fatal(err)
		}
		rs := filepath.Join(dir, fmt.Sprintf("mod_%03d.rs", i))
		if err := os.WriteFile(rs, []byte(benchRsSource), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func benchmarkScan(b *testing.B, parallel bool) {
	dir := benchDir(b, 50)
	e, err := New(WithTags("todo", "note", "hypothesis"), WithParallel(parallel))
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		anns, err := e.ScanDirectory(ctx, dir)
		if err != nil {
			b.Fatal(err)
		}
		if len(anns) == 0 {
			b.Fatal("expected annotations")
		}
	}
}

func BenchmarkScanDirectory_Serial(b *testing.B) {
	benchmarkScan(b, false)
}

func BenchmarkScanDirectory_Parallel(b *testing.B) {
	benchmarkScan(b, true)
}
