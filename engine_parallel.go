package burl

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/burl/internal/lang"
)

// workItem holds everything a parallel scan worker needs.
type workItem struct {
	idx      int
	path     string
	language lang.Language
}

// scanFilesParallel scans files with a worker pool. Classification happens
// serially up front; workers run the parse/match/scope pipeline, each with
// its own parser and its own diff subprocess. Grammars and compiled queries
// are shared read-only. Results are reassembled in input order so parallel
// and serial runs produce identical sequences.
func (e *Engine) scanFilesParallel(ctx context.Context, paths []string) ([]Annotation, error) {
	var items []workItem
	for i, path := range paths {
		language, ok := e.classify(path)
		if !ok {
			continue
		}
		items = append(items, workItem{idx: i, path: path, language: language})
	}
	if len(items) == 0 {
		return nil, nil
	}

	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		idx  int
		path string
		anns []Annotation
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				anns, err := e.scanFile(ctx, item.path, item.language)
				resultCh <- result{idx: item.idx, path: item.path, anns: anns, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	byIdx := make(map[int][]Annotation, len(items))
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", res.path, res.err))
			continue
		}
		byIdx[res.idx] = res.anns
	}

	var annotations []Annotation
	for _, item := range items {
		annotations = append(annotations, byIdx[item.idx]...)
	}

	if len(errs) > 0 {
		return annotations, fmt.Errorf("scanning had %d error(s): %w", len(errs), errs[0])
	}
	return annotations, nil
}
