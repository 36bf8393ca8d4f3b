package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/telemetry"
)

// LoadResult pairs one parsed file's AST with its resolved absolute path
// and any diagnostics raised while parsing it or resolving its includes.
type LoadResult struct {
	Path        string
	Tree        *ast.AST
	Diagnostics []*errors.Diagnostic
}

// workerCount resolves the pool size per spec §5: LUMI_PARSER_THREADS if set
// to a positive integer, else NumCPU-1 (never less than one worker).
func workerCount() int {
	if v := os.Getenv("LUMI_PARSER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

// includeQueue is the shared resource spec §5 describes: a deque of pending
// file paths plus a count of workers currently processing one, guarded by a
// single mutex/condvar pair. A worker blocks in pop until either work
// arrives or every worker is idle with nothing pending, at which point the
// whole pool is done.
type includeQueue struct {
	mu          sync.Mutex
	cond        *sync.Cond
	pending     []string
	activeCount int
	visited     map[string]bool
}

func newIncludeQueue() *includeQueue {
	q := &includeQueue{visited: make(map[string]bool)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues path unless it has already been seen, reporting whether it
// was newly added. Paths are deduplicated by their resolved absolute form
// so a file included from two different places is only ever parsed once.
func (q *includeQueue) push(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.visited[path] {
		return false
	}
	q.visited[path] = true
	q.pending = append(q.pending, path)
	q.cond.Broadcast()
	return true
}

// pop blocks until a path is available or the queue has drained: empty and
// no worker still holds one (the termination condition from spec §5).
func (q *includeQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 {
		if q.activeCount == 0 {
			return "", false
		}
		q.cond.Wait()
	}
	path := q.pending[0]
	q.pending = q.pending[1:]
	q.activeCount++
	return path, true
}

// done marks the calling worker as idle again, notifying any worker blocked
// in pop that the termination condition may now hold.
func (q *includeQueue) done() {
	q.mu.Lock()
	q.activeCount--
	q.cond.Broadcast()
	q.mu.Unlock()
}

// LoadAll resolves filename and every file it transitively includes,
// parsing them across a bounded worker pool (spec §5). Include paths are
// resolved relative to the directory of the file that named them. The
// result order is not guaranteed stable across runs; callers merge by
// content, not position.
func LoadAll(ctx context.Context, filename string) ([]*LoadResult, []*errors.Diagnostic) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, []*errors.Diagnostic{errors.New(errors.Io, errors.Error, ast.Position{},
			"cannot resolve path %s: %v", filename, err)}
	}

	q := newIncludeQueue()
	q.push(absPath)

	var resultsMu sync.Mutex
	var results []*LoadResult
	var diagnostics []*errors.Diagnostic

	collector := telemetry.FromContext(ctx)

	n := workerCount()
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for {
				path, ok := q.pop()
				if !ok {
					return
				}

				timer := collector.Start(fmt.Sprintf("parser.parse %s", filepath.Base(path)))
				result := loadOne(path, q)
				timer.End()

				resultsMu.Lock()
				results = append(results, result)
				diagnostics = append(diagnostics, result.Diagnostics...)
				resultsMu.Unlock()

				q.done()
			}
		}()
	}
	wg.Wait()

	return results, diagnostics
}

// loadOne reads and parses a single file, then enqueues every include it
// names (resolved relative to its own directory) for some worker to pick up.
func loadOne(path string, q *includeQueue) *LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadResult{Path: path, Diagnostics: []*errors.Diagnostic{
			errors.New(errors.Io, errors.Error, ast.Position{Filename: path}, "failed to read %s: %v", path, err),
		}}
	}

	tree, diags := Parse(path, data)

	baseDir := filepath.Dir(path)
	for _, inc := range tree.Includes {
		includePath := inc.Filename
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}
		absInclude, err := filepath.Abs(includePath)
		if err != nil {
			diags = append(diags, errors.New(errors.Io, errors.Error, inc.Pos,
				"cannot resolve include %s: %v", inc.Filename, err))
			continue
		}
		if !q.push(absInclude) {
			diags = append(diags, errors.New(errors.Duplicate, errors.Warning, inc.Pos,
				"file %s already included elsewhere, skipping", inc.Filename))
		}
	}

	return &LoadResult{Path: path, Tree: tree, Diagnostics: diags}
}
