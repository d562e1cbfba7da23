package scanner

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/panbanda/churnscope/internal/fileproc"
)

// maxLineSize bounds a single line when counting; longer lines fail the file.
const maxLineSize = 4 * 1024 * 1024

// Index maps root-relative, slash-separated paths to lines of code.
type Index struct {
	loc map[string]int
}

// NewIndex builds an index from explicit counts.
func NewIndex(loc map[string]int) *Index {
	m := make(map[string]int, len(loc))
	for k, v := range loc {
		m[filepath.ToSlash(k)] = v
	}
	return &Index{loc: m}
}

// Lookup returns the line count for relPath. found is false when the file
// is not a scanned source file, which is distinct from an empty file.
func (idx *Index) Lookup(relPath string) (loc int, found bool) {
	loc, found = idx.loc[filepath.ToSlash(relPath)]
	return loc, found
}

// Len returns the number of indexed files.
func (idx *Index) Len() int { return len(idx.loc) }

// TotalLOC sums the line counts of all indexed files.
func (idx *Index) TotalLOC() int {
	total := 0
	for _, n := range idx.loc {
		total += n
	}
	return total
}

// BuildIndex counts lines of code for files (paths under root) in parallel.
// Files that cannot be read are left out and reported in the returned errors.
func BuildIndex(ctx context.Context, root string, files []string, onProgress fileproc.ProgressFunc) (*Index, *fileproc.FileErrors) {
	results, errs := fileproc.ForEachFile(ctx, files, 0, CountLOC, onProgress)

	loc := make(map[string]int, len(results))
	for _, r := range results {
		rel, err := filepath.Rel(root, r.Path)
		if err != nil {
			rel = r.Path
		}
		loc[filepath.ToSlash(rel)] = r.Value
	}
	return &Index{loc: loc}, errs
}

// CountLOC counts the non-blank lines of a file.
func CountLOC(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) > 0 {
			count++
		}
	}
	return count, sc.Err()
}
