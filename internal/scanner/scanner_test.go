package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/churnscope/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	sort.Strings(out)
	return out
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s.config == nil {
		t.Fatal("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	s = NewScanner(cfg)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":                "package main\n",
		"util/helper.PY":         "# python\n",
		"internal/core.rs":       "fn main() {}\n",
		"README.md":              "# readme\n",
		"vendor/dep/dep.go":      "package dep\n",
		"web/app.min.js":         "x\n",
		"node_modules/x/i.js":    "x\n",
		"Makefile":               "all:\n",
		"internal/gen/api.pb.go": "package gen\n",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	got := relPaths(t, tmpDir, result)
	want := []string{"internal/core.rs", "main.go", "util/helper.PY"}
	if len(got) != len(want) {
		t.Fatalf("ScanDir() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanDirExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.go": "package a\n",
		"b.py": "pass\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.Extensions = []string{".py"}

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relPaths(t, tmpDir, result); len(got) != 1 || got[0] != "b.py" {
		t.Errorf("ScanDir() = %v, want [b.py]", got)
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":       "generated/\n*_gen.go\n",
		"main.go":          "package main\n",
		"types_gen.go":     "package main\n",
		"generated/out.go": "package generated\n",
		"sub/.gitignore":   "local.go\n",
		"sub/local.go":     "package sub\n",
		"sub/kept.go":      "package sub\n",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, tmpDir, result)
	want := []string{"main.go", "sub/kept.go"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ScanDir() = %v, want %v", got, want)
	}

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	result, err = NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 5 {
		t.Errorf("ScanDir() without gitignore found %d files, want 5", len(result))
	}
}

func TestScanDirEmptyDirectory(t *testing.T) {
	result, err := NewScanner(nil).ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() found %d files in empty dir", len(result))
	}
}

func TestScanDirWithSymlinkOutsideRoot(t *testing.T) {
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.go": "package secret\n"})

	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main\n"})
	if err := os.Symlink(filepath.Join(outside, "secret.go"), filepath.Join(root, "link.go")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relPaths(t, root, result); len(got) != 1 || got[0] != "main.go" {
		t.Errorf("ScanDir() = %v, want [main.go]", got)
	}
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path string
		root string
		want bool
	}{
		{"/repo/a.go", "/repo", true},
		{"/repo", "/repo", true},
		{"/repo2/a.go", "/repo", false},
		{"/etc/passwd", "/repo", false},
		{"/repo/sub/../a.go", "/repo", true},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("isWithinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestCountLOC(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.go":     "package a\n\n  \nfunc A() {}\n",
		"empty.go": "",
		"noeol.go": "package b",
	})

	tests := []struct {
		name string
		want int
	}{
		{"a.go", 2},
		{"empty.go", 0},
		{"noeol.go", 1},
	}
	for _, tt := range tests {
		got, err := CountLOC(filepath.Join(tmpDir, tt.name))
		if err != nil {
			t.Fatalf("CountLOC(%s) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("CountLOC(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestBuildIndex(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":      "package main\n\nfunc main() {}\n",
		"pkg/empty.go": "",
	})

	files, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, filepath.Join(tmpDir, "missing.go"))

	idx, errs := BuildIndex(context.Background(), tmpDir, files, nil)
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("BuildIndex() errors = %v, want one missing file", errs)
	}

	if loc, found := idx.Lookup("main.go"); !found || loc != 2 {
		t.Errorf("Lookup(main.go) = %d, %v; want 2, true", loc, found)
	}
	if loc, found := idx.Lookup("pkg/empty.go"); !found || loc != 0 {
		t.Errorf("Lookup(pkg/empty.go) = %d, %v; want 0, true (real zero)", loc, found)
	}
	if _, found := idx.Lookup("missing.go"); found {
		t.Error("Lookup(missing.go) should not be found")
	}
	if idx.Len() != 2 || idx.TotalLOC() != 2 {
		t.Errorf("Len() = %d, TotalLOC() = %d", idx.Len(), idx.TotalLOC())
	}
}

func TestNewIndex(t *testing.T) {
	idx := NewIndex(map[string]int{"a/b.go": 3})
	if loc, found := idx.Lookup("a/b.go"); !found || loc != 3 {
		t.Errorf("Lookup() = %d, %v", loc, found)
	}
}
