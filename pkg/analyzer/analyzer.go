// Package analyzer defines the interface implemented by repository analyzers.
package analyzer

import "context"

// RepoAnalyzer is the interface for analyzers that work on a whole repository.
type RepoAnalyzer[T any] interface {
	// Analyze processes the repository rooted at repoPath.
	Analyze(ctx context.Context, repoPath string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
