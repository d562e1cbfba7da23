package mcpserver

// Tool descriptions carry interpretation guidance for the calling model.

func describeChangeFrequency() string {
	return `Classifies the source files of a git repository by how often they changed and how many people changed them over a recent window.

USE WHEN:
- Looking for files that change constantly and may need a design review
- Estimating how much of the codebase is volatile before a refactoring
- Comparing stability between languages or architectural components
- Checking whether large files or shared files attract more changes

INTERPRETING RESULTS:
- A change is a distinct calendar day on which the file was committed
- Buckets run negligible, low, medium, high, very_high using configured boundaries
- Lines of code per bucket show how much code sits in each risk level
- Files deleted before the scan appear in the history but are skipped
- A Pearson coefficient near 1 means the two measures rise together
- "not computable" means fewer than two files or no variation in a measure

METRICS RETURNED:
- Summary: files changed, analyzed and skipped, lines of code, commits, contributors
- Distributions: overall, per extension and per logical component
- Contributor distribution across the same buckets
- Most changed files and files with most contributors
- Correlations: file size vs. changes, contributors vs. changes`
}
