// Package risk folds classified items into per-bucket risk distributions,
// overall and per grouping key.
package risk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/panbanda/churnscope/pkg/threshold"
)

// OverallKey is the key of the ungrouped distribution.
const OverallKey = "overall"

// Item is a single measured item: Count is classified, Value is summed.
type Item struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Value int    `json:"value"`
}

// Stats holds per-bucket item counts and summed values for one grouping key.
// Totals are always derived from the buckets.
type Stats struct {
	Key    string                     `json:"key"`
	Counts [threshold.BucketCount]int `json:"counts"`
	Values [threshold.BucketCount]int `json:"values"`
}

// Count returns the number of items in a bucket.
func (s Stats) Count(b threshold.Bucket) int {
	if b < threshold.Negligible || b > threshold.VeryHigh {
		return 0
	}
	return s.Counts[b]
}

// Value returns the summed value of a bucket.
func (s Stats) Value(b threshold.Bucket) int {
	if b < threshold.Negligible || b > threshold.VeryHigh {
		return 0
	}
	return s.Values[b]
}

// TotalCount is the sum of all bucket counts.
func (s Stats) TotalCount() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// TotalValue is the sum of all bucket values.
func (s Stats) TotalValue() int {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	return total
}

// IsEmpty reports whether no items were aggregated.
func (s Stats) IsEmpty() bool {
	return s.TotalCount() == 0
}

// Aggregate classifies every item and folds it into a single Stats.
// An empty slice yields all-zero stats.
func Aggregate(key string, items []Item, set *threshold.Set) (Stats, error) {
	stats := Stats{Key: key}
	for _, it := range items {
		if err := stats.add(it, set); err != nil {
			return Stats{}, err
		}
	}
	return stats, nil
}

func (s *Stats) add(it Item, set *threshold.Set) error {
	if it.Value < 0 {
		return fmt.Errorf("%w: value of %q must be non-negative (got %d)", threshold.ErrInvalidArgument, it.Key, it.Value)
	}
	b, err := set.Classify(it.Count)
	if err != nil {
		return fmt.Errorf("classify %q: %w", it.Key, err)
	}
	s.Counts[b]++
	s.Values[b] += it.Value
	return nil
}

// KeyFunc returns the grouping key of an item, or false if it has none.
type KeyFunc func(Item) (string, bool)

// ByExtension groups items by lower-cased file extension without the dot.
func ByExtension(it Item) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(it.Key), ".")
	if ext == "" {
		return "", false
	}
	return strings.ToLower(ext), true
}

// Builder aggregates items per declared grouping key. The key index is
// built once; lookups are case-insensitive and output follows declaration order.
type Builder struct {
	set   *threshold.Set
	keys  []string
	index map[string]int
}

// NewBuilder creates a builder for the declared keys. When a key is declared
// more than once (ignoring case) the first declaration wins.
func NewBuilder(set *threshold.Set, keys []string) *Builder {
	b := &Builder{
		set:   set,
		keys:  make([]string, 0, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		folded := strings.ToLower(k)
		if _, dup := b.index[folded]; dup {
			continue
		}
		b.index[folded] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	return b
}

// Build partitions items with keyOf and aggregates each partition.
// Items whose key is missing or undeclared are dropped. Every declared key
// gets a Stats record, even when nothing matched it.
func (b *Builder) Build(items []Item, keyOf KeyFunc) ([]Stats, error) {
	out := make([]Stats, len(b.keys))
	for i, k := range b.keys {
		out[i] = Stats{Key: k}
	}

	for _, it := range items {
		key, ok := keyOf(it)
		if !ok {
			continue
		}
		slot, ok := b.index[strings.ToLower(key)]
		if !ok {
			continue
		}
		if err := out[slot].add(it, b.set); err != nil {
			return nil, err
		}
	}
	return out, nil
}
