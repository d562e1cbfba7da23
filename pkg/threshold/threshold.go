// Package threshold defines the five ordered risk buckets and the boundary
// configuration used to classify counts into them.
package threshold

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrConfiguration is returned for malformed threshold or grouping configuration.
	// It is fatal at startup and never retried.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument is returned when a caller passes a value outside the
	// domain of an operation, such as a negative count.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Bucket identifies one of the five ordered risk buckets.
type Bucket int

const (
	Negligible Bucket = iota
	Low
	Medium
	High
	VeryHigh
)

// BucketCount is the number of risk buckets.
const BucketCount = 5

// Buckets returns all buckets ordered from negligible to very high.
func Buckets() []Bucket {
	return []Bucket{Negligible, Low, Medium, High, VeryHigh}
}

func (b Bucket) String() string {
	switch b {
	case Negligible:
		return "negligible"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the bucket as its name.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a bucket name written by MarshalText.
func (b *Bucket) UnmarshalText(text []byte) error {
	parsed, err := ParseBucket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBucket returns the bucket with the given name.
func ParseBucket(name string) (Bucket, error) {
	for _, b := range Buckets() {
		if b.String() == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown risk bucket %q", ErrInvalidArgument, name)
}

// Set is an immutable, validated boundary configuration.
// Each boundary is the inclusive upper end of its bucket; anything above
// highMax falls into VeryHigh.
type Set struct {
	negligibleMax int
	lowMax        int
	mediumMax     int
	highMax       int
	labels        [BucketCount]string
}

// New validates the boundaries and labels and returns a Set.
func New(negligibleMax, lowMax, mediumMax, highMax int, labels []string) (*Set, error) {
	if negligibleMax < 0 {
		return nil, fmt.Errorf("%w: thresholds must be non-negative (negligible=%d)", ErrConfiguration, negligibleMax)
	}
	if !(negligibleMax < lowMax && lowMax < mediumMax && mediumMax < highMax) {
		return nil, fmt.Errorf("%w: thresholds must be strictly increasing (got %d, %d, %d, %d)",
			ErrConfiguration, negligibleMax, lowMax, mediumMax, highMax)
	}
	if len(labels) != BucketCount {
		return nil, fmt.Errorf("%w: expected %d labels, got %d", ErrConfiguration, BucketCount, len(labels))
	}

	s := &Set{
		negligibleMax: negligibleMax,
		lowMax:        lowMax,
		mediumMax:     mediumMax,
		highMax:       highMax,
	}
	copy(s.labels[:], labels)
	return s, nil
}

// DefaultLabels derives human-readable range labels from the boundaries,
// e.g. (5, 20, 50, 100) -> "0-5", "6-20", "21-50", "51-100", "101+".
func DefaultLabels(negligibleMax, lowMax, mediumMax, highMax int) []string {
	return []string{
		rangeLabel(0, negligibleMax),
		rangeLabel(negligibleMax+1, lowMax),
		rangeLabel(lowMax+1, mediumMax),
		rangeLabel(mediumMax+1, highMax),
		strconv.Itoa(highMax+1) + "+",
	}
}

func rangeLabel(from, to int) string {
	if from == to {
		return strconv.Itoa(from)
	}
	return strconv.Itoa(from) + "-" + strconv.Itoa(to)
}

// Classify maps a non-negative count to its bucket.
func (s *Set) Classify(count int) (Bucket, error) {
	switch {
	case count < 0:
		return Negligible, fmt.Errorf("%w: count must be non-negative (got %d)", ErrInvalidArgument, count)
	case count > s.highMax:
		return VeryHigh, nil
	case count > s.mediumMax:
		return High, nil
	case count > s.lowMax:
		return Medium, nil
	case count > s.negligibleMax:
		return Low, nil
	default:
		return Negligible, nil
	}
}

func (s *Set) NegligibleMax() int { return s.negligibleMax }
func (s *Set) LowMax() int        { return s.lowMax }
func (s *Set) MediumMax() int     { return s.mediumMax }
func (s *Set) HighMax() int       { return s.highMax }

// Label returns the range label of a bucket.
func (s *Set) Label(b Bucket) string {
	if b < Negligible || b > VeryHigh {
		return ""
	}
	return s.labels[b]
}

// Labels returns a copy of the labels ordered negligible to very high.
func (s *Set) Labels() []string {
	out := make([]string, BucketCount)
	copy(out, s.labels[:])
	return out
}

// Rendering helpers.

func (s *Set) NegligibleRiskLabel() string { return s.labels[Negligible] }
func (s *Set) LowRiskLabel() string        { return s.labels[Low] }
func (s *Set) MediumRiskLabel() string     { return s.labels[Medium] }
func (s *Set) HighRiskLabel() string       { return s.labels[High] }
func (s *Set) VeryHighRiskLabel() string   { return s.labels[VeryHigh] }
