// Package correlation computes Pearson correlations between two numeric
// attributes of an arbitrary item collection.
package correlation

import (
	"encoding/json"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Sample is one (x, y) point and the item it came from.
type Sample struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Result holds the included samples in input order and the coefficient.
// Coefficient is meaningful only when Computable is true, and is left out
// of the JSON form otherwise so it cannot be read as a real zero.
type Result struct {
	Samples     []Sample
	Coefficient float64
	Computable  bool
}

type resultJSON struct {
	Samples     []Sample `json:"samples"`
	Coefficient *float64 `json:"coefficient,omitempty"`
	Computable  bool     `json:"computable"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Samples: r.Samples, Computable: r.Computable}
	if out.Samples == nil {
		out.Samples = []Sample{}
	}
	if r.Computable {
		c := r.Coefficient
		out.Coefficient = &c
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{Samples: in.Samples, Computable: in.Computable && in.Coefficient != nil}
	if r.Computable {
		r.Coefficient = *in.Coefficient
	}
	return nil
}

// Value returns the coefficient and whether it is defined.
func (r Result) Value() (float64, bool) {
	return r.Coefficient, r.Computable
}

func (r Result) String() string {
	if !r.Computable {
		return "n/a"
	}
	return strconv.FormatFloat(r.Coefficient, 'f', 2, 64)
}

// Correlate extracts (x, y, label) from every item accepted by include and
// computes the Pearson coefficient over the accepted pairs. A nil include
// accepts everything. The coefficient is not computable with fewer than two
// samples or when either series is constant.
func Correlate[T any](items []T, xf, yf func(T) float64, labelf func(T) string, include func(T) bool) Result {
	samples := make([]Sample, 0, len(items))
	for _, it := range items {
		x, y := xf(it), yf(it)
		if include != nil && !include(it) {
			continue
		}
		samples = append(samples, Sample{X: x, Y: y, Label: labelf(it)})
	}

	res := Result{Samples: samples}
	if len(samples) < 2 {
		return res
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	if constant(xs) || constant(ys) {
		return res
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return res
	}
	res.Coefficient = clamp(r)
	res.Computable = true
	return res
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// clamp keeps rounding noise from pushing r outside [-1, 1].
func clamp(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}
