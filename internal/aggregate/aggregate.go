// Package aggregate computes the summary figures shown next to filtered tables.
// Arithmetic runs on decimals so averages of prices print without float noise.
package aggregate

import (
	"math"
	"sort"

	"github.com/sentidash/sentidash/internal/derive"
	"github.com/shopspring/decimal"
)

// Sentiment thresholds. Scores above Positive are positive, below Negative are negative.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// SentimentLabel classifies a sentiment score.
func SentimentLabel(score float64) string {
	switch {
	case score > PositiveThreshold:
		return LabelPositive
	case score < NegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Summary holds descriptive statistics of a series. Last is the final element in input order.
type Summary struct {
	Count int
	Sum   decimal.Decimal
	Mean  decimal.Decimal
	Min   decimal.Decimal
	Max   decimal.Decimal
	Last  decimal.Decimal
}

// Summarize computes a Summary. An empty series yields Count 0 and zero decimals.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(values)}
	for i, v := range values {
		d := decimal.NewFromFloat(v)
		s.Sum = s.Sum.Add(d)
		if i == 0 || d.LessThan(s.Min) {
			s.Min = d
		}
		if i == 0 || d.GreaterThan(s.Max) {
			s.Max = d
		}
		s.Last = d
	}
	s.Mean = s.Sum.Div(decimal.NewFromInt(int64(s.Count)))
	return s
}

// IsEmpty reports whether the series had no values.
func (s Summary) IsEmpty() bool { return s.Count == 0 }

// Format renders d with the given number of decimals, or "-" for an empty summary.
func (s Summary) Format(d decimal.Decimal, places int32) string {
	if s.IsEmpty() {
		return "-"
	}
	return d.StringFixed(places)
}

// Values collects the numeric values of field. Rows without the field are skipped.
func Values[R derive.Record](rows []R, field string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// ValuesOrZero collects the numeric values of field, counting missing ones as 0.
func ValuesOrZero[R derive.Record](rows []R, field string) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if v, ok := r.Field(field); ok {
			out[i], _ = v.Float()
		}
	}
	return out
}

// Distinct returns the distinct non-empty values of field in first-seen order.
func Distinct[R derive.Record](rows []R, field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		v, ok := r.Field(field)
		if !ok {
			continue
		}
		s := v.String()
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Group is one bucket of CountBy.
type Group struct {
	Key   string
	Count int
}

// CountBy counts rows per value of field. Missing values are grouped under "(empty)".
// Groups are ordered by count descending, then key.
func CountBy[R derive.Record](rows []R, field string) []Group {
	counts := make(map[string]int)
	for _, r := range rows {
		key := "(empty)"
		if v, ok := r.Field(field); ok && v.String() != "" {
			key = v.String()
		}
		counts[key]++
	}
	groups := make([]Group, 0, len(counts))
	for k, c := range counts {
		groups = append(groups, Group{Key: k, Count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Pearson returns the correlation coefficient of two equally long series.
// ok is false when fewer than two pairs exist or either series is constant.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)
	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
