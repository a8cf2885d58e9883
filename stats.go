package pararray

import "fmt"

// Stats holds the minimum, maximum, and total of a number of values.
//
// The zero Stats describes no values at all and is the identity of Merge,
// so partial results can be combined in any grouping and order.
type Stats struct {
	Min, Max int32
	Total    int64
	Count    int
}

// Accumulate computes the Stats of values[low:high] in a single pass.
// Local minimum and maximum are seeded from values[low]. An empty range
// yields the zero Stats.
func Accumulate(values []int32, low, high int) (s Stats) {
	if low >= high {
		return
	}
	s.Min, s.Max = values[low], values[low]
	for _, v := range values[low:high] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.Total += int64(v)
	}
	s.Count = high - low
	return
}

// Merge combines s and t into the Stats of the union of their values.
func (s Stats) Merge(t Stats) Stats {
	switch {
	case t.Count == 0:
		return s
	case s.Count == 0:
		return t
	}
	if t.Min < s.Min {
		s.Min = t.Min
	}
	if t.Max > s.Max {
		s.Max = t.Max
	}
	s.Total += t.Total
	s.Count += t.Count
	return s
}

// Mean returns Total / Count, or ErrDivideByZero if s describes no values.
func (s Stats) Mean() (float64, error) {
	if s.Count == 0 {
		return 0, ErrDivideByZero
	}
	return float64(s.Total) / float64(s.Count), nil
}

func (s Stats) String() string {
	if s.Count == 0 {
		return "{empty}"
	}
	return fmt.Sprintf("{min=%d max=%d total=%d count=%d}", s.Min, s.Max, s.Total, s.Count)
}
