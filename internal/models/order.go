package models

import "strconv"

// Order is one cart line: a meal, its quantity and whether it was submitted.
// Timestamp is epoch milliseconds of the last modification.
type Order struct {
	ID        int64
	MealID    string
	MealName  string
	Quantity  int
	Timestamp int64
	Submitted bool
	UserID    int64
}

// Filter selects which orders a listing returns.
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterSubmitted
)

// String implements fmt.Stringer.
func (f Filter) String() string {
	switch f {
	case FilterPending:
		return "pending"
	case FilterSubmitted:
		return "submitted"
	default:
		return "all"
	}
}

// Match reports whether o belongs to the filter.
func (f Filter) Match(o Order) bool {
	switch f {
	case FilterPending:
		return !o.Submitted
	case FilterSubmitted:
		return o.Submitted
	default:
		return true
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
