// Package filters builds predicates over close approaches from query criteria.
package filters

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// ErrUnsupportedCriterion is returned when an operator cannot be applied to an attribute.
var ErrUnsupportedCriterion = errors.New("unsupported filter criterion")

// Operator compares an attribute (left) with a reference value (right).
type Operator string

const (
	OpEq Operator = "=="
	OpGe Operator = ">="
	OpLe Operator = "<="
)

// Filter is a predicate on a close approach.
type Filter interface {
	Match(approach *domain.CloseApproach) bool
	String() string
}

// AttributeFilter compares one attribute of an approach, or of its NEO, with a
// reference value.
type AttributeFilter[T any] struct {
	name    string
	op      Operator
	value   T
	get     func(*domain.CloseApproach) (T, bool)
	compare func(op Operator, left, right T) bool
}

// Match reports whether the approach satisfies the criterion. Approaches
// without the attribute (e.g. unlinked, for NEO attributes) never match.
func (f AttributeFilter[T]) Match(approach *domain.CloseApproach) bool {
	if approach == nil {
		return false
	}
	left, ok := f.get(approach)
	if !ok {
		return false
	}
	return f.compare(f.op, left, f.value)
}

func (f AttributeFilter[T]) String() string {
	return fmt.Sprintf("%s %s %v", f.name, f.op, f.value)
}

func newFloatFilter(name string, op Operator, value float64, get func(*domain.CloseApproach) (float64, bool)) (Filter, error) {
	if op != OpEq && op != OpGe && op != OpLe {
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedCriterion, name, op)
	}
	return AttributeFilter[float64]{name: name, op: op, value: value, get: get, compare: compareFloat}, nil
}

// NewDateFilter compares the calendar date (UTC) of the approach.
func NewDateFilter(op Operator, date time.Time) (Filter, error) {
	if op != OpEq && op != OpGe && op != OpLe {
		return nil, fmt.Errorf("%w: date %s", ErrUnsupportedCriterion, op)
	}
	return AttributeFilter[civilDate]{
		name:    "date",
		op:      op,
		value:   dateOf(date),
		get:     func(a *domain.CloseApproach) (civilDate, bool) { return dateOf(a.Time), true },
		compare: compareDate,
	}, nil
}

// NewDistanceFilter compares the nominal approach distance in au.
func NewDistanceFilter(op Operator, value float64) (Filter, error) {
	return newFloatFilter("distance", op, value, func(a *domain.CloseApproach) (float64, bool) {
		return a.DistanceAU, true
	})
}

// NewVelocityFilter compares the relative approach velocity in km/s.
func NewVelocityFilter(op Operator, value float64) (Filter, error) {
	return newFloatFilter("velocity", op, value, func(a *domain.CloseApproach) (float64, bool) {
		return a.VelocityKmS, true
	})
}

// NewDiameterFilter compares the diameter of the approaching NEO in km.
func NewDiameterFilter(op Operator, value float64) (Filter, error) {
	return newFloatFilter("diameter", op, value, func(a *domain.CloseApproach) (float64, bool) {
		if a.NEO == nil {
			return 0, false
		}
		return a.NEO.DiameterKm, true
	})
}

// NewHazardousFilter matches on the hazardous flag of the approaching NEO.
func NewHazardousFilter(op Operator, hazardous bool) (Filter, error) {
	if op != OpEq {
		return nil, fmt.Errorf("%w: hazardous %s", ErrUnsupportedCriterion, op)
	}
	return AttributeFilter[bool]{
		name:  "hazardous",
		op:    op,
		value: hazardous,
		get: func(a *domain.CloseApproach) (bool, bool) {
			if a.NEO == nil {
				return false, false
			}
			return a.NEO.Hazardous, true
		},
		compare: func(_ Operator, left, right bool) bool { return left == right },
	}, nil
}

// Create builds one filter per criterion set in criteria.
func Create(criteria domain.ApproachFilter) []Filter {
	var filters []Filter
	add := func(filter Filter, err error) {
		// Operators below are fixed and always supported.
		if err == nil {
			filters = append(filters, filter)
		}
	}

	if criteria.Date != nil {
		add(NewDateFilter(OpEq, *criteria.Date))
	}
	if criteria.StartDate != nil {
		add(NewDateFilter(OpGe, *criteria.StartDate))
	}
	if criteria.EndDate != nil {
		add(NewDateFilter(OpLe, *criteria.EndDate))
	}
	if criteria.DistanceMax != nil {
		add(NewDistanceFilter(OpLe, *criteria.DistanceMax))
	}
	if criteria.DistanceMin != nil {
		add(NewDistanceFilter(OpGe, *criteria.DistanceMin))
	}
	if criteria.VelocityMax != nil {
		add(NewVelocityFilter(OpLe, *criteria.VelocityMax))
	}
	if criteria.VelocityMin != nil {
		add(NewVelocityFilter(OpGe, *criteria.VelocityMin))
	}
	if criteria.DiameterMax != nil {
		add(NewDiameterFilter(OpLe, *criteria.DiameterMax))
	}
	if criteria.DiameterMin != nil {
		add(NewDiameterFilter(OpGe, *criteria.DiameterMin))
	}
	if criteria.Hazardous != nil {
		add(NewHazardousFilter(OpEq, *criteria.Hazardous))
	}
	return filters
}

// MatchAll reports whether the approach satisfies every filter.
func MatchAll(approach *domain.CloseApproach, filters []Filter) bool {
	for _, filter := range filters {
		if !filter.Match(approach) {
			return false
		}
	}
	return true
}

// Limit yields at most n values from seq. n <= 0 means no limit.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		count := 0
		for value := range seq {
			if !yield(value) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

// compareFloat follows IEEE semantics: any comparison with NaN is false.
func compareFloat(op Operator, left, right float64) bool {
	switch op {
	case OpEq:
		return left == right
	case OpGe:
		return left >= right
	case OpLe:
		return left <= right
	default:
		return false
	}
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	year, month, day := t.UTC().Date()
	return civilDate{year: year, month: month, day: day}
}

func (d civilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d civilDate) ordinal() int {
	return d.year*10000 + int(d.month)*100 + d.day
}

func compareDate(op Operator, left, right civilDate) bool {
	switch op {
	case OpEq:
		return left == right
	case OpGe:
		return left.ordinal() >= right.ordinal()
	case OpLe:
		return left.ordinal() <= right.ordinal()
	default:
		return false
	}
}
