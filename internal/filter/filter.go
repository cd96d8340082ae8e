// Package filter narrows entity collections by the dashboard's filter state.
//
// A Spec maps field names to literal values; the sentinel "all" (or an empty
// value) means no constraint. Every constrained field must match. Filtering
// never mutates its input and always returns a fresh slice.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// All is the sentinel value meaning "no constraint".
const All = "all"

// Recognized Spec keys.
const (
	KeyStatus     = "status"
	KeyPriority   = "priority"
	KeySeverity   = "severity"
	KeyProjectID  = "projectId"
	KeySprintID   = "sprintId"
	KeyAssignee   = "assignee"
	KeyAssigneeID = "assigneeId"
	KeyDateRange  = "dateRange"
)

// Date range values for KeyDateRange.
const (
	RangeLast30Days = "last-30-days"
	RangeLast90Days = "last-90-days"
	RangeThisYear   = "this-year"
)

// ErrInvalidSpec is wrapped when a recognized key carries a value of the
// wrong shape.
var ErrInvalidSpec = errors.New("invalid filter")

// Spec is a filter specification keyed by field name.
type Spec map[string]string

// Active returns the constrained keys in sorted order.
func (s Spec) Active() []string {
	var keys []string
	for k, v := range s {
		if !isAll(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of s with key set to value.
func (s Spec) With(key, value string) Spec {
	out := make(Spec, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[key] = value
	return out
}

// only returns a copy of s restricted to keys.
func (s Spec) only(keys ...string) Spec {
	out := make(Spec, len(keys))
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out
}

// FromQuery builds a Spec from URL query parameters. Only recognized keys
// are copied.
func FromQuery(q url.Values) Spec {
	spec := Spec{}
	for _, k := range []string{KeyStatus, KeyPriority, KeySeverity, KeyProjectID, KeySprintID, KeyAssignee, KeyAssigneeID, KeyDateRange} {
		if v := q.Get(k); v != "" {
			spec[k] = v
		}
	}
	return spec
}

// Dimension is a bit set of the filterable fields an entity carries.
type Dimension uint8

const (
	DimStatus Dimension = 1 << iota
	DimPriority
	DimSeverity
	DimProject
	DimSprint
	DimAssignee
	DimDate
)

// Fields is the filterable view of one entity. A constraint on a dimension
// the entity does not carry does not apply to it.
type Fields struct {
	Dims       Dimension
	Status     string
	Priority   string
	Severity   string
	ProjectID  uint
	SprintID   uint // 0 when the entity has no sprint
	AssigneeID uint // 0 when unassigned
	Dates      []time.Time
}

func (f Fields) has(d Dimension) bool {
	return f.Dims&d != 0
}

// Predicate reports whether an entity passes a compiled Spec.
type Predicate func(Fields) bool

// Compile validates spec and returns the conjunction of its constraints.
// now anchors the date range cutoff.
func Compile(spec Spec, now time.Time) (Predicate, error) {
	var checks []Predicate

	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.TrimSpace(spec[key])
		if isAll(value) {
			continue
		}
		switch key {
		case KeyStatus:
			checks = append(checks, matchString(DimStatus, value, func(f Fields) string { return f.Status }))
		case KeyPriority:
			checks = append(checks, matchString(DimPriority, value, func(f Fields) string { return f.Priority }))
		case KeySeverity:
			checks = append(checks, matchString(DimSeverity, value, func(f Fields) string { return f.Severity }))
		case KeyProjectID, KeySprintID, KeyAssignee, KeyAssigneeID:
			id, err := parseID(key, value)
			if err != nil {
				return nil, err
			}
			checks = append(checks, matchID(key, id))
		case KeyDateRange:
			cutoff, err := Cutoff(value, now)
			if err != nil {
				return nil, err
			}
			checks = append(checks, onOrAfter(cutoff))
		}
	}

	return func(f Fields) bool {
		for _, check := range checks {
			if !check(f) {
				return false
			}
		}
		return true
	}, nil
}

// Cutoff returns the earliest date admitted by a date range value.
func Cutoff(dateRange string, now time.Time) (time.Time, error) {
	switch dateRange {
	case RangeLast30Days:
		return now.AddDate(0, 0, -30), nil
	case RangeLast90Days:
		return now.AddDate(0, 0, -90), nil
	case RangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("filter: unknown %s %q: %w", KeyDateRange, dateRange, ErrInvalidSpec)
}

// Apply returns the items that pass spec, in input order.
func Apply[T any](items []T, spec Spec, now time.Time, extract func(T) Fields) ([]T, error) {
	pred, err := Compile(spec, now)
	if err != nil {
		return nil, err
	}
	return Select(items, pred, extract), nil
}

// Select returns the items that pass an already compiled predicate.
func Select[T any](items []T, pred Predicate, extract func(T) Fields) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(extract(item)) {
			out = append(out, item)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

func parseID(key, value string) (uint, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("filter: %s %q is not an integer: %w", key, value, ErrInvalidSpec)
	}
	return uint(n), nil
}

func matchString(dim Dimension, want string, get func(Fields) string) Predicate {
	return func(f Fields) bool {
		if !f.has(dim) {
			return true
		}
		return get(f) == want
	}
}

func matchID(key string, want uint) Predicate {
	return func(f Fields) bool {
		switch key {
		case KeyProjectID:
			return !f.has(DimProject) || f.ProjectID == want
		case KeySprintID:
			return !f.has(DimSprint) || f.SprintID == want
		default:
			return !f.has(DimAssignee) || f.AssigneeID == want
		}
	}
}

func onOrAfter(cutoff time.Time) Predicate {
	return func(f Fields) bool {
		if !f.has(DimDate) {
			return true
		}
		for _, d := range f.Dates {
			if !d.IsZero() && !d.Before(cutoff) {
				return true
			}
		}
		return false
	}
}
