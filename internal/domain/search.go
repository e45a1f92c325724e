package domain

import (
	"strings"
	"time"
)

// TodoSearchCriteriaInput holds raw search parameters as received from a transport.
// Every field is optional.
type TodoSearchCriteriaInput struct {
	Title           string
	StartDate       *time.Time
	EndDate         *time.Time
	ManagerNickname string
}

// TodoSearchCriteria is the normalized, immutable form of a todo search request.
// Blank strings are normalized to empty and mean "no constraint"; other strings
// are kept as given, surrounding whitespace included.
type TodoSearchCriteria struct {
	title           string
	startDate       *time.Time
	endDate         *time.Time
	managerNickname string
}

// NewTodoSearchCriteria normalizes the input. All fields are optional, so it never fails.
func NewTodoSearchCriteria(input TodoSearchCriteriaInput) TodoSearchCriteria {
	c := TodoSearchCriteria{
		title:           nonBlank(input.Title),
		managerNickname: nonBlank(input.ManagerNickname),
	}
	if input.StartDate != nil {
		start := input.StartDate.UTC()
		c.startDate = &start
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		c.endDate = &end
	}
	return c
}

// Title returns the title substring, empty when absent.
func (c TodoSearchCriteria) Title() string { return c.title }

// HasTitle reports whether a title constraint is present.
func (c TodoSearchCriteria) HasTitle() bool { return c.title != "" }

// StartDate returns the inclusive lower creation bound, nil when absent.
func (c TodoSearchCriteria) StartDate() *time.Time { return c.startDate }

// EndDate returns the inclusive upper creation bound, nil when absent.
func (c TodoSearchCriteria) EndDate() *time.Time { return c.endDate }

// ManagerNickname returns the nickname substring, empty when absent.
func (c TodoSearchCriteria) ManagerNickname() string { return c.managerNickname }

// HasManagerNickname reports whether a manager nickname constraint is present.
func (c TodoSearchCriteria) HasManagerNickname() bool { return c.managerNickname != "" }

// IsEmpty reports whether no constraint is present at all.
func (c TodoSearchCriteria) IsEmpty() bool {
	return !c.HasTitle() && c.startDate == nil && c.endDate == nil && !c.HasManagerNickname()
}

// TodoSummary is the read-only projection returned by todo search.
type TodoSummary struct {
	Title        string
	ManagerCount int64
	CommentCount int64
}

// TodoListFilter holds the optional filters of the plain todo listing.
// Blank weather means no weather constraint.
type TodoListFilter struct {
	Weather      string
	ModifiedFrom *time.Time
	ModifiedTo   *time.Time
}

// nonBlank returns s, or "" when s holds only whitespace.
func nonBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Normalize clears a blank weather filter and converts bounds to UTC.
func (f TodoListFilter) Normalize() TodoListFilter {
	out := TodoListFilter{Weather: nonBlank(f.Weather)}
	if f.ModifiedFrom != nil {
		from := f.ModifiedFrom.UTC()
		out.ModifiedFrom = &from
	}
	if f.ModifiedTo != nil {
		to := f.ModifiedTo.UTC()
		out.ModifiedTo = &to
	}
	return out
}
