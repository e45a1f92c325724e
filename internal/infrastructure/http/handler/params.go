package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/expertteam/expert/internal/application/todo"
	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// localDateTimeLayout is accepted alongside RFC 3339 and read as UTC.
const localDateTimeLayout = "2006-01-02T15:04:05"

// queryParams accumulates query parsing failures so all of them are reported at once.
type queryParams struct {
	values url.Values
	errs   fieldErrors
}

func newQueryParams(values url.Values) *queryParams {
	return &queryParams{values: values}
}

func (q *queryParams) text(name string) string {
	return q.values.Get(name)
}

// integer returns nil when the parameter is absent.
func (q *queryParams) integer(name string) *int {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs = append(q.errs, response.ErrorField{Field: name, Issue: "must be an integer"})
		return nil
	}
	return &n
}

// dateTime returns nil when the parameter is absent.
func (q *queryParams) dateTime(name string) *time.Time {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return nil
	}
	t, err := parseDateTime(raw)
	if err != nil {
		q.errs = append(q.errs, response.ErrorField{Field: name, Issue: err.Error()})
		return nil
	}
	return &t
}

func (q *queryParams) page() todo.PageParams {
	return todo.PageParams{Page: q.integer("page"), Size: q.integer("size")}
}

// err returns the accumulated failures, or nil.
func (q *queryParams) err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return q.errs
}

// parseDateTime accepts RFC 3339 or a zone-less timestamp interpreted as UTC.
func parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: expected RFC 3339 or %s", domain.ErrInvalidDateFormat, localDateTimeLayout)
}
