package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/domain"
)

func criteria(title string, start, end *time.Time, nickname string) domain.TodoSearchCriteria {
	return domain.NewTodoSearchCriteria(domain.TodoSearchCriteriaInput{
		Title:           title,
		StartDate:       start,
		EndDate:         end,
		ManagerNickname: nickname,
	})
}

func TestWhere_NoActivePredicates(t *testing.T) {
	w := &whereBuilder{}
	assert.Empty(t, where(w, nil, nil, nil))
	assert.Empty(t, w.args)
}

func TestContainsPattern_EscapesMetacharacters(t *testing.T) {
	assert.Equal(t, "%milk%", containsPattern("milk"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, containsPattern(`c:\dir`))
}

func TestTimeBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		wantSQL  string
		wantArgs []any
	}{
		{"both bounds", &start, &end, "t.created_at BETWEEN $1 AND $2", []any{start, end}},
		{"start only", &start, nil, "t.created_at >= $1", []any{start}},
		{"end only", nil, &end, "t.created_at <= $1", []any{end}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := timeBetween("t.created_at", tt.start, tt.end)
			require.NotNil(t, p)

			w := &whereBuilder{}
			assert.Equal(t, tt.wantSQL, p(w))
			assert.Equal(t, tt.wantArgs, w.args)
		})
	}

	assert.Nil(t, timeBetween("t.created_at", nil, nil))
}

func TestSearchPredicates_BlankEqualsAbsent(t *testing.T) {
	for _, title := range []string{"", "   ", "\t"} {
		c := criteria(title, nil, nil, "  ")
		for _, p := range searchPredicates(c) {
			assert.Nil(t, p)
		}
	}
}

func TestSearchQueries_Unfiltered(t *testing.T) {
	content, count, args := searchQueries(criteria("", nil, nil, ""))

	assert.Empty(t, args)
	assert.NotContains(t, content, "WHERE")
	assert.NotContains(t, count, "WHERE")
	assert.Contains(t, content, "LIMIT $1 OFFSET $2")
	assert.Contains(t, content, "GROUP BY t.id")
	assert.Contains(t, content, "ORDER BY t.created_at DESC, t.id DESC")
	assert.Contains(t, content, "COUNT(DISTINCT m.id)")
	assert.Contains(t, content, "COUNT(DISTINCT c.id)")
	assert.Contains(t, count, "COUNT(DISTINCT t.id)")
	assert.NotContains(t, content, "JOIN users")
	assert.NotContains(t, count, "JOIN users")
}

func TestSearchQueries_KeepsWhitespaceInNeedles(t *testing.T) {
	_, _, args := searchQueries(criteria("Buy ", nil, nil, " ali"))

	assert.Equal(t, []any{"%Buy %", "% ali%"}, args)
}

func TestSearchQueries_AllFiltersShareArguments(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	content, count, args := searchQueries(criteria("Buy", &start, &end, "ali"))

	require.Equal(t, []any{"%Buy%", start, end, "%ali%"}, args)

	wantWhere := " WHERE t.title ILIKE $1 AND t.created_at BETWEEN $2 AND $3 AND EXISTS (SELECT 1 FROM managers fm JOIN users fu ON fu.id = fm.user_id WHERE fm.todo_id = t.id AND fu.nickname ILIKE $4)"
	assert.Contains(t, content, wantWhere)
	assert.Contains(t, count, wantWhere)
	assert.Contains(t, content, "LIMIT $5 OFFSET $6")
	assert.NotContains(t, count, "LIMIT")
}

func TestSearchQueries_SubsetOfFilters(t *testing.T) {
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	content, _, args := searchQueries(criteria("", nil, &end, "bob"))

	require.Equal(t, []any{end, "%bob%"}, args)
	assert.Contains(t, content, " WHERE t.created_at <= $1 AND EXISTS (")
	assert.NotContains(t, content, "t.title ILIKE")
	assert.Contains(t, content, "LIMIT $3 OFFSET $4")
}
