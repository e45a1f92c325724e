package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/expertteam/expert/internal/domain"
)

// whereBuilder collects positional arguments while predicates render.
type whereBuilder struct {
	args []any
}

// arg binds v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// predicate renders one SQL condition. A nil predicate is inactive.
type predicate func(w *whereBuilder) string

// where ANDs the active predicates. It returns "" when none are active.
func where(w *whereBuilder, preds ...predicate) string {
	clauses := make([]string, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		clauses = append(clauses, p(w))
	}
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

// likeEscaper escapes LIKE metacharacters. Backslash is PostgreSQL's default LIKE escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ilikeContains matches column case-insensitively against a substring.
// Blank needles are inactive; others match as given, whitespace included.
func ilikeContains(column, needle string) predicate {
	if strings.TrimSpace(needle) == "" {
		return nil
	}
	return func(w *whereBuilder) string {
		return column + " ILIKE " + w.arg(containsPattern(needle))
	}
}

// timeBetween bounds column inclusively by whichever of start and end are set.
func timeBetween(column string, start, end *time.Time) predicate {
	switch {
	case start != nil && end != nil:
		return func(w *whereBuilder) string {
			return column + " BETWEEN " + w.arg(*start) + " AND " + w.arg(*end)
		}
	case start != nil:
		return func(w *whereBuilder) string {
			return column + " >= " + w.arg(*start)
		}
	case end != nil:
		return func(w *whereBuilder) string {
			return column + " <= " + w.arg(*end)
		}
	default:
		return nil
	}
}

func titleContains(title string) predicate {
	return ilikeContains("t.title", title)
}

func createdBetween(start, end *time.Time) predicate {
	return timeBetween("t.created_at", start, end)
}

// managerNicknameContains keeps todos with at least one manager whose nickname
// contains nickname. It filters through a subquery so the joined manager rows,
// and with them manager_count, are not narrowed.
func managerNicknameContains(nickname string) predicate {
	if strings.TrimSpace(nickname) == "" {
		return nil
	}
	return func(w *whereBuilder) string {
		return `EXISTS (SELECT 1 FROM managers fm JOIN users fu ON fu.id = fm.user_id` +
			` WHERE fm.todo_id = t.id AND fu.nickname ILIKE ` + w.arg(containsPattern(nickname)) + `)`
	}
}

func searchPredicates(c domain.TodoSearchCriteria) []predicate {
	return []predicate{
		titleContains(c.Title()),
		createdBetween(c.StartDate(), c.EndDate()),
		managerNicknameContains(c.ManagerNickname()),
	}
}

const searchFrom = `
	FROM todos t
	LEFT JOIN managers m ON m.todo_id = t.id
	LEFT JOIN comments c ON c.todo_id = t.id`

// searchQueries renders the content and count statements from one predicate
// construction. The content statement takes the shared arguments followed by
// LIMIT and OFFSET.
func searchQueries(c domain.TodoSearchCriteria) (content, count string, args []any) {
	w := &whereBuilder{}
	clause := where(w, searchPredicates(c)...)

	n := len(w.args)
	content = `SELECT t.title, COUNT(DISTINCT m.id) AS manager_count, COUNT(DISTINCT c.id) AS comment_count` +
		searchFrom + clause + `
	GROUP BY t.id
	ORDER BY t.created_at DESC, t.id DESC
	LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	count = `SELECT COUNT(DISTINCT t.id)` + searchFrom + clause

	return content, count, w.args
}

// SearchTodos runs the dynamic todo search. The page and the total are read
// from the same snapshot.
func (s *Store) SearchTodos(ctx context.Context, criteria domain.TodoSearchCriteria, page domain.PageRequest) (summaries []domain.TodoSummary, total int64, err error) {
	start := time.Now()
	defer func() {
		s.recordSearchDuration(ctx, time.Since(start), err)
	}()

	contentSQL, countSQL, args := searchQueries(criteria)
	contentArgs := append(slices.Clone(args), page.Size(), page.Offset())

	err = s.readOnly(ctx, func(q dbtx) error {
		rows, err := q.Query(ctx, contentSQL, contentArgs...)
		if err != nil {
			return fmt.Errorf("failed to search todos: %w", err)
		}
		summaries, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TodoSummary, error) {
			var ts domain.TodoSummary
			err := row.Scan(&ts.Title, &ts.ManagerCount, &ts.CommentCount)
			return ts, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan todo summaries: %w", err)
		}

		if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				total = 0
				return nil
			}
			return fmt.Errorf("failed to count todos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (s *Store) recordSearchDuration(ctx context.Context, d time.Duration, err error) {
	if s.searchDuration == nil {
		return
	}
	s.searchDuration.Record(ctx, float64(d.Microseconds())/1000,
		metric.WithAttributes(attribute.Bool("error", err != nil)))
}
