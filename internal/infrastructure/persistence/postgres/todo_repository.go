package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/expertteam/expert/internal/domain"
)

const todoWithOwnerColumns = `t.id, t.title, t.contents, t.weather, t.user_id, t.created_at, t.modified_at,
	u.id, u.email, u.nickname`

func scanTodoWithOwner(row pgx.Row) (domain.TodoWithOwner, error) {
	var t domain.TodoWithOwner
	err := row.Scan(&t.ID, &t.Title, &t.Contents, &t.Weather, &t.UserID, &t.CreatedAt, &t.ModifiedAt,
		&t.Owner.ID, &t.Owner.Email, &t.Owner.Nickname)
	return t, err
}

// CreateTodo persists a new todo.
func (s *Store) CreateTodo(ctx context.Context, todo *domain.Todo) error {
	id, err := parseID(todo.ID)
	if err != nil {
		return err
	}
	ownerID, err := parseID(todo.UserID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO todos (id, title, contents, weather, user_id, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, todo.Title, todo.Contents, todo.Weather, ownerID, todo.CreatedAt, todo.ModifiedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s", domain.ErrUserNotFound, todo.UserID)
		}
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// FindTodoByID retrieves a todo together with its owner.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.TodoWithOwner, error) {
	tid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	t, err := scanTodoWithOwner(s.db.QueryRow(ctx, `
		SELECT `+todoWithOwnerColumns+`
		FROM todos t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1`, tid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return &t, nil
}

// ListTodos returns one page of todos, most recently modified first, and the
// number of todos matching the filter.
func (s *Store) ListTodos(ctx context.Context, filter domain.TodoListFilter, page domain.PageRequest) ([]domain.TodoWithOwner, int64, error) {
	w := &whereBuilder{}
	clause := where(w,
		ilikeContains("t.weather", filter.Weather),
		timeBetween("t.modified_at", filter.ModifiedFrom, filter.ModifiedTo),
	)
	n := len(w.args)

	listSQL := `SELECT ` + todoWithOwnerColumns + `
		FROM todos t
		JOIN users u ON u.id = t.user_id` + clause + `
		ORDER BY t.modified_at DESC, t.id DESC
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	countSQL := `SELECT COUNT(*) FROM todos t` + clause

	listArgs := append(append([]any{}, w.args...), page.Size(), page.Offset())

	var (
		todos []domain.TodoWithOwner
		total int64
	)
	err := s.readOnly(ctx, func(q dbtx) error {
		rows, err := q.Query(ctx, listSQL, listArgs...)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		todos, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TodoWithOwner, error) {
			return scanTodoWithOwner(row)
		})
		if err != nil {
			return fmt.Errorf("failed to scan todos: %w", err)
		}

		if err := q.QueryRow(ctx, countSQL, w.args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}
