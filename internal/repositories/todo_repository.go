package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"field-backend/internal/models"
)

type TodoRepository struct {
	DB *pgxpool.Pool
}

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{DB: db}
}

const todoColumns = `name, status, priority, date, COALESCE(description, ''),
	COALESCE(reference_type, ''), COALESCE(reference_name, ''), allocated_to, created_at, updated_at`

func scanTodo(row interface{ Scan(...any) error }) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(
		&todo.Name,
		&todo.Status,
		&todo.Priority,
		&todo.Date,
		&todo.Description,
		&todo.ReferenceType,
		&todo.ReferenceName,
		&todo.AllocatedTo,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *TodoRepository) nextName(ctx context.Context) (string, error) {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('todo_number_sequence')").Scan(&n); err != nil {
		return "", fmt.Errorf("failed to get next todo number: %w", err)
	}
	return fmt.Sprintf("TD-%06d", n), nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	name, err := r.nextName(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO todos (name, status, priority, date, description, reference_type, reference_name, allocated_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		name,
		todo.Status,
		todo.Priority,
		todo.Date,
		todo.Description,
		todo.ReferenceType,
		todo.ReferenceName,
		todo.AllocatedTo,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	todo.Name = name
	return nil
}

func (r *TodoRepository) GetByName(ctx context.Context, name string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE name = $1`
	return scanTodo(r.DB.QueryRow(ctx, query, name))
}

// ListByAllocatedTo returns the todos assigned to a user email, newest
// first. Lead snapshots are attached by the service layer, not here.
func (r *TodoRepository) ListByAllocatedTo(ctx context.Context, email string) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE allocated_to = $1 ORDER BY date DESC, name DESC`

	rows, err := r.DB.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) UpdateStatus(ctx context.Context, name string, status models.TodoStatus) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE todos SET status = $1, updated_at = NOW() WHERE name = $2`,
		status, name)
	if err != nil {
		return fmt.Errorf("failed to update todo %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %s not found", name)
	}
	return nil
}
