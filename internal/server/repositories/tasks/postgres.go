// Package tasks provides the PostgreSQL-backed repository for tasks, with
// every query scoped to the owning user.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation is raised by Postgres for a malformed uuid.
const invalidTextRepresentation = "22P02"

var selectColumns = []string{"id", "description", "completed", "owner_id", "created_at", "updated_at"}

// sortColumns guards the ORDER BY clause, which cannot be parameterized.
var sortColumns = map[models.TaskSortField]struct{}{
	models.TaskSortCreatedAt:   {},
	models.TaskSortUpdatedAt:   {},
	models.TaskSortDescription: {},
	models.TaskSortCompleted:   {},
}

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the task and fills in ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (description, completed, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, task.Description, task.Completed, task.OwnerID).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return task, nil
}

// List returns the owner's tasks. The owner predicate is always present;
// the filter only adds conditions, ordering and paging on top of it.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]*models.Task, error) {
	where := squirrel.And{squirrel.Eq{"owner_id": ownerID}}
	if filter.Completed != nil {
		where = append(where, squirrel.Eq{"completed": *filter.Completed})
	}

	builder := squirrel.Select(selectColumns...).
		From("tasks").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	if _, ok := sortColumns[filter.SortBy]; ok {
		dir := "ASC"
		if filter.SortDesc {
			dir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", filter.SortBy, dir), "id ASC")
	} else {
		builder = builder.OrderBy("created_at ASC", "id ASC")
	}

	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Skip > 0 {
		builder = builder.Offset(filter.Skip)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select tasks: %w", common.ErrPersistence, err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		var item models.Task
		if err := rows.Scan(
			&item.ID, &item.Description, &item.Completed, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return result, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id string, ownerID string) (*models.Task, error) {
	query := `
		SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).
		Scan(&task.ID, &task.Description, &task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

// UpdateOwned writes description and completed back; the owner id in the
// task is part of the match and is never changed.
func (r *PostgresRepository) UpdateOwned(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		UPDATE tasks SET description = $3, completed = $4, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, task.ID, task.OwnerID, task.Description, task.Completed).
		Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

// DeleteOwned removes the task and returns it as it was.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, id string, ownerID string) (*models.Task, error) {
	query := `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
		RETURNING id, description, completed, owner_id, created_at, updated_at
	`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).
		Scan(&task.ID, &task.Description, &task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

// DeleteAllByOwner removes every task of the owner and returns how many
// rows went away.
func (r *PostgresRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%w: %w", common.ErrPersistence, err)
}
