package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists tasks. Every read and write other than Create takes
// the owner id and matches it in the same statement as the task id, so a
// task owned by someone else is indistinguishable from a missing one
// (common.ErrorNotFound).
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]*models.Task, error)
	GetOwned(ctx context.Context, id string, ownerID string) (*models.Task, error)
	UpdateOwned(ctx context.Context, task *models.Task) (*models.Task, error)
	DeleteOwned(ctx context.Context, id string, ownerID string) (*models.Task, error)
	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
}
