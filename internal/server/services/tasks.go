package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// CreateTaskInput is the body of a task creation request. The owner is
// never part of it.
type CreateTaskInput struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskService scopes every task operation to the calling principal.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, p *models.Principal, in CreateTaskInput) (*models.Task, error) {
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}
	task := &models.Task{Description: description, Completed: in.Completed, OwnerID: p.User.ID}
	return s.repomanager.Tasks(s.db).Create(ctx, task)
}

// List returns the caller's tasks narrowed by filter.
func (s *TaskService) List(ctx context.Context, p *models.Principal, filter models.TaskFilter) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, p.User.ID, filter)
}

// Get returns one of the caller's tasks. Foreign, missing and malformed ids
// are all common.ErrorNotFound.
func (s *TaskService) Get(ctx context.Context, p *models.Principal, id string) (*models.Task, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Tasks(s.db).GetOwned(ctx, id, p.User.ID)
}

// Update applies an allow-listed patch to one of the caller's tasks. The
// key check runs before the lookup, so a bad patch is rejected even for an
// unknown id.
func (s *TaskService) Update(ctx context.Context, p *models.Principal, id string, raw map[string]json.RawMessage) (*models.Task, error) {
	patch, err := DecodeTaskPatch(raw)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}

	var task *models.Task
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		current, err := repo.GetOwned(ctx, id, p.User.ID)
		if err != nil {
			return err
		}
		patch.Apply(current)
		task, err = repo.UpdateOwned(ctx, current)
		return err
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes one of the caller's tasks and returns it.
func (s *TaskService) Delete(ctx context.Context, p *models.Principal, id string) (*models.Task, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Tasks(s.db).DeleteOwned(ctx, id, p.User.ID)
}
