package models

import "time"

type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskSortField is a column tasks may be ordered by.
type TaskSortField string

const (
	TaskSortCreatedAt   TaskSortField = "created_at"
	TaskSortUpdatedAt   TaskSortField = "updated_at"
	TaskSortDescription TaskSortField = "description"
	TaskSortCompleted   TaskSortField = "completed"
)

// TaskFilter narrows a task listing. The owner is not part of the filter;
// it is always the caller and is passed separately.
type TaskFilter struct {
	Completed *bool
	SortBy    TaskSortField
	SortDesc  bool
	Limit     uint64
	Skip      uint64
}
