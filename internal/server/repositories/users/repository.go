package users

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists user accounts. Lookups return common.ErrorNotFound
// when no row matches; Create and Update return common.ErrDuplicateEmail
// when the email is taken by another account.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, key string, contentType string) error
}
