// Package tokens provides a PostgreSQL-backed repository for the session
// token digests used by the server's authentication flow.
package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// PostgresRepository implements token-set operations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, tokenHash string) error {
	query := `
		INSERT INTO user_tokens (user_id, token_hash)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID string, tokenHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_tokens
			WHERE user_id = $1 AND token_hash = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return exists, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, tokenHash string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token_hash = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForUserExcept(ctx context.Context, userID string, keepHash string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token_hash <> $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, keepHash); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return nil
}
