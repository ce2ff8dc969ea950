// Package tokens declares the server-side repository contract for a user's
// set of valid session tokens.
package tokens

import (
	"context"
)

// Repository stores token digests per user. All operations are scoped to a
// single user; a digest is only ever matched together with its owner id.
type Repository interface {
	// Create appends a digest to the user's token set.
	Create(ctx context.Context, userID string, tokenHash string) error

	// Exists reports whether the digest is in the user's token set.
	Exists(ctx context.Context, userID string, tokenHash string) (bool, error)

	// Delete removes one digest. Deleting an absent digest is not an error.
	Delete(ctx context.Context, userID string, tokenHash string) error

	// DeleteAllForUser empties the user's token set.
	DeleteAllForUser(ctx context.Context, userID string) error

	// DeleteAllForUserExcept removes every digest of the user except keepHash.
	DeleteAllForUserExcept(ctx context.Context, userID string, keepHash string) error
}
