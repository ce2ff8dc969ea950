package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/observability"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// TokenService issues, validates and revokes session tokens.
//
// A token is accepted only if it decodes under the signing secret and its
// digest is still in the owner's token set. Removing the digest is the
// only way to end a session.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, secret []byte) *TokenService {
	return &TokenService{db: db, repomanager: m, secret: secret}
}

// Issue mints a token for userID and appends it to the user's token set.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := s.issue(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	observability.TokensIssuedTotal.Inc()
	return token, nil
}

func (s *TokenService) issue(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.secret)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	if err := s.repomanager.Tokens(db).Create(ctx, userID, auth.HashToken(token)); err != nil {
		return "", fmt.Errorf("error storing token: %w", err)
	}
	return token, nil
}

// Decode performs the structural check only: signature, algorithm and
// subject. It says nothing about whether the session is still live.
func (s *TokenService) Decode(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.secret)
}

// Validate decodes token, checks membership in the owner's token set and
// loads the owner. Rejections are common.ErrInvalidToken; storage failures
// are returned wrapped.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Principal, error) {
	userID, err := s.Decode(token)
	if err != nil {
		return nil, err
	}

	ok, err := s.repomanager.Tokens(s.db).Exists(ctx, userID, auth.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("error checking token: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &models.Principal{User: user, Token: token}, nil
}

// RevokeOne removes token from the user's set. Revoking an unknown token
// succeeds.
func (s *TokenService) RevokeOne(ctx context.Context, userID, token string) error {
	if err := s.repomanager.Tokens(s.db).Delete(ctx, userID, auth.HashToken(token)); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	observability.TokensRevokedTotal.WithLabelValues(observability.ScopeOne).Inc()
	return nil
}

// RevokeAll empties the user's token set.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.revokeAll(ctx, s.db, userID); err != nil {
		return err
	}
	observability.TokensRevokedTotal.WithLabelValues(observability.ScopeAll).Inc()
	return nil
}

func (s *TokenService) revokeAll(ctx context.Context, db dbx.DBTX, userID string) error {
	if err := s.repomanager.Tokens(db).DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking tokens: %w", err)
	}
	return nil
}

// RevokeOthers empties the user's token set except for keep.
func (s *TokenService) RevokeOthers(ctx context.Context, userID, keep string) error {
	if err := s.revokeOthers(ctx, s.db, userID, keep); err != nil {
		return err
	}
	observability.TokensRevokedTotal.WithLabelValues(observability.ScopeOthers).Inc()
	return nil
}

func (s *TokenService) revokeOthers(ctx context.Context, db dbx.DBTX, userID, keep string) error {
	if err := s.repomanager.Tokens(db).DeleteAllForUserExcept(ctx, userID, auth.HashToken(keep)); err != nil {
		return fmt.Errorf("error revoking tokens: %w", err)
	}
	return nil
}
