package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/notify"
	"github.com/dmitrijs2005/taskkeeper/internal/server/observability"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
}

// UserService implements the account lifecycle: registration, login,
// logout, profile updates and account deletion.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials *CredentialStore
	tokens      *TokenService
	avatars     AvatarStore
	mailer      notify.Mailer
	logger      logging.Logger
}

func NewUserService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	credentials *CredentialStore,
	tokens *TokenService,
	avatars AvatarStore,
	mailer notify.Mailer,
	logger logging.Logger,
) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		credentials: credentials,
		tokens:      tokens,
		avatars:     avatars,
		mailer:      mailer,
		logger:      logger.With("module", "users"),
	}
}

// Register creates the user and its first session token in one
// transaction, then sends the welcome email.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	user, err := s.credentials.NewUser(in.Email, in.Password, models.Profile{Name: in.Name, Age: in.Age})
	if err != nil {
		return nil, "", err
	}

	var token string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		var issueErr error
		token, issueErr = s.tokens.issue(ctx, tx, user.ID)
		return issueErr
	}); err != nil {
		return nil, "", err
	}
	observability.TokensIssuedTotal.Inc()

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a new token. Existing sessions of
// the user are untouched.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout ends the session the principal authenticated with.
func (s *UserService) Logout(ctx context.Context, p *models.Principal) error {
	return s.tokens.RevokeOne(ctx, p.User.ID, p.Token)
}

// LogoutAll ends every session of the principal's user.
func (s *UserService) LogoutAll(ctx context.Context, p *models.Principal) error {
	return s.tokens.RevokeAll(ctx, p.User.ID)
}

// UpdateProfile applies an allow-listed patch to the caller's profile. A
// password change also revokes every other session of the user in the same
// transaction; the session making the change stays valid.
func (s *UserService) UpdateProfile(ctx context.Context, p *models.Principal, raw map[string]json.RawMessage) (*models.User, error) {
	patch, err := DecodeUserPatch(raw)
	if err != nil {
		return nil, err
	}

	updated := *p.User
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Age != nil {
		updated.Age = *patch.Age
	}
	if patch.Password != nil {
		hash, err := s.credentials.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Update(ctx, &updated); err != nil {
			return err
		}
		if patch.Password != nil {
			return s.tokens.revokeOthers(ctx, tx, updated.ID, p.Token)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if patch.Password != nil {
		observability.TokensRevokedTotal.WithLabelValues(observability.ScopeOthers).Inc()
	}

	*p.User = updated
	return p.User, nil
}

// DeleteAccount removes the caller's tasks, tokens and user row in one
// transaction, then drops the avatar object and sends the cancellation
// email. It returns the user as it was.
func (s *UserService) DeleteAccount(ctx context.Context, p *models.Principal) (*models.User, error) {
	user := p.User

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Tasks(tx).DeleteAllByOwner(ctx, user.ID); err != nil {
			return err
		}
		if err := s.tokens.revokeAll(ctx, tx, user.ID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, user.ID)
	}); err != nil {
		return nil, err
	}
	observability.TokensRevokedTotal.WithLabelValues(observability.ScopeAll).Inc()

	if user.HasAvatar() {
		if err := s.avatars.Delete(ctx, user.AvatarKey); err != nil {
			s.logger.Warn(ctx, "failed to delete avatar object", "user_id", user.ID, "error", err)
		}
	}

	if err := s.mailer.SendCancellation(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn(ctx, "cancellation email failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}
