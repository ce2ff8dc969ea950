// Package services contains server-side business logic: credentials,
// session tokens, user accounts, tasks and avatars.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore owns password hashing and verification on top of the
// users repository.
type CredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cost        int
	// dummyHash is compared against when the email is unknown, so a miss
	// costs one bcrypt comparison like a hit does.
	dummyHash []byte
}

// NewCredentialStore builds a store hashing with the given bcrypt cost.
func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, cost int) (*CredentialStore, error) {
	seed := common.GenerateRandByteArray(16)
	defer common.WipeByteArray(seed)

	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &CredentialStore{db: db, repomanager: m, cost: cost, dummyHash: dummy}, nil
}

// NewUser validates registration input and returns an unsaved user with
// the password already hashed.
func (s *CredentialStore) NewUser(email, password string, profile models.Profile) (*models.User, error) {
	name, err := normalizeName(profile.Name)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateAge(profile.Age); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{Email: email, PasswordHash: hash, Name: name, Age: profile.Age}, nil
}

// Register validates, hashes and persists a new user.
// A taken email yields common.ErrDuplicateEmail.
func (s *CredentialStore) Register(ctx context.Context, email, password string, profile models.Profile) (*models.User, error) {
	user, err := s.NewUser(email, password, profile)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// Verify returns the user owning email if password matches. Unknown email
// and wrong password both yield common.ErrInvalidCredentials.
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (*models.User, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, pw)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, pw) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword returns the bcrypt hash of password at the store's cost.
func (s *CredentialStore) HashPassword(password string) ([]byte, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	hash, err := bcrypt.GenerateFromPassword(pw, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewValidationError("password", "must be at most %d bytes", maxPasswordBytes)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
