package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/notify"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repotest"
	"golang.org/x/crypto/bcrypt"
)

type memAvatarStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newMemAvatarStore() *memAvatarStore {
	return &memAvatarStore{objects: map[string][]byte{}}
}

func (s *memAvatarStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memAvatarStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (s *memAvatarStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.objects, key)
	return nil
}

type recordingMailer struct {
	mu        sync.Mutex
	welcomed  []string
	cancelled []string
	err       error
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, email)
	return m.err
}

func (m *recordingMailer) SendCancellation(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, email)
	return m.err
}

var _ notify.Mailer = (*recordingMailer)(nil)

type testEnv struct {
	st      *repotest.Store
	rm      *repotest.Manager
	creds   *CredentialStore
	tokens  *TokenService
	users   *UserService
	tasks   *TaskService
	avatars *AvatarService
	objects *memAvatarStore
	mailer  *recordingMailer
}

func newTestEnvWithDB(t *testing.T, db *sql.DB) *testEnv {
	t.Helper()
	rm := repotest.NewManager()
	st := rm.Store()

	creds, err := NewCredentialStore(db, rm, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCredentialStore error: %v", err)
	}
	tokenSvc := NewTokenService(db, rm, []byte("test-secret"))
	objects := newMemAvatarStore()
	mailer := &recordingMailer{}

	return &testEnv{
		st:      st,
		rm:      rm,
		creds:   creds,
		tokens:  tokenSvc,
		users:   NewUserService(db, rm, creds, tokenSvc, objects, mailer, logging.Nop{}),
		tasks:   NewTaskService(db, rm),
		avatars: NewAvatarService(db, rm, objects, 1_000_000, logging.Nop{}),
		objects: objects,
		mailer:  mailer,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, repotest.OpenTxDB(t))
}

// register is a test shortcut returning the principal of a fresh account.
func (e *testEnv) register(t *testing.T, email string) *models.Principal {
	t.Helper()
	u, tok, err := e.users.Register(context.Background(), RegisterInput{
		Email: email, Password: "secret123", Name: "User " + email,
	})
	if err != nil {
		t.Fatalf("Register(%s) error: %v", email, err)
	}
	return &models.Principal{User: u, Token: tok}
}
