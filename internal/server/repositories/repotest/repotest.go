// Package repotest provides in-memory repositories for tests of code that
// depends on repomanager.RepositoryManager.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is an in-memory stand-in for the database, shared by the
// repositories a Manager vends. Tests may inspect the maps directly and set
// the error fields to force failures.
type Store struct {
	mu     sync.Mutex
	Users  map[string]*models.User
	Tokens map[string]map[string]struct{} // user id -> token digests
	Tasks  map[string]*models.Task

	TokenCreateErr error
	UserUpdateErr  error
}

func NewStore() *Store {
	return &Store{
		Users:  map[string]*models.User{},
		Tokens: map[string]map[string]struct{}{},
		Tasks:  map[string]*models.Task{},
	}
}

// TokenCount is the number of live session tokens of userID.
func (st *Store) TokenCount(userID string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.Tokens[userID])
}

type userRepo struct{ st *Store }

func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.Users {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.st.Users[u.ID] = &cp
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.Users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.UserUpdateErr != nil {
		return nil, r.st.UserUpdateErr
	}
	if _, ok := r.st.Users[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	for id, existing := range r.st.Users {
		if id != u.ID && existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.st.Users[u.ID] = &cp
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.Users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.st.Users, id)
	return nil
}

func (r *userRepo) SetAvatar(ctx context.Context, id, key, contentType string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.Users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AvatarKey, u.AvatarContentType = key, contentType
	return nil
}

type tokenRepo struct{ st *Store }

func (r *tokenRepo) Create(ctx context.Context, userID, hash string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.TokenCreateErr != nil {
		return r.st.TokenCreateErr
	}
	if r.st.Tokens[userID] == nil {
		r.st.Tokens[userID] = map[string]struct{}{}
	}
	r.st.Tokens[userID][hash] = struct{}{}
	return nil
}

func (r *tokenRepo) Exists(ctx context.Context, userID, hash string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	_, ok := r.st.Tokens[userID][hash]
	return ok, nil
}

func (r *tokenRepo) Delete(ctx context.Context, userID, hash string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.Tokens[userID], hash)
	return nil
}

func (r *tokenRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.Tokens, userID)
	return nil
}

func (r *tokenRepo) DeleteAllForUserExcept(ctx context.Context, userID, keep string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for h := range r.st.Tokens[userID] {
		if h != keep {
			delete(r.st.Tokens[userID], h)
		}
	}
	return nil
}

type taskRepo struct{ st *Store }

func (r *taskRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.st.Tasks[t.ID] = &cp
	return t, nil
}

func (r *taskRepo) List(ctx context.Context, ownerID string, f models.TaskFilter) ([]*models.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]*models.Task, 0)
	for _, t := range r.st.Tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *taskRepo) GetOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.Tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *taskRepo) UpdateOwned(ctx context.Context, t *models.Task) (*models.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	existing, ok := r.st.Tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, common.ErrorNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	r.st.Tasks[t.ID] = &cp
	return t, nil
}

func (r *taskRepo) DeleteOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.Tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(r.st.Tasks, id)
	return t, nil
}

func (r *taskRepo) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var n int64
	for id, t := range r.st.Tasks {
		if t.OwnerID == ownerID {
			delete(r.st.Tasks, id)
			n++
		}
	}
	return n, nil
}

// Manager is a repomanager.RepositoryManager backed by a Store. The DBTX
// handed to the accessors is ignored.
type Manager struct{ st *Store }

// NewManager returns a Manager over a fresh Store.
func NewManager() *Manager {
	return &Manager{st: NewStore()}
}

// Store exposes the backing data.
func (m *Manager) Store() *Store {
	return m.st
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *Manager) Users(dbx.DBTX) users.Repository              { return &userRepo{m.st} }
func (m *Manager) Tokens(dbx.DBTX) tokens.Repository            { return &tokenRepo{m.st} }
func (m *Manager) Tasks(dbx.DBTX) tasks.Repository              { return &taskRepo{m.st} }

var _ repomanager.RepositoryManager = (*Manager)(nil)

// OpenTxDB returns an in-memory sqlite handle for code that opens
// transactions through dbx.WithTx while its repositories come from a
// Manager. The database is private to the test.
func OpenTxDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
