package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. They enforce the same invariants as the real
// stores: unique usernames and the feed ordering.
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Account
	byUsername map[string]*domain.Account
	findErr    error
	createErr  error
	creates    int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		byID:       make(map[string]*domain.Account),
		byUsername: make(map[string]*domain.Account),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Roles = append([]domain.Role(nil), a.Roles...)
	return &clone
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.byUsername[account.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	stored := cloneAccount(account)
	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored
	r.creates++
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubAccountRepo) countUsername(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.byID {
		if a.Username == username {
			n++
		}
	}
	return n
}

type stubRoleRepo struct {
	roles map[domain.RoleName]domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: map[domain.RoleName]domain.Role{
		domain.RoleAdmin: {ID: 1, Name: domain.RoleAdmin},
		domain.RoleBasic: {ID: 2, Name: domain.RoleBasic},
	}}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

type stubPostRepo struct {
	mu        sync.Mutex
	nextID    int64
	posts     map[int64]*domain.Post
	createErr error
	deleted   []int64
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: make(map[int64]*domain.Post)}
}

func (r *stubPostRepo) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *post
	clone.ID = r.nextID
	r.posts[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

// ListPage mirrors ORDER BY created_at DESC, id DESC LIMIT/OFFSET.
func (r *stubPostRepo) ListPage(_ context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		clone := *p
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*domain.Post{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *stubPostRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// plainHasher is a cheap reversible stand-in for bcrypt.
type plainHasher struct {
	mu       sync.Mutex
	verifies int
}

func (h *plainHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (h *plainHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return strings.HasPrefix(hash, "hashed:") && strings.TrimPrefix(hash, "hashed:") == plaintext
}

type stubLocker struct {
	acquired int
	released int
	err      error
}

func (l *stubLocker) Acquire(context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() { l.released++ }, nil
}
