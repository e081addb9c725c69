// Package storetest holds the behaviour every store backend must share. Each
// backend's tests call Run with a constructor for an empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

// Stores is the repository set under test.
type Stores struct {
	Accounts ports.AccountRepository
	Roles    ports.RoleRepository
	Posts    ports.PostRepository
}

// Run executes the shared cases. open must return an empty, migrated store.
func Run(t *testing.T, open func(t *testing.T) Stores) {
	t.Run("SeedRoles", func(t *testing.T) { testSeedRoles(t, open(t)) })
	t.Run("AccountRoundTrip", func(t *testing.T) { testAccountRoundTrip(t, open(t)) })
	t.Run("DuplicateUsername", func(t *testing.T) { testDuplicateUsername(t, open(t)) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, open(t)) })
	t.Run("ListAccounts", func(t *testing.T) { testListAccounts(t, open(t)) })
	t.Run("PostLifecycle", func(t *testing.T) { testPostLifecycle(t, open(t)) })
	t.Run("FeedOrdering", func(t *testing.T) { testFeedOrdering(t, open(t)) })
}

func role(t *testing.T, s Stores, name domain.RoleName) domain.Role {
	t.Helper()
	r, err := s.Roles.FindByName(context.Background(), name)
	require.NoError(t, err)
	return *r
}

func newAccount(username string, roles ...domain.Role) *domain.Account {
	return &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "hash-of-" + username,
		Roles:        roles,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func testSeedRoles(t *testing.T, s Stores) {
	ctx := context.Background()

	admin := role(t, s, domain.RoleAdmin)
	basic := role(t, s, domain.RoleBasic)
	assert.Equal(t, domain.RoleAdmin, admin.Name)
	assert.Equal(t, domain.RoleBasic, basic.Name)
	assert.NotEqual(t, admin.ID, basic.ID)

	_, err := s.Roles.FindByName(ctx, "moderator")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func testAccountRoundTrip(t *testing.T, s Stores) {
	ctx := context.Background()
	basic := role(t, s, domain.RoleBasic)

	in := newAccount("alice", basic)
	created, err := s.Accounts.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in.ID, created.ID)

	byName, err := s.Accounts.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, in.ID, byName.ID)
	assert.Equal(t, in.PasswordHash, byName.PasswordHash)
	assert.Equal(t, []domain.Role{basic}, byName.Roles)
	assert.True(t, in.CreatedAt.Equal(byName.CreatedAt), "created_at %s != %s", in.CreatedAt, byName.CreatedAt)

	byID, err := s.Accounts.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.Accounts.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = s.Accounts.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func testDuplicateUsername(t *testing.T, s Stores) {
	ctx := context.Background()
	basic := role(t, s, domain.RoleBasic)
	admin := role(t, s, domain.RoleAdmin)

	first := newAccount("bob", basic)
	_, err := s.Accounts.Create(ctx, first)
	require.NoError(t, err)

	_, err = s.Accounts.Create(ctx, newAccount("bob", admin))
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	stored, err := s.Accounts.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, []domain.Role{basic}, stored.Roles)
}

func testConcurrentCreate(t *testing.T, s Stores) {
	ctx := context.Background()
	basic := role(t, s, domain.RoleBasic)

	const workers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Accounts.Create(ctx, newAccount("carol", basic))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateUsername):
				duplicates++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func testListAccounts(t *testing.T, s Stores) {
	ctx := context.Background()
	basic := role(t, s, domain.RoleBasic)
	admin := role(t, s, domain.RoleAdmin)

	for _, a := range []*domain.Account{newAccount("zed", basic), newAccount("amy", admin), newAccount("max", basic)} {
		_, err := s.Accounts.Create(ctx, a)
		require.NoError(t, err)
	}

	list, err := s.Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"amy", "max", "zed"}, []string{list[0].Username, list[1].Username, list[2].Username})
	assert.True(t, list[0].IsAdmin())
	assert.False(t, list[1].IsAdmin())
}

func testPostLifecycle(t *testing.T, s Stores) {
	ctx := context.Background()
	owner, err := s.Accounts.Create(ctx, newAccount("dora", role(t, s, domain.RoleBasic)))
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created, err := s.Posts.Create(ctx, &domain.Post{Content: "first", CreatedAt: at, OwnerID: owner.ID, OwnerUsername: owner.Username})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := s.Posts.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", found.Content)
	assert.Equal(t, owner.ID, found.OwnerID)
	assert.Equal(t, "dora", found.OwnerUsername)
	assert.True(t, at.Equal(found.CreatedAt))

	second, err := s.Posts.Create(ctx, &domain.Post{Content: "second", CreatedAt: at, OwnerID: owner.ID, OwnerUsername: owner.Username})
	require.NoError(t, err)
	assert.Greater(t, second.ID, created.ID)

	require.NoError(t, s.Posts.Delete(ctx, created.ID))
	_, err = s.Posts.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, s.Posts.Delete(ctx, created.ID), domain.ErrPostNotFound)
}

func testFeedOrdering(t *testing.T, s Stores) {
	ctx := context.Background()
	owner, err := s.Accounts.Create(ctx, newAccount("eve", role(t, s, domain.RoleBasic)))
	require.NoError(t, err)

	// Pairs of posts share a timestamp so the id tiebreak is exercised.
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		_, err := s.Posts.Create(ctx, &domain.Post{
			Content:       fmt.Sprintf("post %d", i),
			CreatedAt:     base.Add(time.Duration(i/2) * time.Second),
			OwnerID:       owner.ID,
			OwnerUsername: owner.Username,
		})
		require.NoError(t, err)
	}

	var seen []*domain.Post
	for offset := 0; offset < 30; offset += 10 {
		page, total, err := s.Posts.ListPage(ctx, offset, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		seen = append(seen, page...)
	}
	require.Len(t, seen, 25)

	for i := 1; i < len(seen); i++ {
		prev, cur := seen[i-1], seen[i]
		require.False(t, cur.CreatedAt.After(prev.CreatedAt), "post %d newer than its predecessor", cur.ID)
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			require.Less(t, cur.ID, prev.ID, "tie not broken by id")
		}
		assert.Equal(t, "eve", cur.OwnerUsername)
	}

	beyond, total, err := s.Posts.ListPage(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.EqualValues(t, 25, total)
}
