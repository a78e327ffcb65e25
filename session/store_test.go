package session_test

import (
	"sync"
	"testing"

	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/session/repofake"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, seed map[string]string) (*session.Store, *repofake.FakeSessionRepo) {
	t.Helper()
	repo := repofake.NewFakeSessionRepo().Seed(seed)
	return session.NewStore(repo), repo
}

func TestStore_FreshSessionIsLoggedOut(t *testing.T) {
	s, _ := setupStore(t, nil)

	require.False(t, s.IsAuthenticated())
	require.False(t, s.IsAdmin())
	require.Empty(t, s.Email())
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())

	_, err := s.Token()
	require.True(t, errors.Is(err, errors.ErrNotAuthenticated))
}

func TestStore_TokensThenIdentity(t *testing.T) {
	s, repo := setupStore(t, nil)

	s.SetTokens("a1", "r1")
	require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser}))

	require.True(t, s.IsAuthenticated())
	require.False(t, s.IsAdmin())
	require.Equal(t, "x@y.com", s.Email())
	require.Equal(t, map[string]string{
		session.AccessTokenKey:  "a1",
		session.RefreshTokenKey: "r1",
		session.RoleKey:         "USER",
		session.EmailKey:        "x@y.com",
	}, repo.Values())

	tok, err := s.Token()
	require.NoError(t, err)
	require.Equal(t, "a1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestStore_AdminIdentity(t *testing.T) {
	s, _ := setupStore(t, nil)
	s.SetTokens("a1", "r1")
	require.NoError(t, s.SetIdentity(&session.Identity{Email: "admin@example.com", Role: users.RoleAdmin}))
	require.True(t, s.IsAdmin())
}

func TestStore_WritesOnlyChangedFields(t *testing.T) {
	s, repo := setupStore(t, nil)

	s.SetTokens("a1", "r1")
	require.ElementsMatch(t, []string{"set:access_token", "set:refresh_token"}, repo.Writes())

	require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser}))
	require.ElementsMatch(t, []string{"set:auth_role", "set:auth_email"}, repo.Writes())

	s.SetTokens("a2", "r1")
	require.Equal(t, []string{"set:access_token"}, repo.Writes())

	s.SetTokens("a2", "r1")
	require.Empty(t, repo.Writes())

	require.NoError(t, s.SetIdentity(nil))
	require.ElementsMatch(t, []string{"delete:auth_role", "delete:auth_email"}, repo.Writes())
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	s, repo := setupStore(t, nil)
	s.SetTokens("a1", "r1")
	require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleAdmin}))

	s.Logout()
	first := s.State()
	s.Logout()

	require.Equal(t, first, s.State())
	require.False(t, s.IsAuthenticated())
	require.False(t, s.IsAdmin())
	require.Empty(t, s.AccessToken())
	require.Empty(t, repo.Values())
}

func TestStore_IdentityRequiresToken(t *testing.T) {
	t.Run("set identity without token", func(t *testing.T) {
		s, repo := setupStore(t, nil)
		err := s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser})
		require.True(t, errors.Is(err, errors.ErrNotAuthenticated))
		require.Nil(t, s.State().Identity)
		require.Empty(t, repo.Values())
	})

	t.Run("clearing the access token drops identity", func(t *testing.T) {
		s, repo := setupStore(t, nil)
		s.SetTokens("a1", "r1")
		require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser}))

		s.SetTokens("", "r1")
		require.Nil(t, s.State().Identity)
		require.Equal(t, map[string]string{session.RefreshTokenKey: "r1"}, repo.Values())
	})

	t.Run("hydration drops stale identity", func(t *testing.T) {
		s, repo := setupStore(t, map[string]string{
			session.RoleKey:  "ADMIN",
			session.EmailKey: "x@y.com",
		})
		require.False(t, s.IsAuthenticated())
		require.False(t, s.IsAdmin())
		require.Empty(t, repo.Values())
	})
}

func TestStore_HydratesFromStorage(t *testing.T) {
	s, _ := setupStore(t, map[string]string{
		session.AccessTokenKey:  "a1",
		session.RefreshTokenKey: "r1",
		session.RoleKey:         "ADMIN",
		session.EmailKey:        "admin@example.com",
	})

	require.True(t, s.IsAuthenticated())
	require.True(t, s.IsAdmin())
	require.Equal(t, "admin@example.com", s.Email())
	require.Equal(t, "r1", s.RefreshToken())
}

func TestStore_StorageUnavailable(t *testing.T) {
	repo := repofake.NewFakeSessionRepo()
	repo.SetUnavailable(true)
	s := session.NewStore(repo)

	require.NotPanics(t, func() {
		s.SetTokens("a1", "r1")
		require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser}))
	})
	require.True(t, s.IsAuthenticated())

	require.NotPanics(t, s.Logout)
	require.False(t, s.IsAuthenticated())
}

func TestStore_LogoutRepairsStorageAfterFailedWrite(t *testing.T) {
	s, repo := setupStore(t, nil)
	s.SetTokens("a1", "r1")

	repo.SetUnavailable(true)
	s.Logout()
	repo.SetUnavailable(false)
	require.NotEmpty(t, repo.Values())

	s.Logout()
	require.Empty(t, repo.Values())
}

func TestStore_MemoryOnly(t *testing.T) {
	s := session.NewStore(nil)
	s.SetTokens("a1", "r1")
	require.Equal(t, "a1", s.AccessToken())
	s.Logout()
	require.Empty(t, s.AccessToken())
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := setupStore(t, nil)

	var seen []bool
	unsubscribe := s.Subscribe(func(st session.State) {
		seen = append(seen, st.IsAuthenticated())
	})

	s.SetTokens("a1", "r1")
	s.SetTokens("a1", "r1") // no change, no notification
	s.Logout()
	s.Logout()
	require.Equal(t, []bool{true, false}, seen)

	unsubscribe()
	unsubscribe()
	s.SetTokens("a2", "r2")
	require.Len(t, seen, 2)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _ := setupStore(t, nil)
	s.SetTokens("a1", "r1")
	require.NoError(t, s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser}))

	st := s.State()
	st.Identity.Role = users.RoleAdmin
	require.False(t, s.IsAdmin())
}

func TestStore_ReadersNeverSeeIdentityWithoutToken(t *testing.T) {
	s, _ := setupStore(t, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	violations := make(chan session.State, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				st := s.State()
				if st.Identity != nil && st.AccessToken == "" {
					select {
					case violations <- st:
					default:
					}
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		s.SetTokens("a", "r")
		_ = s.SetIdentity(&session.Identity{Email: "x@y.com", Role: users.RoleUser})
		s.Logout()
	}
	close(stop)
	wg.Wait()

	select {
	case st := <-violations:
		t.Fatalf("observed identity without token: %+v", st)
	default:
	}
}
