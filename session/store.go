package session

import (
	"sync"

	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Store)(nil)

// Store is the single session of a client install. Memory is authoritative
// while the process runs; every change is mirrored to the Repo immediately so
// the next process starts from the same state.
//
// Readers never block on storage and never observe a half-applied mutation.
// Observers run synchronously after each change and must not mutate the
// store from inside the callback.
type Store struct {
	repo Repo

	// writeMu serialises mutations, their storage writes and notifications.
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State

	obsMu     sync.Mutex
	observers []observer
	nextObsID uint64
}

type observer struct {
	id uint64
	fn func(State)
}

// NewStore hydrates a store from repo. A nil repo keeps the session in memory only.
func NewStore(repo Repo) *Store {
	s := &Store{repo: repo}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if s.repo == nil {
		return
	}
	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		v, err := s.repo.Get(key)
		if err != nil {
			if !errors.Is(err, errors.ErrNotFound) {
				log.Warn().Err(err).Str("key", key).Msg("session storage unreadable, starting logged out")
				s.state = State{}
				return
			}
			continue
		}
		values[key] = v
	}

	st := State{
		AccessToken:  values[AccessTokenKey],
		RefreshToken: values[RefreshTokenKey],
	}
	role, hasRole := values[RoleKey]
	email, hasEmail := values[EmailKey]
	if hasRole || hasEmail {
		if st.AccessToken == "" {
			// identity without a token is stale
			s.persist(RoleKey, "")
			s.persist(EmailKey, "")
		} else {
			st.Identity = &Identity{Email: email, Role: parseRole(role)}
		}
	}
	s.state = st
}

// AccessToken returns the current access token, "" when absent.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// State returns a snapshot of the whole session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

func (s *Store) IsAdmin() bool {
	return s.State().IsAdmin()
}

func (s *Store) Email() string {
	return s.State().Email()
}

// Token implements oauth2.TokenSource over the current access token.
func (s *Store) Token() (*oauth2.Token, error) {
	st := s.State()
	if !st.IsAuthenticated() {
		return nil, errors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  st.AccessToken,
		RefreshToken: st.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// SetTokens replaces both tokens and leaves identity alone, except that an
// empty access token also drops identity.
func (s *Store) SetTokens(access, refresh string) {
	s.update(func(st State) State {
		st.AccessToken = access
		st.RefreshToken = refresh
		if access == "" {
			st.Identity = nil
		}
		return st
	})
}

// SetIdentity replaces the identity. nil clears it. Setting an identity on a
// session without an access token fails with ErrNotAuthenticated.
func (s *Store) SetIdentity(id *Identity) error {
	var err error
	s.update(func(st State) State {
		if id == nil {
			st.Identity = nil
			return st
		}
		if st.AccessToken == "" {
			err = errors.ErrNotAuthenticated
			return st
		}
		cp := *id
		st.Identity = &cp
		return st
	})
	return err
}

// Logout clears the whole session in one step. Every storage key is removed
// even if memory was already empty, so a failed earlier write is repaired.
// It never fails; storage errors are logged.
func (s *Store) Logout() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.state
	s.state = State{}
	s.mu.Unlock()

	for _, key := range Keys {
		s.persist(key, "")
	}
	if !prev.equal(State{}) {
		log.Debug().Msg("session cleared")
		s.notify(State{})
	}
}

// Subscribe registers fn to receive every new state. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) update(fn func(State) State) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	s.state = next
	s.mu.Unlock()

	if prev.equal(next) {
		return
	}
	if prev.AccessToken != next.AccessToken {
		s.persist(AccessTokenKey, next.AccessToken)
	}
	if prev.RefreshToken != next.RefreshToken {
		s.persist(RefreshTokenKey, next.RefreshToken)
	}
	if prev.Role() != next.Role() || (prev.Identity == nil) != (next.Identity == nil) {
		s.persist(RoleKey, string(next.Role()))
	}
	if prev.Email() != next.Email() || (prev.Identity == nil) != (next.Identity == nil) {
		s.persist(EmailKey, next.Email())
	}
	s.notify(s.State())
}

func (s *Store) persist(key, value string) {
	if s.repo == nil {
		return
	}
	var err error
	if value == "" {
		err = s.repo.Delete(key)
	} else {
		err = s.repo.Set(key, value)
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("session storage write failed")
	}
}

func (s *Store) notify(st State) {
	s.obsMu.Lock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, o := range observers {
		o.fn(st)
	}
}

func parseRole(v string) users.Role {
	role, _ := users.ParseRole(v)
	return role
}
