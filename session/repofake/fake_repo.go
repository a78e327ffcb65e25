package repofake

import (
	"sync"

	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps session keys in memory. It backs the "memory"
// storage backend and lets tests inspect writes or simulate an unavailable store.
type FakeSessionRepo struct {
	values map[string]string
	writes []string
	fail   bool
	lock   sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		values: make(map[string]string),
	}
}

// Seed stores values without recording them as writes.
func (r *FakeSessionRepo) Seed(values map[string]string) *FakeSessionRepo {
	r.lock.Lock()
	defer r.lock.Unlock()
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// SetUnavailable makes every call fail with errors.ErrStorageUnavailable.
func (r *FakeSessionRepo) SetUnavailable(fail bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.fail = fail
}

func (r *FakeSessionRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.fail {
		return "", errors.ErrStorageUnavailable
	}
	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FakeSessionRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.fail {
		return errors.ErrStorageUnavailable
	}
	r.values[key] = value
	r.writes = append(r.writes, "set:"+key)
	return nil
}

func (r *FakeSessionRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.fail {
		return errors.ErrStorageUnavailable
	}
	delete(r.values, key)
	r.writes = append(r.writes, "delete:"+key)
	return nil
}

// Values returns a copy of the stored keys.
func (r *FakeSessionRepo) Values() map[string]string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Writes returns the recorded operations ("set:key" / "delete:key") and resets them.
func (r *FakeSessionRepo) Writes() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	w := r.writes
	r.writes = nil
	return w
}
