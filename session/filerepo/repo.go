// Package filerepo keeps the session in a YAML file in the user's home
// directory, the CLI counterpart of browser local storage.
package filerepo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
	"gopkg.in/yaml.v3"
)

var _ session.Repo = (*Repo)(nil)

// Repo stores session keys as a flat YAML mapping. Every write rewrites the
// file through a temp file and rename so a crash never leaves it truncated.
type Repo struct {
	path string
	lock sync.Mutex
}

func New(path string) *Repo {
	return &Repo{path: path}
}

// Path returns the backing file.
func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Get(key string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *Repo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	values[key] = value
	return r.save(values)
}

func (r *Repo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return r.save(values)
}

func (r *Repo) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errors.ErrStorageUnavailable, r.path, err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", errors.ErrStorageUnavailable, r.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (r *Repo) save(values map[string]string) error {
	if len(values) == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %w", errors.ErrStorageUnavailable, r.path, err)
		}
		return nil
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("[filerepo] marshal: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %w", errors.ErrStorageUnavailable, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: temp file: %w", errors.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %w", errors.ErrStorageUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod: %w", errors.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", errors.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: rename: %w", errors.ErrStorageUnavailable, err)
	}
	return nil
}
