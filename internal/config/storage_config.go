package config

import "strings"

// Session storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type StorageConfig interface {
	GetSessionBackend() string
	GetSessionFile() string
	GetRedisURL() string
	GetSessionRedisKey() string
}

type Storage struct {
	vars *EnvVars
}

var _ StorageConfig = Storage{}

// GetSessionBackend returns the lower-cased backend name, BackendFile when
// unset. Unknown names are returned as given for the caller to reject.
func (s Storage) GetSessionBackend() string {
	backend := strings.ToLower(strings.TrimSpace(s.vars.SessionBackend))
	if backend == "" {
		return BackendFile
	}
	return backend
}

func (s Storage) GetSessionFile() string {
	if s.vars.SessionFile == "" {
		return DefaultSessionFile()
	}
	return s.vars.SessionFile
}

func (s Storage) GetRedisURL() string {
	return s.vars.RedisURL
}

func (s Storage) GetSessionRedisKey() string {
	return s.vars.SessionRedisKey
}
