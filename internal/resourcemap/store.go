// Package resourcemap maintains the process-wide table mapping logical
// project and module names to their canonical location URIs. The
// generation engine consults this table to resolve cross-project
// references.
//
// The store is created once per process and only ever appended to or
// overwritten; entries accumulate across runs so multi-module builds see
// registrations made by earlier invocations in the same process.
package resourcemap

import (
	"net/url"
	"path/filepath"
	"sync"
	"time"
)

// Store is the shared name → canonical URI table.
type Store struct {
	entries  map[string]string
	mutex    sync.RWMutex
	watchers []chan RegistrationEvent
}

// RegistrationEvent describes a single write to the store.
type RegistrationEvent struct {
	Name      string
	URI       string
	Replaced  bool
	Timestamp time.Time
}

// NewStore creates an empty resource map store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]string),
	}
}

// Put registers uri under name, returning the previous value if the name
// was already registered. Later writes overwrite earlier ones.
func (s *Store) Put(name, uri string) (previous string, existed bool) {
	s.mutex.Lock()
	previous, existed = s.entries[name]
	s.entries[name] = uri
	watchers := s.watchers
	s.mutex.Unlock()

	event := RegistrationEvent{
		Name:      name,
		URI:       uri,
		Replaced:  existed,
		Timestamp: time.Now(),
	}

	for _, watcher := range watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}

	return previous, existed
}

// Get retrieves the URI registered under name.
func (s *Store) Get(name string) (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	uri, ok := s.entries[name]
	return uri, ok
}

// Snapshot returns a copy of the current table.
func (s *Store) Snapshot() map[string]string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string]string, len(s.entries))
	for name, uri := range s.entries {
		result[name] = uri
	}
	return result
}

// Len returns the number of registered names.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entries)
}

// Watch registers a channel that receives one event per registration.
// Events are dropped rather than blocking a slow receiver.
func (s *Store) Watch() <-chan RegistrationEvent {
	ch := make(chan RegistrationEvent, 64)

	s.mutex.Lock()
	s.watchers = append(s.watchers, ch)
	s.mutex.Unlock()

	return ch
}

// CanonicalURI converts an absolute filesystem path into the canonical
// file URI form stored in the map.
func CanonicalURI(path string) string {
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
