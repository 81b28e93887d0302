// Package session owns logged-in Bluesky sessions and the per-session state
// that lives with them: the XRPC client, the local id cache and the page
// cursors.
package session

import (
	"fmt"
	"sync"

	"github.com/mudkipdev/rephoton/internal/adapter"
	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/idmap"
)

// Bounds on the per-session memory of page cursors and comment paths.
const (
	maxCursors = 1024
	maxPaths   = 8192
)

// Session is one logged-in account behind a bearer token. Its Cache is
// created with the session and dropped with it.
type Session struct {
	Token  string
	Client *bsky.Client
	Cache  *idmap.Cache

	mu      sync.Mutex
	cursors map[string]string
	paths   map[int32]string
}

var _ adapter.StatePort = (*Session)(nil)

func newSession(token string, client *bsky.Client, cache *idmap.Cache) *Session {
	return &Session{
		Token:   token,
		Client:  client,
		Cache:   cache,
		cursors: make(map[string]string),
		paths:   make(map[int32]string),
	}
}

// Data returns the current session blob.
func (s *Session) Data() bsky.SessionData {
	d, _ := s.Client.Session()
	return d
}

func cursorKey(feed string, page int) string {
	return fmt.Sprintf("%s#%d", feed, page)
}

// Cursor returns the upstream cursor that starts page of feed.
func (s *Session) Cursor(feed string, page int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[cursorKey(feed, page)]
	return c, ok
}

// Remember records the cursor that starts page of feed.
func (s *Session) Remember(feed string, page int, cursor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cursors) >= maxCursors {
		s.cursors = make(map[string]string)
	}
	s.cursors[cursorKey(feed, page)] = cursor
}

// CommentPath returns the Lemmy path comment id was last listed under.
func (s *Session) CommentPath(id int32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paths[id]
	return p, ok
}

// RememberPath records the Lemmy path of comment id.
func (s *Session) RememberPath(id int32, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) >= maxPaths {
		s.paths = make(map[int32]string)
	}
	s.paths[id] = path
}
