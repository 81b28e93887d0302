package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/idmap"
	"github.com/mudkipdev/rephoton/internal/metrics"
)

// restoreTimeout bounds a shared restore, which outlives the caller that
// started it.
const restoreTimeout = 30 * time.Second

// Manager logs accounts in, resumes them from sealed blobs and logs them
// out. It is safe for concurrent use.
type Manager struct {
	store   StorePort
	sealer  *Sealer
	service string
	http    *http.Client
	metrics *metrics.Registry
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	resuming singleflight.Group

	newToken func() string
}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	Service string
	HTTP    *http.Client
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

func NewManager(store StorePort, sealer *Sealer, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Service == "" {
		opts.Service = bsky.DefaultService
	}
	if opts.HTTP == nil {
		opts.HTTP = bsky.NewHTTPClient(10 * time.Second)
	}
	return &Manager{
		store:    store,
		sealer:   sealer,
		service:  opts.Service,
		http:     opts.HTTP,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "session"),
		sessions: make(map[string]*Session),
		newToken: uuid.NewString,
	}
}

// Login creates a Bluesky session and returns it under a new token.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" || password == "" {
		return nil, errors.Invalid("session", "Login", "username and password required")
	}

	client := m.newClient(m.service)
	data, err := client.CreateSession(ctx, username, password)
	if err != nil {
		return nil, errors.WrapRemote(err, "session", "Login", "createSession")
	}

	token := m.newToken()
	if err := m.persist(ctx, token, data); err != nil {
		return nil, err
	}
	s := m.register(token, client)
	m.logger.Info("session created", "handle", data.Handle, "did", data.DID)
	return s, nil
}

// Resume returns the live session for token, restoring it from the store
// and refreshing its credentials when it is not in memory. A restored
// session starts with an empty cache.
func (m *Manager) Resume(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errors.Unauthenticated(nil, "session", "Resume")
	}
	if s, ok := m.lookup(token); ok {
		return s, nil
	}

	// The refresh token rotates, so a restore must run to completion and
	// persist the new one even if every waiting caller has given up.
	ch := m.resuming.DoChan(token, func() (any, error) {
		if s, ok := m.lookup(token); ok {
			return s, nil
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		return m.restore(rctx, token)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, errors.Wrap(errors.KindRemoteFailure, ctx.Err(), "session", "Resume", "")
	}
}

func (m *Manager) restore(ctx context.Context, token string) (*Session, error) {
	sealed, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, errors.ErrSessionNotStored) {
			return nil, errors.Unauthenticated(errors.ErrInvalidSession, "session", "Resume")
		}
		return nil, errors.Wrap(errors.KindRemoteFailure, err, "session", "Resume", "load blob")
	}
	plain, err := m.sealer.Open(token, sealed)
	if err != nil {
		return nil, err
	}
	var data bsky.SessionData
	if err := json.Unmarshal(plain, &data); err != nil || !data.Resumable() {
		return nil, errors.Unauthenticated(errors.ErrInvalidSession, "session", "Resume")
	}

	service := data.Service
	if service == "" {
		service = m.service
	}
	client := m.newClient(service)
	refreshed, err := client.RefreshSession(ctx, data)
	if err != nil {
		if errors.IsUnauthenticated(err) {
			_ = m.store.Delete(ctx, token)
		}
		return nil, errors.WrapRemote(err, "session", "Resume", "refreshSession")
	}
	if err := m.persist(ctx, token, refreshed); err != nil {
		return nil, err
	}

	s := m.register(token, client)
	m.logger.Info("session resumed", "handle", refreshed.Handle, "did", refreshed.DID)
	return s, nil
}

// Logout forgets token in memory and in the store. Unknown tokens are not an
// error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	m.Evict(token)
	if err := m.store.Delete(ctx, token); err != nil {
		return errors.Wrap(errors.KindRemoteFailure, err, "session", "Logout", "delete blob")
	}
	return nil
}

// Evict drops the in-memory session for token and its cache. The stored
// blob stays, so the next Resume refreshes from it.
func (m *Manager) Evict(token string) {
	m.mu.Lock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	n := len(m.sessions)
	m.mu.Unlock()
	if ok {
		m.setActive(n)
	}
}

// Active returns the number of sessions held in memory.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

func (m *Manager) register(token string, client *bsky.Client) *Session {
	opts := []idmap.Option{idmap.WithLogger(m.logger)}
	if m.metrics != nil {
		k := m.metrics.Metrics
		opts = append(opts, idmap.WithCounters(&idmap.Counters{
			Hits:       k.IDMapHits,
			Misses:     k.IDMapMisses,
			Observes:   k.IDMapObserves,
			Collisions: k.IDMapCollisions,
		}))
	}
	s := newSession(token, client, idmap.NewCache(opts...))

	m.mu.Lock()
	m.sessions[token] = s
	n := len(m.sessions)
	m.mu.Unlock()
	m.setActive(n)
	return s
}

func (m *Manager) persist(ctx context.Context, token string, data bsky.SessionData) error {
	plain, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := m.sealer.Seal(token, plain)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, token, sealed); err != nil {
		return errors.Wrap(errors.KindRemoteFailure, err, "session", "persist", "store blob")
	}
	return nil
}

func (m *Manager) newClient(service string) *bsky.Client {
	return bsky.New(m.http, service, m.metrics)
}

func (m *Manager) setActive(n int) {
	if m.metrics != nil {
		m.metrics.Metrics.ActiveSessions.Set(float64(n))
	}
}
