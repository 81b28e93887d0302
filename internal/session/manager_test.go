package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/idmap"
	"github.com/mudkipdev/rephoton/internal/metrics"
)

// fakePDS answers createSession and refreshSession. Refresh tokens rotate on
// every refresh.
type fakePDS struct {
	refreshes atomic.Int32
	rejectAll atomic.Bool
}

func (f *fakePDS) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrpc/com.atproto.server.createSession":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in["password"] != "hunter2" || f.rejectAll.Load() {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"AuthenticationRequired","message":"Invalid identifier or password"}`))
				return
			}
			_, _ = w.Write([]byte(`{"accessJwt":"a0","refreshJwt":"r0","handle":"me.bsky.social","did":"did:plc:me"}`))
		case "/xrpc/com.atproto.server.refreshSession":
			if f.rejectAll.Load() {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"ExpiredToken","message":"Token has expired"}`))
				return
			}
			n := f.refreshes.Add(1)
			time.Sleep(20 * time.Millisecond)
			_ = json.NewEncoder(w).Encode(bsky.SessionData{
				AccessJwt:  "a" + string(rune('0'+n)),
				RefreshJwt: "r" + string(rune('0'+n)),
				Handle:     "me.bsky.social",
				DID:        "did:plc:me",
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestManager(t *testing.T, pds *fakePDS, store StorePort) (*Manager, *metrics.Registry) {
	t.Helper()
	srv := httptest.NewServer(pds.handler(t))
	t.Cleanup(srv.Close)

	sealer, err := NewSealer(testMasterKey)
	require.NoError(t, err)
	reg := metrics.NewRegistry()
	m := NewManager(store, sealer, Options{Service: srv.URL, Metrics: reg})
	return m, reg
}

func TestManager_LoginPersistsSealedBlob(t *testing.T) {
	store := NewMemoryStore()
	m, reg := newTestManager(t, &fakePDS{}, store)
	m.newToken = func() string { return "tok-1" }

	s, err := m.Login(context.Background(), "@me.bsky.social", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "did:plc:me", s.Data().DID)
	assert.Equal(t, 0, s.Cache.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Metrics.ActiveSessions))

	blob, err := store.Get(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "did:plc:me")

	again, err := m.Resume(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestManager_LoginBadPassword(t *testing.T) {
	m, _ := newTestManager(t, &fakePDS{}, NewMemoryStore())

	_, err := m.Login(context.Background(), "me", "wrong")
	assert.True(t, errors.IsUnauthenticated(err))

	_, err = m.Login(context.Background(), "", "")
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
	assert.Equal(t, 0, m.Active())
}

func TestManager_ResumeAfterEvictRefreshesWithEmptyCache(t *testing.T) {
	pds := &fakePDS{}
	store := NewMemoryStore()
	m, _ := newTestManager(t, pds, store)
	ctx := context.Background()

	s, err := m.Login(ctx, "me.bsky.social", "hunter2")
	require.NoError(t, err)
	s.Cache.Observe(idmap.Ref{URI: "at://did:plc:a/app.bsky.feed.post/x"})

	m.Evict(s.Token)
	assert.Equal(t, 0, m.Active())

	resumed, err := m.Resume(ctx, s.Token)
	require.NoError(t, err)
	assert.NotSame(t, s, resumed)
	assert.Equal(t, 0, resumed.Cache.Len(), "a resumed session starts empty")
	assert.Equal(t, "a1", resumed.Data().AccessJwt)
	assert.Equal(t, int32(1), pds.refreshes.Load())

	// the rotated refresh token was written back
	m.Evict(s.Token)
	resumed, err = m.Resume(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, "a2", resumed.Data().AccessJwt)
}

func TestManager_ConcurrentResumeRefreshesOnce(t *testing.T) {
	pds := &fakePDS{}
	m, _ := newTestManager(t, pds, NewMemoryStore())
	ctx := context.Background()

	s, err := m.Login(ctx, "me.bsky.social", "hunter2")
	require.NoError(t, err)
	m.Evict(s.Token)

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = m.Resume(ctx, s.Token)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), pds.refreshes.Load())
	for _, g := range got {
		require.NotNil(t, g)
		assert.Same(t, got[0], g)
	}
}

func TestManager_ResumeSurvivesCancelledCaller(t *testing.T) {
	pds := &fakePDS{}
	store := NewMemoryStore()
	m, _ := newTestManager(t, pds, store)

	s, err := m.Login(context.Background(), "me.bsky.social", "hunter2")
	require.NoError(t, err)
	m.Evict(s.Token)

	first, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var firstErr, secondErr error
	var second *Session
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, firstErr = m.Resume(first, s.Token)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(2 * time.Millisecond)
		second, secondErr = m.Resume(context.Background(), s.Token)
	}()
	time.Sleep(7 * time.Millisecond)
	cancel()
	wg.Wait()

	require.NoError(t, secondErr)
	require.NotNil(t, second)
	assert.Equal(t, "r1", second.Data().RefreshJwt)
	if firstErr != nil {
		assert.ErrorIs(t, firstErr, context.Canceled)
	}
	assert.Equal(t, int32(1), pds.refreshes.Load())

	// the rotated refresh token reached the store
	blob, err := store.Get(context.Background(), s.Token)
	require.NoError(t, err)
	plain, err := m.sealer.Open(s.Token, blob)
	require.NoError(t, err)
	var data bsky.SessionData
	require.NoError(t, json.Unmarshal(plain, &data))
	assert.Equal(t, "r1", data.RefreshJwt)
}

func TestManager_ResumeUnknownAndEmpty(t *testing.T) {
	m, _ := newTestManager(t, &fakePDS{}, NewMemoryStore())

	_, err := m.Resume(context.Background(), "")
	assert.True(t, errors.IsUnauthenticated(err))

	_, err = m.Resume(context.Background(), "never-issued")
	assert.True(t, errors.IsUnauthenticated(err))
}

func TestManager_ResumeIncompleteBlob(t *testing.T) {
	store := NewMemoryStore()
	m, _ := newTestManager(t, &fakePDS{}, store)

	plain, _ := json.Marshal(bsky.SessionData{AccessJwt: "a", DID: "did:plc:me"})
	sealed, err := m.sealer.Seal("tok", plain)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "tok", sealed))

	_, err = m.Resume(context.Background(), "tok")
	assert.True(t, errors.IsUnauthenticated(err))
	assert.ErrorIs(t, err, errors.ErrInvalidSession)
}

func TestManager_ResumeRejectedDropsBlob(t *testing.T) {
	pds := &fakePDS{}
	store := NewMemoryStore()
	m, _ := newTestManager(t, pds, store)
	ctx := context.Background()

	s, err := m.Login(ctx, "me.bsky.social", "hunter2")
	require.NoError(t, err)
	m.Evict(s.Token)
	pds.rejectAll.Store(true)

	_, err = m.Resume(ctx, s.Token)
	assert.True(t, errors.IsUnauthenticated(err))

	_, err = store.Get(ctx, s.Token)
	assert.ErrorIs(t, err, errors.ErrSessionNotStored)
}

func TestManager_Logout(t *testing.T) {
	store := NewMemoryStore()
	m, _ := newTestManager(t, &fakePDS{}, store)
	ctx := context.Background()

	s, err := m.Login(ctx, "me.bsky.social", "hunter2")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, s.Token))
	assert.Equal(t, 0, m.Active())
	_, err = m.Resume(ctx, s.Token)
	assert.True(t, errors.IsUnauthenticated(err))

	// idempotent
	assert.NoError(t, m.Logout(ctx, s.Token))
}

func TestSession_Cursors(t *testing.T) {
	s := newSession("tok", bsky.New(nil, "", nil), idmap.NewCache())

	_, ok := s.Cursor("timeline", 2)
	assert.False(t, ok)

	s.Remember("timeline", 2, "c2")
	c, ok := s.Cursor("timeline", 2)
	require.True(t, ok)
	assert.Equal(t, "c2", c)

	_, ok = s.Cursor("notifications", 2)
	assert.False(t, ok)
}

func TestSession_CommentPaths(t *testing.T) {
	s := newSession("tok", bsky.New(nil, "", nil), idmap.NewCache())

	_, ok := s.CommentPath(7)
	assert.False(t, ok)

	s.RememberPath(7, "0.3.7")
	p, ok := s.CommentPath(7)
	require.True(t, ok)
	assert.Equal(t, "0.3.7", p)
}
