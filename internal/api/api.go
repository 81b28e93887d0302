package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/mudkipdev/rephoton/internal/adapter"
	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/models"
	"github.com/mudkipdev/rephoton/internal/session"
)

// LemmyVersion is the Lemmy API version the bridge reports.
const LemmyVersion = "0.19.5"

// API is the application-facing facade. All callers (HTTP, CLI, tests) go
// through this.
type API struct {
	sessions  *session.Manager
	siteName  string
	now       func() time.Time
	logger    *slog.Logger
	startedAt time.Time
}

func New(sessions *session.Manager, siteName string, now func() time.Time, logger *slog.Logger) *API {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		sessions:  sessions,
		siteName:  siteName,
		now:       now,
		logger:    logger.With("component", "api"),
		startedAt: now(),
	}
}

// Health responds with the health status of the app.
func (a *API) Health() map[string]any {
	return map[string]any{
		"app":       "rephoton",
		"startedAt": a.startedAt.Format(time.RFC3339),
		"sessions":  a.sessions.Active(),
		"status":    "ok",
	}
}

// Login exchanges Bluesky credentials for a bearer token.
func (a *API) Login(ctx context.Context, req models.Login) (models.LoginResponse, error) {
	s, err := a.sessions.Login(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{JWT: s.Token}, nil
}

// Logout ends the session behind token.
func (a *API) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errors.Unauthenticated(nil, "api", "Logout")
	}
	return a.sessions.Logout(ctx, token)
}

// Site returns the site description. Anonymous callers, and callers whose
// token no longer resumes, get it without my_user.
func (a *API) Site(ctx context.Context, token string) (models.GetSiteResponse, error) {
	if token == "" {
		return adapter.Site(a.siteName, LemmyVersion, nil), nil
	}
	var me *models.MyUserInfo
	err := a.With(ctx, token, func(svc *adapter.Service) error {
		var err error
		me, err = svc.MyUser(ctx)
		return err
	})
	if err != nil {
		if !errors.IsUnauthenticated(err) {
			return models.GetSiteResponse{}, err
		}
		a.logger.Debug("site requested with stale token", "error", err)
	}
	return adapter.Site(a.siteName, LemmyVersion, me), nil
}

// With resolves token to a session and runs fn against an adapter bound to
// it. When the remote rejects the session's credentials, the session is
// evicted from memory so the next request refreshes it from the store.
func (a *API) With(ctx context.Context, token string, fn func(*adapter.Service) error) error {
	s, err := a.sessions.Resume(ctx, token)
	if err != nil {
		return err
	}
	svc := adapter.New(s.Client, s.Cache, s, a.now, a.logger)
	err = fn(svc)
	if errors.IsUnauthenticated(err) {
		a.logger.Info("session credentials rejected, evicting", "did", s.Data().DID)
		a.sessions.Evict(token)
	}
	return err
}
