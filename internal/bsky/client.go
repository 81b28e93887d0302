// Package bsky wraps indigo's XRPC client with the Bluesky calls the bridge
// needs, converting lexicon types into the bridge's views and XRPC errors
// into classified errors.
package bsky

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/metrics"
)

// DefaultService is used when no PDS/entryway is configured.
const DefaultService = "https://bsky.social"

const (
	maxPageLimit = 100
	// parents fetched above a thread anchor, the appview default
	threadParentHeight = 80
)

const (
	nsidCreateSession     = "com.atproto.server.createSession"
	nsidRefreshSession    = "com.atproto.server.refreshSession"
	nsidCreateRecord      = "com.atproto.repo.createRecord"
	nsidDeleteRecord      = "com.atproto.repo.deleteRecord"
	nsidCreateReport      = "com.atproto.moderation.createReport"
	nsidGetTimeline       = "app.bsky.feed.getTimeline"
	nsidGetAuthorFeed     = "app.bsky.feed.getAuthorFeed"
	nsidGetPostThread     = "app.bsky.feed.getPostThread"
	nsidGetPosts          = "app.bsky.feed.getPosts"
	nsidSearchPosts       = "app.bsky.feed.searchPosts"
	nsidGetProfile        = "app.bsky.actor.getProfile"
	nsidListNotifications = "app.bsky.notification.listNotifications"
	nsidGetUnreadCount    = "app.bsky.notification.getUnreadCount"
	nsidUpdateSeen        = "app.bsky.notification.updateSeen"
)

// Client speaks XRPC to one service on behalf of at most one account.
type Client struct {
	HTTP    *http.Client
	Service string
	Metrics *metrics.Registry

	mu   sync.RWMutex
	auth *SessionData
}

// NewHTTPClient builds the shared transport used for upstream calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// New returns an unauthenticated client for service.
func New(httpClient *http.Client, service string, reg *metrics.Registry) *Client {
	if service == "" {
		service = DefaultService
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		HTTP:    httpClient,
		Service: strings.TrimRight(service, "/"),
		Metrics: reg,
	}
}

// Session returns the current session blob, if any.
func (c *Client) Session() (SessionData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.auth == nil {
		return SessionData{}, false
	}
	return *c.auth, true
}

// SetSession installs s as the credentials for subsequent calls.
func (c *Client) SetSession(s SessionData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.Service = c.Service
	c.auth = &s
}

// rpc returns an xrpc client bearing token. Each call gets its own, so a
// refresh never races an in-flight request.
func (c *Client) rpc(token string) *xrpc.Client {
	x := &xrpc.Client{Client: c.HTTP, Host: c.Service}
	if token != "" {
		x.Auth = &xrpc.AuthInfo{AccessJwt: token}
	}
	return x
}

func (c *Client) authed(nsid string) (*xrpc.Client, SessionData, error) {
	s, ok := c.Session()
	if !ok || s.AccessJwt == "" {
		return nil, SessionData{}, errors.Unauthenticated(nil, "bsky", nsid)
	}
	x := c.rpc(s.AccessJwt)
	x.Auth.RefreshJwt = s.RefreshJwt
	x.Auth.Did = s.DID
	x.Auth.Handle = s.Handle
	return x, s, nil
}

// call runs one XRPC exchange, classifying its error and recording it.
func (c *Client) call(nsid string, fn func() error) error {
	err := classify(nsid, fn())
	c.Metrics.ObserveUpstream(nsid, err)
	return err
}

// query runs an XRPC query with only the parameters that are set.
func (c *Client) query(ctx context.Context, nsid string, params map[string]any, out any) error {
	x, _, err := c.authed(nsid)
	if err != nil {
		return err
	}
	return c.call(nsid, func() error {
		return x.Do(ctx, xrpc.Query, "", nsid, params, nil, out)
	})
}

func pageParams(cursor string, limit int) map[string]any {
	params := map[string]any{}
	if cursor != "" {
		params["cursor"] = cursor
	}
	if limit > 0 {
		params["limit"] = int64(min(limit, maxPageLimit))
	}
	return params
}

func sessionOf(accessJwt, refreshJwt, handle, did string) SessionData {
	return SessionData{AccessJwt: accessJwt, RefreshJwt: refreshJwt, Handle: handle, DID: did}
}

// CreateSession logs in with a handle (or email) and password.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (SessionData, error) {
	var out *comatproto.ServerCreateSession_Output
	err := c.call(nsidCreateSession, func() (err error) {
		out, err = comatproto.ServerCreateSession(ctx, c.rpc(""), &comatproto.ServerCreateSession_Input{
			Identifier: identifier,
			Password:   password,
		})
		return err
	})
	if err != nil {
		return SessionData{}, err
	}
	s := sessionOf(out.AccessJwt, out.RefreshJwt, out.Handle, out.Did)
	c.SetSession(s)
	s.Service = c.Service
	return s, nil
}

// RefreshSession exchanges the refresh token of s for a new session.
func (c *Client) RefreshSession(ctx context.Context, s SessionData) (SessionData, error) {
	if !s.Resumable() {
		return SessionData{}, errors.Unauthenticated(errors.ErrInvalidSession, "bsky", "RefreshSession")
	}
	var out *comatproto.ServerRefreshSession_Output
	err := c.call(nsidRefreshSession, func() (err error) {
		// refreshSession authenticates with the refresh token
		out, err = comatproto.ServerRefreshSession(ctx, c.rpc(s.RefreshJwt))
		return err
	})
	if err != nil {
		return SessionData{}, err
	}
	next := sessionOf(out.AccessJwt, out.RefreshJwt, out.Handle, out.Did)
	c.SetSession(next)
	next.Service = c.Service
	return next, nil
}

// GetTimeline returns the home timeline.
func (c *Client) GetTimeline(ctx context.Context, cursor string, limit int) (*Feed, error) {
	var out appbsky.FeedGetTimeline_Output
	if err := c.query(ctx, nsidGetTimeline, pageParams(cursor, limit), &out); err != nil {
		return nil, err
	}
	return fromFeed(out.Cursor, out.Feed), nil
}

// GetAuthorFeed returns top-level posts by actor.
func (c *Client) GetAuthorFeed(ctx context.Context, actor, cursor string, limit int) (*Feed, error) {
	params := pageParams(cursor, limit)
	params["actor"] = actor
	params["filter"] = "posts_no_replies"
	var out appbsky.FeedGetAuthorFeed_Output
	if err := c.query(ctx, nsidGetAuthorFeed, params, &out); err != nil {
		return nil, err
	}
	return fromFeed(out.Cursor, out.Feed), nil
}

// GetPostThread returns the thread anchored at uri with its parents and up
// to depth levels of replies.
func (c *Client) GetPostThread(ctx context.Context, uri string, depth int) (*ThreadView, error) {
	params := map[string]any{"uri": uri, "parentHeight": int64(threadParentHeight)}
	if depth > 0 {
		params["depth"] = int64(depth)
	}
	var out appbsky.FeedGetPostThread_Output
	if err := c.query(ctx, nsidGetPostThread, params, &out); err != nil {
		return nil, err
	}
	if out.Thread == nil || out.Thread.FeedDefs_ThreadViewPost == nil {
		return nil, errors.NotFound("bsky", "GetPostThread", uri)
	}
	thread := fromThreadPost(out.Thread.FeedDefs_ThreadViewPost)
	if !thread.Visible() {
		return nil, errors.NotFound("bsky", "GetPostThread", uri)
	}
	return thread, nil
}

// GetPosts hydrates up to 25 posts by uri.
func (c *Client) GetPosts(ctx context.Context, uris []string) ([]PostView, error) {
	x, _, err := c.authed(nsidGetPosts)
	if err != nil {
		return nil, err
	}
	var out *appbsky.FeedGetPosts_Output
	err = c.call(nsidGetPosts, func() (err error) {
		out, err = appbsky.FeedGetPosts(ctx, x, uris)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromPostViews(out.Posts), nil
}

// SearchPosts runs a full-text post search.
func (c *Client) SearchPosts(ctx context.Context, text, cursor string, limit int) (*SearchResult, error) {
	params := pageParams(cursor, limit)
	params["q"] = text
	var out appbsky.FeedSearchPosts_Output
	if err := c.query(ctx, nsidSearchPosts, params, &out); err != nil {
		return nil, err
	}
	return &SearchResult{
		Cursor:    str(out.Cursor),
		HitsTotal: count(out.HitsTotal),
		Posts:     fromPostViews(out.Posts),
	}, nil
}

// GetProfile returns the detailed profile of actor (a handle or DID).
func (c *Client) GetProfile(ctx context.Context, actor string) (*ProfileViewDetailed, error) {
	x, _, err := c.authed(nsidGetProfile)
	if err != nil {
		return nil, err
	}
	var out *appbsky.ActorDefs_ProfileViewDetailed
	err = c.call(nsidGetProfile, func() (err error) {
		out, err = appbsky.ActorGetProfile(ctx, x, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromProfileDetailed(out), nil
}

// ListNotifications returns a page of notifications.
func (c *Client) ListNotifications(ctx context.Context, cursor string, limit int) (*Notifications, error) {
	var out appbsky.NotificationListNotifications_Output
	if err := c.query(ctx, nsidListNotifications, pageParams(cursor, limit), &out); err != nil {
		return nil, err
	}
	page := &Notifications{
		Cursor:        str(out.Cursor),
		Notifications: make([]Notification, 0, len(out.Notifications)),
		SeenAt:        parseTimePtr(out.SeenAt),
	}
	for _, n := range out.Notifications {
		if n != nil {
			page.Notifications = append(page.Notifications, fromNotification(n))
		}
	}
	return page, nil
}

// GetUnreadCount returns the number of unread notifications.
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	var out appbsky.NotificationGetUnreadCount_Output
	if err := c.query(ctx, nsidGetUnreadCount, nil, &out); err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// UpdateSeen marks notifications up to at as read.
func (c *Client) UpdateSeen(ctx context.Context, at time.Time) error {
	x, _, err := c.authed(nsidUpdateSeen)
	if err != nil {
		return err
	}
	return c.call(nsidUpdateSeen, func() error {
		return appbsky.NotificationUpdateSeen(ctx, x, &appbsky.NotificationUpdateSeen_Input{
			SeenAt: at.UTC().Format(time.RFC3339Nano),
		})
	})
}

// CreatePost publishes a post, optionally as a reply.
func (c *Client) CreatePost(ctx context.Context, text string, reply *ReplyRef, now time.Time) (StrongRef, error) {
	return c.createRecord(ctx, CollectionPost, toPostRecord(text, reply, now))
}

// Like creates a like record on subject and returns the like's reference.
func (c *Client) Like(ctx context.Context, subject StrongRef, now time.Time) (StrongRef, error) {
	return c.createRecord(ctx, CollectionLike, &appbsky.FeedLike{
		LexiconTypeID: CollectionLike,
		CreatedAt:     now.UTC().Format(time.RFC3339Nano),
		Subject:       toStrongRef(subject),
	})
}

func (c *Client) createRecord(ctx context.Context, collection string, record lexutil.CBOR) (StrongRef, error) {
	x, s, err := c.authed(nsidCreateRecord)
	if err != nil {
		return StrongRef{}, err
	}
	var out *comatproto.RepoCreateRecord_Output
	err = c.call(nsidCreateRecord, func() (err error) {
		out, err = comatproto.RepoCreateRecord(ctx, x, &comatproto.RepoCreateRecord_Input{
			Repo:       s.DID,
			Collection: collection,
			Record:     &lexutil.LexiconTypeDecoder{Val: record},
		})
		return err
	})
	if err != nil {
		return StrongRef{}, err
	}
	return StrongRef{URI: out.Uri, CID: out.Cid}, nil
}

// DeleteRecord deletes the record at uri from the caller's repo.
func (c *Client) DeleteRecord(ctx context.Context, uri string) error {
	repo, collection, rkey, err := ParseURI(uri)
	if err != nil {
		return err
	}
	x, _, err := c.authed(nsidDeleteRecord)
	if err != nil {
		return err
	}
	in := &comatproto.RepoDeleteRecord_Input{Repo: repo, Collection: collection, Rkey: rkey}
	return c.call(nsidDeleteRecord, func() error {
		// the output (commit meta) is not needed
		return x.Do(ctx, xrpc.Procedure, "application/json", nsidDeleteRecord, nil, in, nil)
	})
}

// CreateReport files a moderation report against subject.
func (c *Client) CreateReport(ctx context.Context, subject StrongRef, reason string) error {
	x, _, err := c.authed(nsidCreateReport)
	if err != nil {
		return err
	}
	reasonType := ReasonOther
	return c.call(nsidCreateReport, func() error {
		_, err := comatproto.ModerationCreateReport(ctx, x, &comatproto.ModerationCreateReport_Input{
			ReasonType: &reasonType,
			Reason:     &reason,
			Subject: &comatproto.ModerationCreateReport_Input_Subject{
				RepoStrongRef: toStrongRef(subject),
			},
		})
		return err
	})
}

// ParseURI splits an at-uri into repo, collection and record key.
func ParseURI(uri string) (repo, collection, rkey string, err error) {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return "", "", "", errors.Invalid("bsky", "ParseURI", "not an at-uri: "+uri)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", errors.Invalid("bsky", "ParseURI", "expected at://repo/collection/rkey: "+uri)
	}
	return parts[0], parts[1], parts[2], nil
}

// classify maps an indigo XRPC error to an error kind. Transport failures
// are remote failures.
func classify(nsid string, err error) error {
	if err == nil {
		return nil
	}
	var xerr *xrpc.Error
	if !errors.As(err, &xerr) {
		return errors.WrapRemote(err, "bsky", nsid, "request")
	}
	var code, msg string
	var body *xrpc.XRPCError
	if errors.As(xerr.Wrapped, &body) {
		code, msg = body.ErrStr, body.Message
	}
	cause := fmt.Errorf("%w: %d %s %s", errors.ErrUpstream, xerr.StatusCode, code, msg)

	switch {
	case xerr.StatusCode == http.StatusUnauthorized,
		code == "AuthMissing", code == "ExpiredToken", code == "InvalidToken",
		code == "AuthenticationRequired", code == "AccountTakedown":
		return errors.Unauthenticated(cause, "bsky", nsid)
	case xerr.StatusCode == http.StatusNotFound, strings.HasSuffix(code, "NotFound"):
		return errors.Wrap(errors.KindNotFound, fmt.Errorf("%w: %w", errors.ErrNotFound, cause), "bsky", nsid, "")
	default:
		return errors.WrapRemote(cause, "bsky", nsid, "xrpc")
	}
}
