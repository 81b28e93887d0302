package adapter

import (
	"context"
	"time"

	"github.com/mudkipdev/rephoton/internal/bsky"
)

// RemotePort is the Bluesky capability set the adapter translates.
type RemotePort interface {
	Session() (bsky.SessionData, bool)

	GetTimeline(ctx context.Context, cursor string, limit int) (*bsky.Feed, error)
	GetAuthorFeed(ctx context.Context, actor, cursor string, limit int) (*bsky.Feed, error)
	GetPostThread(ctx context.Context, uri string, depth int) (*bsky.ThreadView, error)
	GetPosts(ctx context.Context, uris []string) ([]bsky.PostView, error)
	SearchPosts(ctx context.Context, text, cursor string, limit int) (*bsky.SearchResult, error)
	GetProfile(ctx context.Context, actor string) (*bsky.ProfileViewDetailed, error)
	ListNotifications(ctx context.Context, cursor string, limit int) (*bsky.Notifications, error)
	GetUnreadCount(ctx context.Context) (int, error)
	UpdateSeen(ctx context.Context, at time.Time) error

	CreatePost(ctx context.Context, text string, reply *bsky.ReplyRef, now time.Time) (bsky.StrongRef, error)
	Like(ctx context.Context, subject bsky.StrongRef, now time.Time) (bsky.StrongRef, error)
	DeleteRecord(ctx context.Context, uri string) error
	CreateReport(ctx context.Context, subject bsky.StrongRef, reason string) error
}

// CursorPort remembers which upstream cursor continues a numbered page, so
// page-based Lemmy clients can page through cursor-based Bluesky feeds.
type CursorPort interface {
	Cursor(feed string, page int) (string, bool)
	Remember(feed string, page int, cursor string)
}

// PathPort remembers the Lemmy path each comment was last shown under, so
// replies and votes outside a thread listing keep the depth the client saw.
type PathPort interface {
	CommentPath(id int32) (string, bool)
	RememberPath(id int32, path string)
}

// StatePort is the per-session state the adapter keeps between requests.
type StatePort interface {
	CursorPort
	PathPort
}

var _ RemotePort = (*bsky.Client)(nil)
