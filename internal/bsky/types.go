package bsky

import "time"

// Record collections and lexicon type ids used by the bridge.
const (
	CollectionPost = "app.bsky.feed.post"
	CollectionLike = "app.bsky.feed.like"

	typeThreadPost   = "app.bsky.feed.defs#threadViewPost"
	typeNotFoundPost = "app.bsky.feed.defs#notFoundPost"
	typeBlockedPost  = "app.bsky.feed.defs#blockedPost"

	typeEmbedImages   = "app.bsky.embed.images#view"
	typeEmbedExternal = "app.bsky.embed.external#view"
	typeEmbedMedia    = "app.bsky.embed.recordWithMedia#view"

	// ReasonOther is the catch-all moderation reason.
	ReasonOther = "com.atproto.moderation.defs#reasonOther"
)

// SessionData is the session blob returned by createSession/refreshSession.
// Callers persist it opaquely and hand it back to resume.
type SessionData struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
	Service    string `json:"service,omitempty"`
}

// Resumable reports whether the blob carries the fields needed to resume.
func (s SessionData) Resumable() bool {
	return s.AccessJwt != "" && s.RefreshJwt != "" && s.DID != ""
}

// The types below are the bridge's flattened view of the lexicon types the
// client decodes. Optional lexicon fields become zero values.

// StrongRef points at one version of a record.
type StrongRef struct {
	URI string
	CID string
}

// ReplyRef is the reply field of a post record.
type ReplyRef struct {
	Root   StrongRef
	Parent StrongRef
}

// ProfileViewBasic is the author of a post or notification.
type ProfileViewBasic struct {
	DID         string
	Handle      string
	DisplayName string
	Avatar      string
}

// ProfileViewDetailed is a full profile.
type ProfileViewDetailed struct {
	ProfileViewBasic
	Description    string
	Banner         string
	FollowersCount int
	FollowsCount   int
	PostsCount     int
	IndexedAt      *time.Time
	CreatedAt      *time.Time
}

// PostRecord is the app.bsky.feed.post record body.
type PostRecord struct {
	Type      string
	Text      string
	CreatedAt string
	Reply     *ReplyRef
	Langs     []string
}

// ViewerState carries the viewer's own interactions with a post.
type ViewerState struct {
	Like   string
	Repost string
}

// Image is one entry of an images embed view.
type Image struct {
	Thumb    string
	Fullsize string
	Alt      string
}

// External is a link card embed view.
type External struct {
	URI         string
	Title       string
	Description string
	Thumb       string
}

// EmbedView is the union of embed views the bridge understands. Other
// embed types carry only Type, or are nil.
type EmbedView struct {
	Type     string
	Images   []Image
	External *External
	Media    *EmbedView
}

// FirstImage returns the first image of an images embed, looking through a
// record-with-media wrapper.
func (e *EmbedView) FirstImage() (Image, bool) {
	if e == nil {
		return Image{}, false
	}
	switch e.Type {
	case typeEmbedImages:
		if len(e.Images) > 0 {
			return e.Images[0], true
		}
	case typeEmbedMedia:
		return e.Media.FirstImage()
	}
	return Image{}, false
}

// Link returns the link card of an external embed, looking through a
// record-with-media wrapper.
func (e *EmbedView) Link() *External {
	if e == nil {
		return nil
	}
	switch e.Type {
	case typeEmbedExternal:
		return e.External
	case typeEmbedMedia:
		return e.Media.Link()
	}
	return nil
}

// PostView is a hydrated post.
type PostView struct {
	URI         string
	CID         string
	Author      ProfileViewBasic
	Record      PostRecord
	Embed       *EmbedView
	ReplyCount  int
	RepostCount int
	LikeCount   int
	IndexedAt   time.Time
	Viewer      *ViewerState
}

// LikeURI returns the viewer's like record uri, if any.
func (p PostView) LikeURI() string {
	if p.Viewer == nil {
		return ""
	}
	return p.Viewer.Like
}

// FeedViewPost is one timeline/author-feed entry.
type FeedViewPost struct {
	Post PostView
}

// Feed is a page of feed entries.
type Feed struct {
	Cursor string
	Feed   []FeedViewPost
}

// ThreadView is a node of a getPostThread result. Blocked or missing nodes
// have no Post.
type ThreadView struct {
	Type     string
	Post     *PostView
	Parent   *ThreadView
	Replies  []*ThreadView
	NotFound bool
	Blocked  bool
}

// Visible reports whether the node carries a readable post.
func (t *ThreadView) Visible() bool {
	return t != nil && t.Post != nil && (t.Type == "" || t.Type == typeThreadPost)
}

// SearchResult is a page of searchPosts hits.
type SearchResult struct {
	Cursor    string
	HitsTotal int
	Posts     []PostView
}

// Notification is one listNotifications entry.
type Notification struct {
	URI           string
	CID           string
	Author        ProfileViewBasic
	Reason        string
	ReasonSubject string
	Record        PostRecord
	IsRead        bool
	IndexedAt     time.Time
}

// Notifications is a page of notifications.
type Notifications struct {
	Cursor        string
	Notifications []Notification
	SeenAt        *time.Time
}
