// Package adapter translates Lemmy v3 operations into Bluesky calls and the
// results back into Lemmy shapes.
//
// Every remote item the adapter sees is recorded in the session's idmap
// cache; every action keyed by a Lemmy id resolves through it. An id that
// was never observed this session fails with NotFound before any remote call.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/idmap"
	"github.com/mudkipdev/rephoton/internal/models"
)

const (
	defaultLimit       = 20
	defaultThreadDepth = 6
	maxThreadDepth     = 100
)

// Service serves one session. It is cheap to build per request.
type Service struct {
	remote RemotePort
	cache  *idmap.Cache
	state  StatePort
	now    func() time.Time
	logger *slog.Logger
}

func New(remote RemotePort, cache *idmap.Cache, state StatePort, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, cache: cache, state: state, now: now, logger: logger}
}

// Unsupported is returned for Lemmy operations Bluesky has no analogue for.
// No remote call is made.
func Unsupported(op string) error {
	return errors.Unsupported("adapter", op)
}

// PageQuery selects a page of a cursor-backed listing. PageCursor wins over
// Page when both are set.
type PageQuery struct {
	PageCursor string
	Page       int
	Limit      int
}

func (q PageQuery) limit() int {
	if q.Limit <= 0 {
		return defaultLimit
	}
	return q.Limit
}

func (q PageQuery) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (s *Service) cursorFor(feed string, q PageQuery) (string, error) {
	if q.PageCursor != "" {
		return q.PageCursor, nil
	}
	if q.page() == 1 || s.state == nil {
		return "", nil
	}
	c, ok := s.state.Cursor(feed, q.page())
	if !ok {
		return "", errors.NotFound("adapter", "cursorFor", fmt.Sprintf("%s page %d", feed, q.page()))
	}
	return c, nil
}

func (s *Service) rememberNext(feed string, q PageQuery, next string) {
	if s.state == nil || next == "" || q.PageCursor != "" {
		return
	}
	s.state.Remember(feed, q.page()+1, next)
}

func (s *Service) observe(p bsky.PostView) int32 {
	return s.cache.Observe(idmap.Ref{URI: p.URI, CID: p.CID, LikeURI: p.LikeURI()})
}

func (s *Service) observeStrong(r bsky.StrongRef) int32 {
	return s.cache.ObserveKeepLike(idmap.Ref{URI: r.URI, CID: r.CID})
}

func (s *Service) liked(id int32) bool {
	ref, err := s.cache.Resolve(id)
	return err == nil && ref.Liked()
}

func strong(r idmap.Ref) bsky.StrongRef {
	return bsky.StrongRef{URI: r.URI, CID: r.CID}
}

// rootOf returns the post id a reply hangs under and its path. Top-level
// posts return their own id.
func (s *Service) rootOf(p bsky.PostView, id int32) (postID int32, path string) {
	reply := p.Record.Reply
	if reply == nil {
		return id, Path(nil, id)
	}
	postID = s.observeStrong(reply.Root)
	if known, ok := s.commentPath(id); ok {
		return postID, known
	}
	if reply.Parent.URI == reply.Root.URI {
		return postID, s.rememberPath(id, Path(nil, id))
	}
	return postID, s.childPath(s.observeStrong(reply.Parent), id)
}

// childPath is the path of comment id replying to comment parentID. The
// parent's full path is used when a listing showed it; otherwise only the
// parent is known.
func (s *Service) childPath(parentID, id int32) string {
	if parent, ok := s.commentPath(parentID); ok {
		return s.rememberPath(id, parent+"."+strconv.Itoa(int(id)))
	}
	return Path([]int32{parentID}, id)
}

func (s *Service) commentPath(id int32) (string, bool) {
	if s.state == nil {
		return "", false
	}
	return s.state.CommentPath(id)
}

func (s *Service) rememberPath(id int32, path string) string {
	if s.state != nil {
		s.state.RememberPath(id, path)
	}
	return path
}

func (s *Service) me() (models.Person, bsky.SessionData, error) {
	sess, ok := s.remote.Session()
	if !ok {
		return models.Person{}, bsky.SessionData{}, errors.Unauthenticated(nil, "adapter", "me")
	}
	p := Person(bsky.ProfileViewBasic{DID: sess.DID, Handle: sess.Handle}, time.Time{})
	return p, sess, nil
}

// ListPosts returns the home timeline as Lemmy posts. Replies are left out;
// they surface as comments under their root.
func (s *Service) ListPosts(ctx context.Context, q PageQuery) (models.GetPostsResponse, error) {
	const feed = "timeline"
	cursor, err := s.cursorFor(feed, q)
	if err != nil {
		return models.GetPostsResponse{}, err
	}
	out, err := s.remote.GetTimeline(ctx, cursor, q.limit())
	if err != nil {
		return models.GetPostsResponse{}, errors.WrapRemote(err, "adapter", "ListPosts", "timeline")
	}
	s.rememberNext(feed, q, out.Cursor)

	posts := make([]models.PostView, 0, len(out.Feed))
	for _, item := range out.Feed {
		if item.Post.Record.Reply != nil {
			continue
		}
		id := s.observe(item.Post)
		posts = append(posts, PostView(item.Post, id, item.Post.LikeURI() != ""))
	}
	return models.GetPostsResponse{Posts: posts, NextPage: out.Cursor}, nil
}

// GetPost returns one post by id, or the post a comment belongs to when
// commentID is set.
func (s *Service) GetPost(ctx context.Context, id int32, commentID *int32) (models.GetPostResponse, error) {
	lookup := id
	if commentID != nil {
		lookup = *commentID
	}
	ref, err := s.cache.Resolve(lookup)
	if err != nil {
		return models.GetPostResponse{}, err
	}

	p, err := s.fetchPost(ctx, ref.URI)
	if err != nil {
		return models.GetPostResponse{}, err
	}
	if commentID != nil && p.Record.Reply != nil {
		if p, err = s.fetchPost(ctx, p.Record.Reply.Root.URI); err != nil {
			return models.GetPostResponse{}, err
		}
	}

	postID := s.observe(p)
	return models.GetPostResponse{
		PostView:   PostView(p, postID, p.LikeURI() != ""),
		Moderators: []any{},
		CrossPosts: []any{},
	}, nil
}

func (s *Service) fetchPost(ctx context.Context, uri string) (bsky.PostView, error) {
	posts, err := s.remote.GetPosts(ctx, []string{uri})
	if err != nil {
		return bsky.PostView{}, errors.WrapRemote(err, "adapter", "fetchPost", "getPosts")
	}
	if len(posts) == 0 {
		return bsky.PostView{}, errors.NotFound("adapter", "fetchPost", uri)
	}
	return posts[0], nil
}

// CommentsQuery selects the comment tree of a post, or the subtree under
// ParentID.
type CommentsQuery struct {
	PostID   *int32
	ParentID *int32
	MaxDepth int
}

// ListComments flattens a Bluesky thread into Lemmy comments with paths.
func (s *Service) ListComments(ctx context.Context, q CommentsQuery) (models.GetCommentsResponse, error) {
	depth := q.MaxDepth
	if depth <= 0 {
		depth = defaultThreadDepth
	}
	if depth > maxThreadDepth {
		depth = maxThreadDepth
	}

	var anchorID int32
	switch {
	case q.ParentID != nil:
		anchorID = *q.ParentID
	case q.PostID != nil:
		anchorID = *q.PostID
	default:
		return models.GetCommentsResponse{}, errors.Invalid("adapter", "ListComments", "post_id or parent_id required")
	}

	ref, err := s.cache.Resolve(anchorID)
	if err != nil {
		return models.GetCommentsResponse{}, err
	}
	thread, err := s.remote.GetPostThread(ctx, ref.URI, depth)
	if err != nil {
		return models.GetCommentsResponse{}, errors.WrapRemote(err, "adapter", "ListComments", "getPostThread")
	}

	comments := make([]models.CommentView, 0)
	anchor := *thread.Post
	id := s.observe(anchor)

	if q.ParentID == nil || anchor.Record.Reply == nil {
		s.flatten(thread, id, nil, 1, depth, &comments)
		return models.GetCommentsResponse{Comments: comments}, nil
	}

	postID := s.observeStrong(anchor.Record.Reply.Root)
	ancestors := s.ancestors(thread, anchor.Record.Reply.Root.URI)
	path := s.rememberPath(id, Path(ancestors, id))
	comments = append(comments, CommentView(anchor, id, postID, path, anchor.LikeURI() != ""))
	s.flatten(thread, postID, append(ancestors, id), 1, depth, &comments)
	return models.GetCommentsResponse{Comments: comments}, nil
}

// ancestors returns the comment ids between the root post and t, root side
// first.
func (s *Service) ancestors(t *bsky.ThreadView, rootURI string) []int32 {
	var chain []int32
	for p := t.Parent; p.Visible() && p.Post.URI != rootURI; p = p.Parent {
		chain = append(chain, s.observe(*p.Post))
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (s *Service) flatten(t *bsky.ThreadView, postID int32, ancestors []int32, depth, maxDepth int, out *[]models.CommentView) {
	for _, r := range t.Replies {
		if !r.Visible() {
			continue
		}
		id := s.observe(*r.Post)
		path := s.rememberPath(id, Path(ancestors, id))
		*out = append(*out, CommentView(*r.Post, id, postID, path, r.Post.LikeURI() != ""))
		if depth < maxDepth {
			next := append(append(make([]int32, 0, len(ancestors)+1), ancestors...), id)
			s.flatten(r, postID, next, depth+1, maxDepth, out)
		}
	}
}

// SearchQuery is a Lemmy search. Only post content is searchable.
type SearchQuery struct {
	PageQuery
	Q    string
	Type string
}

// Search runs a Bluesky post search. Top-level hits become posts, replies
// become comments.
func (s *Service) Search(ctx context.Context, q SearchQuery) (models.SearchResponse, error) {
	typ := q.Type
	if typ == "" {
		typ = "All"
	}
	resp := models.SearchResponse{
		Type:        typ,
		Comments:    []models.CommentView{},
		Posts:       []models.PostView{},
		Communities: []any{},
		Users:       []models.PersonView{},
	}
	if strings.TrimSpace(q.Q) == "" {
		return resp, errors.Invalid("adapter", "Search", "q required")
	}
	if typ != "All" && typ != "Posts" && typ != "Comments" {
		return resp, nil
	}

	feed := "search:" + q.Q
	cursor, err := s.cursorFor(feed, q.PageQuery)
	if err != nil {
		return resp, err
	}
	out, err := s.remote.SearchPosts(ctx, q.Q, cursor, q.limit())
	if err != nil {
		return resp, errors.WrapRemote(err, "adapter", "Search", "searchPosts")
	}
	s.rememberNext(feed, q.PageQuery, out.Cursor)
	resp.NextPage = out.Cursor

	for _, p := range out.Posts {
		id := s.observe(p)
		liked := p.LikeURI() != ""
		if p.Record.Reply == nil {
			if typ != "Comments" {
				resp.Posts = append(resp.Posts, PostView(p, id, liked))
			}
			continue
		}
		if typ != "Posts" {
			postID, path := s.rootOf(p, id)
			resp.Comments = append(resp.Comments, CommentView(p, id, postID, path, liked))
		}
	}
	return resp, nil
}

// PersonQuery looks a person up by handle. Person ids are derived one-way
// and cannot be looked up.
type PersonQuery struct {
	PageQuery
	Username string
	PersonID *int32
}

// GetPersonDetails returns a profile and its recent top-level posts.
func (s *Service) GetPersonDetails(ctx context.Context, q PersonQuery) (models.GetPersonDetailsResponse, error) {
	actor := strings.TrimPrefix(strings.TrimSpace(q.Username), "@")
	if i := strings.IndexByte(actor, '@'); i >= 0 {
		actor = actor[:i]
	}
	if actor == "" {
		if q.PersonID != nil {
			return models.GetPersonDetailsResponse{}, errors.NotFound("adapter", "GetPersonDetails",
				fmt.Sprintf("person %d cannot be looked up by id", *q.PersonID))
		}
		return models.GetPersonDetailsResponse{}, errors.Invalid("adapter", "GetPersonDetails", "username required")
	}

	profile, err := s.remote.GetProfile(ctx, actor)
	if err != nil {
		return models.GetPersonDetailsResponse{}, errors.WrapRemote(err, "adapter", "GetPersonDetails", "getProfile")
	}

	feed := "author:" + profile.DID
	cursor, err := s.cursorFor(feed, q.PageQuery)
	if err != nil {
		return models.GetPersonDetailsResponse{}, err
	}
	out, err := s.remote.GetAuthorFeed(ctx, profile.DID, cursor, q.limit())
	if err != nil {
		return models.GetPersonDetailsResponse{}, errors.WrapRemote(err, "adapter", "GetPersonDetails", "getAuthorFeed")
	}
	s.rememberNext(feed, q.PageQuery, out.Cursor)

	posts := make([]models.PostView, 0, len(out.Feed))
	for _, item := range out.Feed {
		id := s.observe(item.Post)
		posts = append(posts, PostView(item.Post, id, item.Post.LikeURI() != ""))
	}
	return models.GetPersonDetailsResponse{
		PersonView: PersonView(*profile),
		Comments:   []models.CommentView{},
		Posts:      posts,
		Moderates:  []any{},
		NextPage:   out.Cursor,
	}, nil
}

// NotificationsQuery selects a page of replies or mentions.
type NotificationsQuery struct {
	PageQuery
	UnreadOnly bool
}

// GetReplies returns reply notifications as Lemmy comment replies.
func (s *Service) GetReplies(ctx context.Context, q NotificationsQuery) (models.GetRepliesResponse, error) {
	views, err := s.notifications(ctx, q, false, "reply")
	if err != nil {
		return models.GetRepliesResponse{}, err
	}
	return models.GetRepliesResponse{Replies: views}, nil
}

// GetMentions returns mention and quote notifications as Lemmy mentions.
func (s *Service) GetMentions(ctx context.Context, q NotificationsQuery) (models.GetPersonMentionsResponse, error) {
	views, err := s.notifications(ctx, q, true, "mention", "quote")
	if err != nil {
		return models.GetPersonMentionsResponse{}, err
	}
	return models.GetPersonMentionsResponse{Mentions: views}, nil
}

func (s *Service) notifications(ctx context.Context, q NotificationsQuery, mention bool, reasons ...string) ([]models.CommentReplyView, error) {
	recipient, _, err := s.me()
	if err != nil {
		return nil, err
	}

	const feed = "notifications"
	cursor, err := s.cursorFor(feed, q.PageQuery)
	if err != nil {
		return nil, err
	}
	out, err := s.remote.ListNotifications(ctx, cursor, q.limit())
	if err != nil {
		return nil, errors.WrapRemote(err, "adapter", "notifications", "listNotifications")
	}
	s.rememberNext(feed, q.PageQuery, out.Cursor)

	views := make([]models.CommentReplyView, 0, len(out.Notifications))
	for _, n := range out.Notifications {
		if !matches(n.Reason, reasons) || (q.UnreadOnly && n.IsRead) {
			continue
		}
		p := PostViewOf(n)
		id := s.cache.ObserveKeepLike(idmap.Ref{URI: n.URI, CID: n.CID})
		postID, path := s.rootOf(p, id)

		v := ReplyView(n, id, postID, recipient, mention)
		v.Comment.Path = path
		v.MyVote = myVote(s.liked(id))
		views = append(views, v)
	}
	return views, nil
}

func matches(reason string, reasons []string) bool {
	for _, r := range reasons {
		if reason == r {
			return true
		}
	}
	return false
}

// UnreadCount reports unread notifications as replies; Bluesky does not
// split the count by kind.
func (s *Service) UnreadCount(ctx context.Context) (models.GetUnreadCountResponse, error) {
	n, err := s.remote.GetUnreadCount(ctx)
	if err != nil {
		return models.GetUnreadCountResponse{}, errors.WrapRemote(err, "adapter", "UnreadCount", "getUnreadCount")
	}
	return models.GetUnreadCountResponse{Replies: n}, nil
}

// MarkAllRead marks every notification seen.
func (s *Service) MarkAllRead(ctx context.Context) (models.GetRepliesResponse, error) {
	if err := s.remote.UpdateSeen(ctx, s.now()); err != nil {
		return models.GetRepliesResponse{}, errors.WrapRemote(err, "adapter", "MarkAllRead", "updateSeen")
	}
	return models.GetRepliesResponse{Replies: []models.CommentReplyView{}}, nil
}

// MyUser describes the logged-in account for the site response.
func (s *Service) MyUser(ctx context.Context) (*models.MyUserInfo, error) {
	_, sess, err := s.me()
	if err != nil {
		return nil, err
	}
	profile, err := s.remote.GetProfile(ctx, sess.DID)
	if err != nil {
		return nil, errors.WrapRemote(err, "adapter", "MyUser", "getProfile")
	}
	return MyUserInfo(*profile), nil
}

// CreatePost publishes a top-level post. Title, body and url are joined
// into one text; the community is ignored.
func (s *Service) CreatePost(ctx context.Context, req models.CreatePost) (models.PostResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.PostResponse{}, errors.Invalid("adapter", "CreatePost", "name required")
	}
	parts := []string{name}
	if body := strings.TrimSpace(req.Body); body != "" {
		parts = append(parts, body)
	}
	if u := strings.TrimSpace(req.URL); u != "" {
		parts = append(parts, u)
	}

	p, err := s.publish(ctx, strings.Join(parts, "\n\n"), nil)
	if err != nil {
		return models.PostResponse{}, errors.WrapRemote(err, "adapter", "CreatePost", "createRecord")
	}
	id := s.observe(p)
	return models.PostResponse{PostView: PostView(p, id, false)}, nil
}

// CreateComment replies to a post, or to a comment when ParentID is set.
func (s *Service) CreateComment(ctx context.Context, req models.CreateComment) (models.CommentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return models.CommentResponse{}, errors.Invalid("adapter", "CreateComment", "content required")
	}
	root, err := s.cache.Resolve(req.PostID)
	if err != nil {
		return models.CommentResponse{}, err
	}
	parent := root
	if req.ParentID != nil {
		if parent, err = s.cache.Resolve(*req.ParentID); err != nil {
			return models.CommentResponse{}, err
		}
	}

	reply := &bsky.ReplyRef{Root: strong(root), Parent: strong(parent)}
	p, err := s.publish(ctx, req.Content, reply)
	if err != nil {
		return models.CommentResponse{}, errors.WrapRemote(err, "adapter", "CreateComment", "createRecord")
	}
	id := s.observe(p)
	path := s.rememberPath(id, Path(nil, id))
	if req.ParentID != nil {
		path = s.childPath(*req.ParentID, id)
	}
	return models.CommentResponse{
		CommentView:  CommentView(p, id, req.PostID, path, false),
		RecipientIDs: []int32{},
	}, nil
}

// publish creates a post record and returns a view of it built locally; the
// appview may not have indexed it yet.
func (s *Service) publish(ctx context.Context, text string, reply *bsky.ReplyRef) (bsky.PostView, error) {
	_, sess, err := s.me()
	if err != nil {
		return bsky.PostView{}, err
	}
	now := s.now()
	ref, err := s.remote.CreatePost(ctx, text, reply, now)
	if err != nil {
		return bsky.PostView{}, err
	}
	return bsky.PostView{
		URI:    ref.URI,
		CID:    ref.CID,
		Author: bsky.ProfileViewBasic{DID: sess.DID, Handle: sess.Handle},
		Record: bsky.PostRecord{
			Type:      bsky.CollectionPost,
			Text:      text,
			CreatedAt: now.UTC().Format(time.RFC3339Nano),
			Reply:     reply,
		},
		IndexedAt: now.UTC(),
	}, nil
}

// setVote applies a Lemmy vote to the item behind id. Upvotes create a like
// record, anything else removes it. Votes that would not change the like
// state make no remote call.
func (s *Service) setVote(ctx context.Context, op string, id int32, score int) (idmap.Ref, error) {
	ref, err := s.cache.Resolve(id)
	if err != nil {
		return idmap.Ref{}, err
	}

	switch {
	case score > 0 && !ref.Liked():
		like, err := s.remote.Like(ctx, strong(ref), s.now())
		if err != nil {
			return idmap.Ref{}, errors.WrapRemote(err, "adapter", op, "like")
		}
		ref.LikeURI = like.URI
	case score <= 0 && ref.Liked():
		if err := s.remote.DeleteRecord(ctx, ref.LikeURI); err != nil {
			return idmap.Ref{}, errors.WrapRemote(err, "adapter", op, "unlike")
		}
		ref.LikeURI = ""
	default:
		return ref, nil
	}

	if err := s.cache.SetLike(id, ref.LikeURI); err != nil {
		return idmap.Ref{}, err
	}
	return ref, nil
}

// refetch reloads the item behind id after a vote and re-observes it,
// keeping the like marker we just wrote; the appview lags behind writes.
func (s *Service) refetch(ctx context.Context, op string, id int32, ref idmap.Ref) (bsky.PostView, error) {
	p, err := s.fetchPost(ctx, ref.URI)
	if err != nil {
		return bsky.PostView{}, errors.WrapRemote(err, "adapter", op, "refetch")
	}
	s.observe(p)
	if err := s.cache.SetLike(id, ref.LikeURI); err != nil {
		return bsky.PostView{}, err
	}
	return p, nil
}

// LikePost upvotes (score 1) or clears the vote on (score 0 or -1) a post.
func (s *Service) LikePost(ctx context.Context, req models.CreatePostLike) (models.PostResponse, error) {
	ref, err := s.setVote(ctx, "LikePost", req.PostID, req.Score)
	if err != nil {
		return models.PostResponse{}, err
	}
	p, err := s.refetch(ctx, "LikePost", req.PostID, ref)
	if err != nil {
		return models.PostResponse{}, err
	}
	return models.PostResponse{PostView: PostView(p, req.PostID, ref.Liked())}, nil
}

// LikeComment upvotes or clears the vote on a comment.
func (s *Service) LikeComment(ctx context.Context, req models.CreateCommentLike) (models.CommentResponse, error) {
	ref, err := s.setVote(ctx, "LikeComment", req.CommentID, req.Score)
	if err != nil {
		return models.CommentResponse{}, err
	}
	p, err := s.refetch(ctx, "LikeComment", req.CommentID, ref)
	if err != nil {
		return models.CommentResponse{}, err
	}
	postID, path := s.rootOf(p, req.CommentID)
	return models.CommentResponse{
		CommentView:  CommentView(p, req.CommentID, postID, path, ref.Liked()),
		RecipientIDs: []int32{},
	}, nil
}

// deleteOwn deletes the record behind id and forgets the id. Restoring a
// deleted record is not possible on Bluesky.
func (s *Service) deleteOwn(ctx context.Context, op string, id int32, deleted bool) (idmap.Ref, error) {
	if !deleted {
		return idmap.Ref{}, Unsupported(op + ".restore")
	}
	ref, err := s.cache.Resolve(id)
	if err != nil {
		return idmap.Ref{}, err
	}
	_, sess, err := s.me()
	if err != nil {
		return idmap.Ref{}, err
	}
	repo, _, _, err := bsky.ParseURI(ref.URI)
	if err != nil {
		return idmap.Ref{}, err
	}
	if repo != sess.DID {
		return idmap.Ref{}, errors.Invalid("adapter", op, "can only delete your own records")
	}

	if err := s.remote.DeleteRecord(ctx, ref.URI); err != nil {
		return idmap.Ref{}, errors.WrapRemote(err, "adapter", op, "deleteRecord")
	}
	s.cache.Invalidate(id)
	s.logger.Debug("record deleted", "op", op, "id", id, "uri", ref.URI)
	return ref, nil
}

// DeletePost deletes one of the caller's posts.
func (s *Service) DeletePost(ctx context.Context, req models.DeletePost) (models.PostResponse, error) {
	ref, err := s.deleteOwn(ctx, "DeletePost", req.PostID, req.Deleted)
	if err != nil {
		return models.PostResponse{}, err
	}
	creator, _, _ := s.me()
	return models.PostResponse{PostView: models.PostView{
		Post: models.Post{
			ID:        req.PostID,
			CreatorID: creator.ID,
			Deleted:   true,
			Published: s.now().UTC(),
			APID:      WebURL(ref.URI, creator.Name),
			Local:     true,
		},
		Creator:    creator,
		Community:  placeholderCommunity(),
		Counts:     models.PostAggregates{PostID: req.PostID},
		Subscribed: "NotSubscribed",
	}}, nil
}

// DeleteComment deletes one of the caller's replies.
func (s *Service) DeleteComment(ctx context.Context, req models.DeleteComment) (models.CommentResponse, error) {
	ref, err := s.deleteOwn(ctx, "DeleteComment", req.CommentID, req.Deleted)
	if err != nil {
		return models.CommentResponse{}, err
	}
	creator, _, _ := s.me()
	return models.CommentResponse{
		CommentView: models.CommentView{
			Comment: models.Comment{
				ID:        req.CommentID,
				CreatorID: creator.ID,
				Deleted:   true,
				Published: s.now().UTC(),
				APID:      WebURL(ref.URI, creator.Name),
				Local:     true,
				Path:      Path(nil, req.CommentID),
			},
			Creator:    creator,
			Community:  placeholderCommunity(),
			Counts:     models.CommentAggregates{CommentID: req.CommentID},
			Subscribed: "NotSubscribed",
		},
		RecipientIDs: []int32{},
	}, nil
}

func (s *Service) report(ctx context.Context, op string, id int32, reason string) (models.Person, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Person{}, errors.Invalid("adapter", op, "reason required")
	}
	ref, err := s.cache.Resolve(id)
	if err != nil {
		return models.Person{}, err
	}
	reporter, _, err := s.me()
	if err != nil {
		return models.Person{}, err
	}
	if err := s.remote.CreateReport(ctx, strong(ref), reason); err != nil {
		return models.Person{}, errors.WrapRemote(err, "adapter", op, "createReport")
	}
	return reporter, nil
}

// ReportPost files a moderation report against a post.
func (s *Service) ReportPost(ctx context.Context, req models.CreatePostReport) (models.PostReportResponse, error) {
	reporter, err := s.report(ctx, "ReportPost", req.PostID, req.Reason)
	if err != nil {
		return models.PostReportResponse{}, err
	}
	return models.PostReportResponse{PostReport: models.PostReport{
		CreatorID: reporter.ID,
		PostID:    req.PostID,
		Reason:    req.Reason,
		Published: s.now().UTC(),
	}}, nil
}

// ReportComment files a moderation report against a comment.
func (s *Service) ReportComment(ctx context.Context, req models.CreateCommentReport) (models.CommentReportResponse, error) {
	reporter, err := s.report(ctx, "ReportComment", req.CommentID, req.Reason)
	if err != nil {
		return models.CommentReportResponse{}, err
	}
	return models.CommentReportResponse{CommentReport: models.CommentReport{
		CreatorID: reporter.ID,
		CommentID: req.CommentID,
		Reason:    req.Reason,
		Published: s.now().UTC(),
	}}, nil
}
