package adapter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/errors"
	"github.com/mudkipdev/rephoton/internal/idmap"
	"github.com/mudkipdev/rephoton/internal/models"
)

const meDID = "did:plc:me"

// fakeRemote records every call and serves canned responses.
type fakeRemote struct {
	calls []string

	timeline      map[string]*bsky.Feed
	posts         map[string]bsky.PostView
	thread        *bsky.ThreadView
	search        *bsky.SearchResult
	profile       *bsky.ProfileViewDetailed
	authorFeed    *bsky.Feed
	notifications *bsky.Notifications
	unread        int
	err           error

	nextLike int
	deleted  []string
	reported []bsky.StrongRef
	created  []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{posts: map[string]bsky.PostView{}, timeline: map[string]*bsky.Feed{}}
}

func (f *fakeRemote) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeRemote) Session() (bsky.SessionData, bool) {
	return bsky.SessionData{AccessJwt: "a", RefreshJwt: "r", Handle: "me.bsky.social", DID: meDID}, true
}

func (f *fakeRemote) GetTimeline(_ context.Context, cursor string, _ int) (*bsky.Feed, error) {
	f.record("GetTimeline:" + cursor)
	if f.err != nil {
		return nil, f.err
	}
	return f.timeline[cursor], nil
}

func (f *fakeRemote) GetAuthorFeed(_ context.Context, actor, _ string, _ int) (*bsky.Feed, error) {
	f.record("GetAuthorFeed:" + actor)
	return f.authorFeed, f.err
}

func (f *fakeRemote) GetPostThread(_ context.Context, uri string, _ int) (*bsky.ThreadView, error) {
	f.record("GetPostThread:" + uri)
	return f.thread, f.err
}

func (f *fakeRemote) GetPosts(_ context.Context, uris []string) ([]bsky.PostView, error) {
	f.record("GetPosts")
	var out []bsky.PostView
	for _, u := range uris {
		if p, ok := f.posts[u]; ok {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeRemote) SearchPosts(_ context.Context, text, _ string, _ int) (*bsky.SearchResult, error) {
	f.record("SearchPosts:" + text)
	return f.search, f.err
}

func (f *fakeRemote) GetProfile(_ context.Context, actor string) (*bsky.ProfileViewDetailed, error) {
	f.record("GetProfile:" + actor)
	return f.profile, f.err
}

func (f *fakeRemote) ListNotifications(context.Context, string, int) (*bsky.Notifications, error) {
	f.record("ListNotifications")
	return f.notifications, f.err
}

func (f *fakeRemote) GetUnreadCount(context.Context) (int, error) {
	f.record("GetUnreadCount")
	return f.unread, f.err
}

func (f *fakeRemote) UpdateSeen(context.Context, time.Time) error {
	f.record("UpdateSeen")
	return f.err
}

func (f *fakeRemote) CreatePost(_ context.Context, text string, _ *bsky.ReplyRef, _ time.Time) (bsky.StrongRef, error) {
	f.record("CreatePost")
	if f.err != nil {
		return bsky.StrongRef{}, f.err
	}
	f.created = append(f.created, text)
	return bsky.StrongRef{URI: fmt.Sprintf("at://%s/app.bsky.feed.post/new%d", meDID, len(f.created)), CID: "bafynew"}, nil
}

func (f *fakeRemote) Like(context.Context, bsky.StrongRef, time.Time) (bsky.StrongRef, error) {
	f.record("Like")
	if f.err != nil {
		return bsky.StrongRef{}, f.err
	}
	f.nextLike++
	return bsky.StrongRef{URI: fmt.Sprintf("at://%s/app.bsky.feed.like/l%d", meDID, f.nextLike), CID: "bafylike"}, nil
}

func (f *fakeRemote) DeleteRecord(_ context.Context, uri string) error {
	f.record("DeleteRecord")
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, uri)
	return nil
}

func (f *fakeRemote) CreateReport(_ context.Context, subject bsky.StrongRef, _ string) error {
	f.record("CreateReport")
	f.reported = append(f.reported, subject)
	return f.err
}

type memState struct {
	cursors map[string]string
	paths   map[int32]string
}

func newMemState() *memState {
	return &memState{cursors: map[string]string{}, paths: map[int32]string{}}
}

func (m *memState) Cursor(feed string, page int) (string, bool) {
	c, ok := m.cursors[fmt.Sprintf("%s#%d", feed, page)]
	return c, ok
}

func (m *memState) Remember(feed string, page int, cursor string) {
	m.cursors[fmt.Sprintf("%s#%d", feed, page)] = cursor
}

func (m *memState) CommentPath(id int32) (string, bool) {
	p, ok := m.paths[id]
	return p, ok
}

func (m *memState) RememberPath(id int32, path string) { m.paths[id] = path }

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func newService(remote *fakeRemote) (*Service, *idmap.Cache) {
	cache := idmap.NewCache()
	return New(remote, cache, newMemState(), fixedNow, nil), cache
}

func post(repo, rkey, text string) bsky.PostView {
	return bsky.PostView{
		URI:    fmt.Sprintf("at://%s/app.bsky.feed.post/%s", repo, rkey),
		CID:    "cid-" + rkey,
		Author: bsky.ProfileViewBasic{DID: repo, Handle: repo + ".test"},
		Record: bsky.PostRecord{Text: text, CreatedAt: "2024-01-01T00:00:00Z"},
	}
}

func replyTo(p bsky.PostView, root, parent bsky.PostView) bsky.PostView {
	p.Record.Reply = &bsky.ReplyRef{
		Root:   bsky.StrongRef{URI: root.URI, CID: root.CID},
		Parent: bsky.StrongRef{URI: parent.URI, CID: parent.CID},
	}
	return p
}

func liked(p bsky.PostView, like string) bsky.PostView {
	p.Viewer = &bsky.ViewerState{Like: like}
	return p
}

func TestService_ListPostsObservesAndSkipsReplies(t *testing.T) {
	remote := newFakeRemote()
	top := liked(post("did:plc:a", "p1", "hello"), "at://did:plc:me/app.bsky.feed.like/x")
	reply := replyTo(post("did:plc:b", "r1", "hi"), top, top)
	remote.timeline[""] = &bsky.Feed{Cursor: "c2", Feed: []bsky.FeedViewPost{{Post: top}, {Post: reply}}}
	svc, cache := newService(remote)

	resp, err := svc.ListPosts(context.Background(), PageQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "c2", resp.NextPage)

	id := resp.Posts[0].Post.ID
	assert.Equal(t, idmap.Derive(top.URI), id)
	assert.Equal(t, 1, *resp.Posts[0].MyVote)

	ref, err := cache.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, top.URI, ref.URI)
	assert.True(t, ref.Liked())
}

func TestService_ListPostsPaging(t *testing.T) {
	remote := newFakeRemote()
	remote.timeline[""] = &bsky.Feed{Cursor: "c2", Feed: []bsky.FeedViewPost{{Post: post("did:plc:a", "p1", "one")}}}
	remote.timeline["c2"] = &bsky.Feed{Feed: []bsky.FeedViewPost{{Post: post("did:plc:a", "p2", "two")}}}
	svc, _ := newService(remote)
	ctx := context.Background()

	_, err := svc.ListPosts(ctx, PageQuery{Page: 3})
	assert.True(t, errors.IsNotFound(err), "page 3 before page 2 is unknown")

	_, err = svc.ListPosts(ctx, PageQuery{Page: 1})
	require.NoError(t, err)

	resp, err := svc.ListPosts(ctx, PageQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "two", resp.Posts[0].Post.Name)

	resp, err = svc.ListPosts(ctx, PageQuery{PageCursor: "c2", Page: 7})
	require.NoError(t, err)
	assert.Len(t, resp.Posts, 1)
}

func TestService_ListPostsRemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.err = errors.Wrap(errors.KindRemoteFailure, errors.ErrUpstream, "bsky", "getTimeline", "502")
	svc, _ := newService(remote)

	_, err := svc.ListPosts(context.Background(), PageQuery{})
	assert.True(t, errors.IsRemoteFailure(err))
}

func TestService_LikeUnobservedIsNotFoundWithoutRemoteCall(t *testing.T) {
	remote := newFakeRemote()
	svc, _ := newService(remote)

	_, err := svc.LikePost(context.Background(), models.CreatePostLike{PostID: 424242, Score: 1})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "please refresh")
	assert.Empty(t, remote.calls)
}

func TestService_LikeAndUnlikePost(t *testing.T) {
	remote := newFakeRemote()
	p := post("did:plc:a", "p1", "hello")
	remote.posts[p.URI] = p
	svc, cache := newService(remote)
	id := cache.Observe(idmap.Ref{URI: p.URI, CID: p.CID})
	ctx := context.Background()

	resp, err := svc.LikePost(ctx, models.CreatePostLike{PostID: id, Score: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, *resp.PostView.MyVote)
	assert.Equal(t, []string{"Like", "GetPosts"}, remote.calls)

	ref, _ := cache.Resolve(id)
	assert.Equal(t, "at://did:plc:me/app.bsky.feed.like/l1", ref.LikeURI, "lagging appview must not clear the marker")
	assert.Equal(t, p.CID, ref.CID)

	// liking again is a no-op upstream
	remote.calls = nil
	_, err = svc.LikePost(ctx, models.CreatePostLike{PostID: id, Score: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"GetPosts"}, remote.calls)

	remote.calls = nil
	resp, err = svc.LikePost(ctx, models.CreatePostLike{PostID: id, Score: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, *resp.PostView.MyVote)
	assert.Equal(t, []string{"at://did:plc:me/app.bsky.feed.like/l1"}, remote.deleted)

	ref, _ = cache.Resolve(id)
	assert.False(t, ref.Liked())
}

func TestService_DownvoteClearsLike(t *testing.T) {
	remote := newFakeRemote()
	p := post("did:plc:a", "p1", "hello")
	remote.posts[p.URI] = p
	svc, cache := newService(remote)
	id := cache.Observe(idmap.Ref{URI: p.URI, CID: p.CID, LikeURI: "at://did:plc:me/app.bsky.feed.like/old"})

	_, err := svc.LikePost(context.Background(), models.CreatePostLike{PostID: id, Score: -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"at://did:plc:me/app.bsky.feed.like/old"}, remote.deleted)
}

func TestService_LikeCommentPath(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "post")
	parent := replyTo(post("did:plc:b", "c1", "first"), root, root)
	child := replyTo(post("did:plc:c", "c2", "second"), root, parent)
	remote.posts[child.URI] = child
	svc, cache := newService(remote)
	id := cache.Observe(idmap.Ref{URI: child.URI, CID: child.CID})

	resp, err := svc.LikeComment(context.Background(), models.CreateCommentLike{CommentID: id, Score: 1})
	require.NoError(t, err)
	assert.Equal(t, idmap.Derive(root.URI), resp.CommentView.Comment.PostID)
	assert.Equal(t, Path([]int32{idmap.Derive(parent.URI)}, id), resp.CommentView.Comment.Path)
	assert.Equal(t, 1, *resp.CommentView.MyVote)
}

func TestService_ListCommentsFlattensThread(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "post")
	c1 := replyTo(post("did:plc:b", "c1", "first"), root, root)
	c2 := replyTo(post("did:plc:c", "c2", "second"), root, c1)
	c3 := replyTo(post("did:plc:d", "c3", "third"), root, root)
	remote.thread = &bsky.ThreadView{Post: &root, Replies: []*bsky.ThreadView{
		{Post: &c1, Replies: []*bsky.ThreadView{{Post: &c2}}},
		{Type: "app.bsky.feed.defs#blockedPost", Blocked: true},
		{Post: &c3},
	}}
	svc, cache := newService(remote)
	postID := cache.Observe(idmap.Ref{URI: root.URI, CID: root.CID})

	resp, err := svc.ListComments(context.Background(), CommentsQuery{PostID: &postID})
	require.NoError(t, err)
	require.Len(t, resp.Comments, 3)

	id1, id2, id3 := idmap.Derive(c1.URI), idmap.Derive(c2.URI), idmap.Derive(c3.URI)
	assert.Equal(t, Path(nil, id1), resp.Comments[0].Comment.Path)
	assert.Equal(t, Path([]int32{id1}, id2), resp.Comments[1].Comment.Path)
	assert.Equal(t, Path(nil, id3), resp.Comments[2].Comment.Path)
	for _, c := range resp.Comments {
		assert.Equal(t, postID, c.Comment.PostID)
	}

	// replies are now actionable
	_, err = cache.Resolve(id2)
	assert.NoError(t, err)
}

func TestService_ListCommentsMaxDepth(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "post")
	c1 := replyTo(post("did:plc:b", "c1", "first"), root, root)
	c2 := replyTo(post("did:plc:c", "c2", "second"), root, c1)
	remote.thread = &bsky.ThreadView{Post: &root, Replies: []*bsky.ThreadView{
		{Post: &c1, Replies: []*bsky.ThreadView{{Post: &c2}}},
	}}
	svc, cache := newService(remote)
	postID := cache.Observe(idmap.Ref{URI: root.URI})

	resp, err := svc.ListComments(context.Background(), CommentsQuery{PostID: &postID, MaxDepth: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Comments, 1)
}

func TestService_ListCommentsUnderParent(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "post")
	c1 := replyTo(post("did:plc:b", "c1", "first"), root, root)
	c2 := replyTo(post("did:plc:c", "c2", "second"), root, c1)
	c3 := replyTo(post("did:plc:d", "c3", "third"), root, c2)
	remote.thread = &bsky.ThreadView{
		Post:    &c2,
		Parent:  &bsky.ThreadView{Post: &c1, Parent: &bsky.ThreadView{Post: &root}},
		Replies: []*bsky.ThreadView{{Post: &c3}},
	}
	svc, cache := newService(remote)
	parentID := cache.Observe(idmap.Ref{URI: c2.URI})

	resp, err := svc.ListComments(context.Background(), CommentsQuery{ParentID: &parentID})
	require.NoError(t, err)
	require.Len(t, resp.Comments, 2)

	id1, id3 := idmap.Derive(c1.URI), idmap.Derive(c3.URI)
	assert.Equal(t, Path([]int32{id1}, parentID), resp.Comments[0].Comment.Path)
	assert.Equal(t, Path([]int32{id1, parentID}, id3), resp.Comments[1].Comment.Path)
	assert.Equal(t, idmap.Derive(root.URI), resp.Comments[1].Comment.PostID)
}

func TestService_ListCommentsNeedsAnchor(t *testing.T) {
	svc, _ := newService(newFakeRemote())
	_, err := svc.ListComments(context.Background(), CommentsQuery{})
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
}

func TestService_GetPostByComment(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "the post")
	c1 := replyTo(post("did:plc:b", "c1", "reply"), root, root)
	remote.posts[root.URI] = root
	remote.posts[c1.URI] = c1
	svc, cache := newService(remote)
	commentID := cache.Observe(idmap.Ref{URI: c1.URI})

	resp, err := svc.GetPost(context.Background(), 0, &commentID)
	require.NoError(t, err)
	assert.Equal(t, "the post", resp.PostView.Post.Name)
	assert.Equal(t, idmap.Derive(root.URI), resp.PostView.Post.ID)
}

func TestService_CreatePostJoinsFields(t *testing.T) {
	remote := newFakeRemote()
	svc, cache := newService(remote)

	resp, err := svc.CreatePost(context.Background(), models.CreatePost{Name: "Title", Body: "body text", URL: "https://x.test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Title\n\nbody text\n\nhttps://x.test"}, remote.created)
	assert.Equal(t, "Title", resp.PostView.Post.Name)
	assert.Equal(t, "me.bsky.social", resp.PostView.Creator.Name)

	_, err = cache.Resolve(resp.PostView.Post.ID)
	assert.NoError(t, err)

	_, err = svc.CreatePost(context.Background(), models.CreatePost{Name: "  "})
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
}

func TestService_CreateComment(t *testing.T) {
	remote := newFakeRemote()
	svc, cache := newService(remote)
	root := post("did:plc:a", "root", "post")
	c1 := replyTo(post("did:plc:b", "c1", "first"), root, root)
	postID := cache.Observe(idmap.Ref{URI: root.URI, CID: root.CID})
	parentID := cache.Observe(idmap.Ref{URI: c1.URI, CID: c1.CID})

	resp, err := svc.CreateComment(context.Background(), models.CreateComment{Content: "hi", PostID: postID, ParentID: &parentID})
	require.NoError(t, err)
	id := resp.CommentView.Comment.ID
	assert.Equal(t, Path([]int32{parentID}, id), resp.CommentView.Comment.Path)
	assert.Equal(t, postID, resp.CommentView.Comment.PostID)

	_, err = svc.CreateComment(context.Background(), models.CreateComment{Content: "hi", PostID: 1})
	assert.True(t, errors.IsNotFound(err))
}

func TestService_DeepCommentKeepsListedPath(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "post")
	c1 := replyTo(post("did:plc:b", "c1", "first"), root, root)
	c2 := replyTo(post("did:plc:c", "c2", "second"), root, c1)
	c3 := replyTo(post("did:plc:d", "c3", "third"), root, c2)
	remote.thread = &bsky.ThreadView{Post: &root, Replies: []*bsky.ThreadView{
		{Post: &c1, Replies: []*bsky.ThreadView{
			{Post: &c2, Replies: []*bsky.ThreadView{{Post: &c3}}},
		}},
	}}
	remote.posts[c3.URI] = c3
	svc, cache := newService(remote)
	postID := cache.Observe(idmap.Ref{URI: root.URI, CID: root.CID})

	listed, err := svc.ListComments(context.Background(), CommentsQuery{PostID: &postID})
	require.NoError(t, err)
	require.Len(t, listed.Comments, 3)
	id1, id2, id3 := idmap.Derive(c1.URI), idmap.Derive(c2.URI), idmap.Derive(c3.URI)
	deepPath := Path([]int32{id1, id2}, id3)
	assert.Equal(t, deepPath, listed.Comments[2].Comment.Path)

	// a reply to the depth-3 comment lands at depth 4
	created, err := svc.CreateComment(context.Background(), models.CreateComment{Content: "fourth", PostID: postID, ParentID: &id3})
	require.NoError(t, err)
	newID := created.CommentView.Comment.ID
	assert.Equal(t, Path([]int32{id1, id2, id3}, newID), created.CommentView.Comment.Path)

	// voting keeps the path the listing produced
	voted, err := svc.LikeComment(context.Background(), models.CreateCommentLike{CommentID: id3, Score: 1})
	require.NoError(t, err)
	assert.Equal(t, deepPath, voted.CommentView.Comment.Path)
}

func TestService_DeletePost(t *testing.T) {
	remote := newFakeRemote()
	svc, cache := newService(remote)
	mine := post(meDID, "mine", "x")
	theirs := post("did:plc:other", "theirs", "y")
	mineID := cache.Observe(idmap.Ref{URI: mine.URI})
	theirID := cache.Observe(idmap.Ref{URI: theirs.URI})
	ctx := context.Background()

	_, err := svc.DeletePost(ctx, models.DeletePost{PostID: mineID, Deleted: false})
	assert.True(t, errors.IsUnsupported(err))

	_, err = svc.DeletePost(ctx, models.DeletePost{PostID: theirID, Deleted: true})
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
	assert.Empty(t, remote.calls)

	resp, err := svc.DeletePost(ctx, models.DeletePost{PostID: mineID, Deleted: true})
	require.NoError(t, err)
	assert.True(t, resp.PostView.Post.Deleted)
	assert.Equal(t, []string{mine.URI}, remote.deleted)

	_, err = cache.Resolve(mineID)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_ReportComment(t *testing.T) {
	remote := newFakeRemote()
	svc, cache := newService(remote)
	c := post("did:plc:b", "c1", "bad")
	id := cache.Observe(idmap.Ref{URI: c.URI, CID: c.CID})

	resp, err := svc.ReportComment(context.Background(), models.CreateCommentReport{CommentID: id, Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, "spam", resp.CommentReport.Reason)
	assert.Equal(t, []bsky.StrongRef{{URI: c.URI, CID: c.CID}}, remote.reported)

	_, err = svc.ReportComment(context.Background(), models.CreateCommentReport{CommentID: id})
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
}

func TestService_SearchSplitsPostsAndComments(t *testing.T) {
	remote := newFakeRemote()
	root := post("did:plc:a", "root", "golang rocks")
	c1 := replyTo(post("did:plc:b", "c1", "golang indeed"), root, root)
	remote.search = &bsky.SearchResult{Posts: []bsky.PostView{root, c1}}
	svc, _ := newService(remote)

	resp, err := svc.Search(context.Background(), SearchQuery{Q: "golang"})
	require.NoError(t, err)
	assert.Len(t, resp.Posts, 1)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, idmap.Derive(root.URI), resp.Comments[0].Comment.PostID)

	remote.calls = nil
	resp, err = svc.Search(context.Background(), SearchQuery{Q: "golang", Type: "Communities"})
	require.NoError(t, err)
	assert.Empty(t, resp.Posts)
	assert.Empty(t, remote.calls)
}

func TestService_GetPersonDetails(t *testing.T) {
	remote := newFakeRemote()
	remote.profile = &bsky.ProfileViewDetailed{
		ProfileViewBasic: bsky.ProfileViewBasic{DID: "did:plc:a", Handle: "a.bsky.social"},
		PostsCount:       4,
	}
	remote.authorFeed = &bsky.Feed{Feed: []bsky.FeedViewPost{{Post: post("did:plc:a", "p1", "hi")}}}
	svc, _ := newService(remote)

	resp, err := svc.GetPersonDetails(context.Background(), PersonQuery{Username: "a.bsky.social@rephoton.local"})
	require.NoError(t, err)
	assert.Equal(t, "a.bsky.social", resp.PersonView.Person.Name)
	assert.Equal(t, 4, resp.PersonView.Counts.PostCount)
	assert.Len(t, resp.Posts, 1)
	assert.Contains(t, remote.calls, "GetProfile:a.bsky.social")

	id := int32(5)
	_, err = svc.GetPersonDetails(context.Background(), PersonQuery{PersonID: &id})
	assert.True(t, errors.IsNotFound(err))
}

func TestService_RepliesAndMentions(t *testing.T) {
	remote := newFakeRemote()
	root := post(meDID, "root", "mine")
	remote.notifications = &bsky.Notifications{Notifications: []bsky.Notification{
		{
			URI: "at://did:plc:b/app.bsky.feed.post/r1", CID: "c", Reason: "reply",
			Author: bsky.ProfileViewBasic{DID: "did:plc:b", Handle: "b"},
			Record: bsky.PostRecord{Text: "nice", Reply: &bsky.ReplyRef{
				Root:   bsky.StrongRef{URI: root.URI, CID: root.CID},
				Parent: bsky.StrongRef{URI: root.URI, CID: root.CID},
			}},
		},
		{URI: "at://did:plc:c/app.bsky.feed.post/m1", Reason: "mention", IsRead: true},
		{URI: "at://did:plc:d/app.bsky.feed.like/l1", Reason: "like"},
	}}
	svc, cache := newService(remote)
	ctx := context.Background()

	replies, err := svc.GetReplies(ctx, NotificationsQuery{})
	require.NoError(t, err)
	require.Len(t, replies.Replies, 1)
	r := replies.Replies[0]
	assert.NotNil(t, r.CommentReply)
	assert.Equal(t, idmap.Derive(root.URI), r.Comment.PostID)
	assert.Equal(t, idmap.Derive(meDID), r.Recipient.ID)

	// the root post is actionable after listing replies
	_, err = cache.Resolve(idmap.Derive(root.URI))
	assert.NoError(t, err)

	mentions, err := svc.GetMentions(ctx, NotificationsQuery{})
	require.NoError(t, err)
	assert.Len(t, mentions.Mentions, 1)

	mentions, err = svc.GetMentions(ctx, NotificationsQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, mentions.Mentions)
}

func TestService_UnreadAndMarkRead(t *testing.T) {
	remote := newFakeRemote()
	remote.unread = 3
	svc, _ := newService(remote)

	n, err := svc.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n.Replies)

	_, err = svc.MarkAllRead(context.Background())
	require.NoError(t, err)
	assert.Contains(t, remote.calls, "UpdateSeen")
}

func TestUnsupported(t *testing.T) {
	err := Unsupported("CreateCommunity")
	assert.True(t, errors.IsUnsupported(err))
}
