package bsky

import (
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
)

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func count(n *int64) int {
	if n == nil {
		return 0
	}
	return int(*n)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromStrongRef(r *comatproto.RepoStrongRef) StrongRef {
	if r == nil {
		return StrongRef{}
	}
	return StrongRef{URI: r.Uri, CID: r.Cid}
}

func toStrongRef(r StrongRef) *comatproto.RepoStrongRef {
	return &comatproto.RepoStrongRef{Uri: r.URI, Cid: r.CID}
}

func fromProfileBasic(p *appbsky.ActorDefs_ProfileViewBasic) ProfileViewBasic {
	if p == nil {
		return ProfileViewBasic{}
	}
	return ProfileViewBasic{
		DID:         p.Did,
		Handle:      p.Handle,
		DisplayName: str(p.DisplayName),
		Avatar:      str(p.Avatar),
	}
}

func fromProfile(p *appbsky.ActorDefs_ProfileView) ProfileViewBasic {
	if p == nil {
		return ProfileViewBasic{}
	}
	return ProfileViewBasic{
		DID:         p.Did,
		Handle:      p.Handle,
		DisplayName: str(p.DisplayName),
		Avatar:      str(p.Avatar),
	}
}

func fromProfileDetailed(p *appbsky.ActorDefs_ProfileViewDetailed) *ProfileViewDetailed {
	if p == nil {
		return &ProfileViewDetailed{}
	}
	return &ProfileViewDetailed{
		ProfileViewBasic: ProfileViewBasic{
			DID:         p.Did,
			Handle:      p.Handle,
			DisplayName: str(p.DisplayName),
			Avatar:      str(p.Avatar),
		},
		Description:    str(p.Description),
		Banner:         str(p.Banner),
		FollowersCount: count(p.FollowersCount),
		FollowsCount:   count(p.FollowsCount),
		PostsCount:     count(p.PostsCount),
		IndexedAt:      parseTimePtr(p.IndexedAt),
	}
}

// fromRecord reads a post record. Records of other collections yield an
// empty PostRecord.
func fromRecord(rec *lexutil.LexiconTypeDecoder) PostRecord {
	if rec == nil {
		return PostRecord{}
	}
	post, ok := rec.Val.(*appbsky.FeedPost)
	if !ok || post == nil {
		return PostRecord{}
	}
	out := PostRecord{
		Type:      CollectionPost,
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		Langs:     post.Langs,
	}
	if post.Reply != nil {
		out.Reply = &ReplyRef{
			Root:   fromStrongRef(post.Reply.Root),
			Parent: fromStrongRef(post.Reply.Parent),
		}
	}
	return out
}

func toPostRecord(text string, reply *ReplyRef, now time.Time) *appbsky.FeedPost {
	rec := &appbsky.FeedPost{
		LexiconTypeID: CollectionPost,
		Text:          text,
		CreatedAt:     now.UTC().Format(time.RFC3339Nano),
	}
	if reply != nil {
		rec.Reply = &appbsky.FeedPost_ReplyRef{
			Root:   toStrongRef(reply.Root),
			Parent: toStrongRef(reply.Parent),
		}
	}
	return rec
}

func fromImages(v *appbsky.EmbedImages_View) *EmbedView {
	out := &EmbedView{Type: typeEmbedImages}
	for _, img := range v.Images {
		if img == nil {
			continue
		}
		out.Images = append(out.Images, Image{Thumb: img.Thumb, Fullsize: img.Fullsize, Alt: img.Alt})
	}
	return out
}

func fromExternal(v *appbsky.EmbedExternal_View) *EmbedView {
	out := &EmbedView{Type: typeEmbedExternal}
	if ext := v.External; ext != nil {
		out.External = &External{
			URI:         ext.Uri,
			Title:       ext.Title,
			Description: ext.Description,
			Thumb:       str(ext.Thumb),
		}
	}
	return out
}

func fromEmbed(e *appbsky.FeedDefs_PostView_Embed) *EmbedView {
	switch {
	case e == nil:
		return nil
	case e.EmbedImages_View != nil:
		return fromImages(e.EmbedImages_View)
	case e.EmbedExternal_View != nil:
		return fromExternal(e.EmbedExternal_View)
	case e.EmbedRecordWithMedia_View != nil:
		out := &EmbedView{Type: typeEmbedMedia}
		if m := e.EmbedRecordWithMedia_View.Media; m != nil {
			switch {
			case m.EmbedImages_View != nil:
				out.Media = fromImages(m.EmbedImages_View)
			case m.EmbedExternal_View != nil:
				out.Media = fromExternal(m.EmbedExternal_View)
			}
		}
		return out
	}
	return nil
}

func fromPostView(p *appbsky.FeedDefs_PostView) PostView {
	if p == nil {
		return PostView{}
	}
	out := PostView{
		URI:         p.Uri,
		CID:         p.Cid,
		Author:      fromProfileBasic(p.Author),
		Record:      fromRecord(p.Record),
		Embed:       fromEmbed(p.Embed),
		ReplyCount:  count(p.ReplyCount),
		RepostCount: count(p.RepostCount),
		LikeCount:   count(p.LikeCount),
		IndexedAt:   parseTime(p.IndexedAt),
	}
	if v := p.Viewer; v != nil {
		out.Viewer = &ViewerState{Like: str(v.Like), Repost: str(v.Repost)}
	}
	return out
}

func fromPostViews(in []*appbsky.FeedDefs_PostView) []PostView {
	out := make([]PostView, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, fromPostView(p))
		}
	}
	return out
}

func fromFeed(cursor *string, in []*appbsky.FeedDefs_FeedViewPost) *Feed {
	out := &Feed{Cursor: str(cursor), Feed: make([]FeedViewPost, 0, len(in))}
	for _, item := range in {
		if item == nil || item.Post == nil {
			continue
		}
		out.Feed = append(out.Feed, FeedViewPost{Post: fromPostView(item.Post)})
	}
	return out
}

// fromThreadPost converts a thread node with its parent chain and replies.
func fromThreadPost(t *appbsky.FeedDefs_ThreadViewPost) *ThreadView {
	if t == nil || t.Post == nil {
		return &ThreadView{Type: typeNotFoundPost, NotFound: true}
	}
	post := fromPostView(t.Post)
	out := &ThreadView{Type: typeThreadPost, Post: &post}
	if p := t.Parent; p != nil {
		out.Parent = threadNode(p.FeedDefs_ThreadViewPost, p.FeedDefs_NotFoundPost != nil, p.FeedDefs_BlockedPost != nil)
	}
	for _, r := range t.Replies {
		if r == nil {
			continue
		}
		out.Replies = append(out.Replies, threadNode(r.FeedDefs_ThreadViewPost, r.FeedDefs_NotFoundPost != nil, r.FeedDefs_BlockedPost != nil))
	}
	return out
}

func threadNode(post *appbsky.FeedDefs_ThreadViewPost, notFound, blocked bool) *ThreadView {
	switch {
	case post != nil:
		return fromThreadPost(post)
	case blocked:
		return &ThreadView{Type: typeBlockedPost, Blocked: true}
	case notFound:
		return &ThreadView{Type: typeNotFoundPost, NotFound: true}
	}
	return &ThreadView{}
}

func fromNotification(n *appbsky.NotificationListNotifications_Notification) Notification {
	return Notification{
		URI:           n.Uri,
		CID:           n.Cid,
		Author:        fromProfile(n.Author),
		Reason:        n.Reason,
		ReasonSubject: str(n.ReasonSubject),
		Record:        fromRecord(n.Record),
		IsRead:        n.IsRead,
		IndexedAt:     parseTime(n.IndexedAt),
	}
}
