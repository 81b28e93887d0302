package adapter

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/idmap"
	"github.com/mudkipdev/rephoton/internal/models"
)

const (
	webBase      = "https://bsky.app"
	maxTitleLen  = 200
	communityID  = 0
	instanceID   = 0
	languageNone = 0
)

// placeholderCommunity stands in for the community every Lemmy post needs.
// Bluesky has nothing equivalent.
func placeholderCommunity() models.Community {
	return models.Community{
		ID:         communityID,
		Name:       "bluesky",
		Title:      "Bluesky",
		ActorID:    webBase,
		Local:      true,
		InstanceID: instanceID,
		Visibility: "Public",
	}
}

// Person maps a Bluesky author. The id is display-only; persons are looked
// up by handle, never by id.
func Person(a bsky.ProfileViewBasic, published time.Time) models.Person {
	return models.Person{
		ID:          idmap.Derive(a.DID),
		Name:        a.Handle,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
		Published:   published.UTC(),
		ActorID:     webBase + "/profile/" + a.Handle,
		Local:       true,
		InstanceID:  instanceID,
	}
}

// PersonView maps a detailed profile.
func PersonView(p bsky.ProfileViewDetailed) models.PersonView {
	published := time.Time{}
	if p.CreatedAt != nil {
		published = *p.CreatedAt
	} else if p.IndexedAt != nil {
		published = *p.IndexedAt
	}
	person := Person(p.ProfileViewBasic, published)
	person.Bio = p.Description
	person.Banner = p.Banner
	return models.PersonView{
		Person: person,
		Counts: models.PersonAggregates{
			PersonID:  person.ID,
			PostCount: p.PostsCount,
		},
	}
}

// Title splits post text into a Lemmy title (first line, bounded) and body
// (the full text when the title does not already carry all of it).
func Title(text string) (name, body string) {
	text = strings.TrimSpace(text)
	first, _, multi := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)

	truncated := false
	if utf8.RuneCountInString(first) > maxTitleLen {
		r := []rune(first)
		first = string(r[:maxTitleLen-1]) + "…"
		truncated = true
	}
	if multi || truncated {
		return first, text
	}
	return first, ""
}

// WebURL returns the bsky.app page for a post uri.
func WebURL(uri, handle string) string {
	_, _, rkey, err := bsky.ParseURI(uri)
	if err != nil {
		return uri
	}
	return webBase + "/profile/" + handle + "/post/" + rkey
}

func createdAt(rec bsky.PostRecord, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err == nil {
		return t.UTC()
	}
	return fallback.UTC()
}

func myVote(liked bool) *int {
	v := 0
	if liked {
		v = 1
	}
	return &v
}

// Post maps a Bluesky post to a Lemmy post under id.
func Post(p bsky.PostView, id int32) models.Post {
	name, body := Title(p.Record.Text)
	out := models.Post{
		ID:          id,
		Name:        name,
		Body:        body,
		CreatorID:   idmap.Derive(p.Author.DID),
		CommunityID: communityID,
		Published:   createdAt(p.Record, p.IndexedAt),
		APID:        WebURL(p.URI, p.Author.Handle),
		Local:       true,
		LanguageID:  languageNone,
	}
	if img, ok := p.Embed.FirstImage(); ok {
		out.URL = img.Fullsize
		out.ThumbnailURL = img.Thumb
		if out.Name == "" {
			out.Name = img.Alt
		}
	} else if link := p.Embed.Link(); link != nil {
		out.URL = link.URI
		out.ThumbnailURL = link.Thumb
		out.EmbedTitle = link.Title
		out.EmbedDescription = link.Description
		if out.Name == "" {
			out.Name = link.Title
		}
	}
	return out
}

// PostView maps a Bluesky post view. liked is the viewer's like state as
// known to the cache.
func PostView(p bsky.PostView, id int32, liked bool) models.PostView {
	post := Post(p, id)
	score := p.LikeCount
	return models.PostView{
		Post:      post,
		Creator:   Person(p.Author, p.IndexedAt),
		Community: placeholderCommunity(),
		Counts: models.PostAggregates{
			PostID:            id,
			Comments:          p.ReplyCount,
			Score:             score,
			Upvotes:           score,
			Published:         post.Published,
			NewestCommentTime: post.Published,
		},
		Subscribed: "NotSubscribed",
		MyVote:     myVote(liked),
	}
}

// CommentView maps a reply post to a Lemmy comment on postID. path is the
// full Lemmy path ("0.<ancestor ids>.<id>").
func CommentView(p bsky.PostView, id, postID int32, path string, liked bool) models.CommentView {
	published := createdAt(p.Record, p.IndexedAt)
	return models.CommentView{
		Comment: models.Comment{
			ID:         id,
			CreatorID:  idmap.Derive(p.Author.DID),
			PostID:     postID,
			Content:    p.Record.Text,
			Published:  published,
			APID:       WebURL(p.URI, p.Author.Handle),
			Local:      true,
			Path:       path,
			LanguageID: languageNone,
		},
		Creator:   Person(p.Author, p.IndexedAt),
		Post:      models.Post{ID: postID, CommunityID: communityID, Local: true},
		Community: placeholderCommunity(),
		Counts: models.CommentAggregates{
			CommentID:  id,
			Score:      p.LikeCount,
			Upvotes:    p.LikeCount,
			Published:  published,
			ChildCount: p.ReplyCount,
		},
		Subscribed: "NotSubscribed",
		MyVote:     myVote(liked),
	}
}

// Path builds a Lemmy comment path from ancestor ids (nearest the root
// first) and the comment's own id.
func Path(ancestors []int32, id int32) string {
	var b strings.Builder
	b.WriteString("0")
	for _, a := range ancestors {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(int(a)))
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(id)))
	return b.String()
}

// ReplyView maps a reply or mention notification.
func ReplyView(n bsky.Notification, id, postID int32, recipient models.Person, mention bool) models.CommentReplyView {
	view := PostViewOf(n)
	cv := CommentView(view, id, postID, Path(nil, id), false)
	marker := &models.CommentReply{
		ID:          id,
		RecipientID: recipient.ID,
		CommentID:   id,
		Read:        n.IsRead,
		Published:   cv.Comment.Published,
	}
	out := models.CommentReplyView{
		Comment:    cv.Comment,
		Creator:    cv.Creator,
		Post:       cv.Post,
		Community:  cv.Community,
		Recipient:  recipient,
		Counts:     cv.Counts,
		Subscribed: cv.Subscribed,
	}
	if mention {
		out.PersonMention = marker
	} else {
		out.CommentReply = marker
	}
	return out
}

// PostViewOf builds the post view a notification describes. Notifications
// carry no counts or viewer state.
func PostViewOf(n bsky.Notification) bsky.PostView {
	return bsky.PostView{
		URI:       n.URI,
		CID:       n.CID,
		Author:    n.Author,
		Record:    n.Record,
		IndexedAt: n.IndexedAt,
	}
}

// MyUserInfo describes the logged-in account.
func MyUserInfo(p bsky.ProfileViewDetailed) *models.MyUserInfo {
	pv := PersonView(p)
	return &models.MyUserInfo{
		LocalUserView: models.LocalUserView{
			LocalUser: models.LocalUser{
				ID:                  pv.Person.ID,
				PersonID:            pv.Person.ID,
				Theme:               "browser",
				DefaultSortType:     "New",
				DefaultListingType:  "Subscribed",
				InterfaceLanguage:   "browser",
				ShowAvatars:         true,
				ShowScores:          true,
				ShowBotAccounts:     true,
				ShowReadPosts:       true,
				EmailVerified:       true,
				AcceptedApplication: true,
			},
			Person: pv.Person,
			Counts: pv.Counts,
		},
		Follows:             []any{},
		Moderates:           []any{},
		CommunityBlocks:     []any{},
		InstanceBlocks:      []any{},
		PersonBlocks:        []any{},
		DiscussionLanguages: []int32{},
	}
}

// Site builds the site response. me is nil for anonymous callers.
func Site(name, version string, me *models.MyUserInfo) models.GetSiteResponse {
	return models.GetSiteResponse{
		SiteView: models.SiteView{
			Site: models.Site{
				ID:          1,
				Name:        name,
				Description: "Lemmy API over Bluesky",
				ActorID:     webBase,
				InstanceID:  instanceID,
			},
			LocalSite: models.LocalSite{
				ID:                  1,
				SiteID:              1,
				EnableDownvotes:     false,
				RegistrationMode:    "Closed",
				DefaultPostListType: "Subscribed",
			},
		},
		Admins:              []any{},
		Version:             version,
		MyUser:              me,
		AllLanguages:        []any{},
		DiscussionLanguages: []int32{},
		Taglines:            []any{},
		CustomEmojis:        []any{},
	}
}
