// Package models holds the Lemmy v3 API shapes the bridge serves.
package models

import "time"

type Person struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Banned      bool      `json:"banned"`
	Published   time.Time `json:"published"`
	ActorID     string    `json:"actor_id"`
	Bio         string    `json:"bio,omitempty"`
	Local       bool      `json:"local"`
	Banner      string    `json:"banner,omitempty"`
	Deleted     bool      `json:"deleted"`
	BotAccount  bool      `json:"bot_account"`
	InstanceID  int32     `json:"instance_id"`
}

type Community struct {
	ID                      int32     `json:"id"`
	Name                    string    `json:"name"`
	Title                   string    `json:"title"`
	Removed                 bool      `json:"removed"`
	Published               time.Time `json:"published"`
	Deleted                 bool      `json:"deleted"`
	NSFW                    bool      `json:"nsfw"`
	ActorID                 string    `json:"actor_id"`
	Local                   bool      `json:"local"`
	Hidden                  bool      `json:"hidden"`
	PostingRestrictedToMods bool      `json:"posting_restricted_to_mods"`
	InstanceID              int32     `json:"instance_id"`
	Visibility              string    `json:"visibility"`
}

type Post struct {
	ID                int32     `json:"id"`
	Name              string    `json:"name"`
	URL               string    `json:"url,omitempty"`
	Body              string    `json:"body,omitempty"`
	CreatorID         int32     `json:"creator_id"`
	CommunityID       int32     `json:"community_id"`
	Removed           bool      `json:"removed"`
	Locked            bool      `json:"locked"`
	Published         time.Time `json:"published"`
	Deleted           bool      `json:"deleted"`
	NSFW              bool      `json:"nsfw"`
	ThumbnailURL      string    `json:"thumbnail_url,omitempty"`
	EmbedTitle        string    `json:"embed_title,omitempty"`
	EmbedDescription  string    `json:"embed_description,omitempty"`
	APID              string    `json:"ap_id"`
	Local             bool      `json:"local"`
	LanguageID        int32     `json:"language_id"`
	FeaturedCommunity bool      `json:"featured_community"`
	FeaturedLocal     bool      `json:"featured_local"`
}

type PostAggregates struct {
	PostID            int32     `json:"post_id"`
	Comments          int       `json:"comments"`
	Score             int       `json:"score"`
	Upvotes           int       `json:"upvotes"`
	Downvotes         int       `json:"downvotes"`
	Published         time.Time `json:"published"`
	NewestCommentTime time.Time `json:"newest_comment_time"`
}

type PostView struct {
	Post                       Post           `json:"post"`
	Creator                    Person         `json:"creator"`
	Community                  Community      `json:"community"`
	CreatorBannedFromCommunity bool           `json:"creator_banned_from_community"`
	BannedFromCommunity        bool           `json:"banned_from_community"`
	CreatorIsModerator         bool           `json:"creator_is_moderator"`
	CreatorIsAdmin             bool           `json:"creator_is_admin"`
	Counts                     PostAggregates `json:"counts"`
	Subscribed                 string         `json:"subscribed"`
	Saved                      bool           `json:"saved"`
	Read                       bool           `json:"read"`
	Hidden                     bool           `json:"hidden"`
	CreatorBlocked             bool           `json:"creator_blocked"`
	MyVote                     *int           `json:"my_vote,omitempty"`
	UnreadComments             int            `json:"unread_comments"`
}

type Comment struct {
	ID            int32     `json:"id"`
	CreatorID     int32     `json:"creator_id"`
	PostID        int32     `json:"post_id"`
	Content       string    `json:"content"`
	Removed       bool      `json:"removed"`
	Published     time.Time `json:"published"`
	Deleted       bool      `json:"deleted"`
	APID          string    `json:"ap_id"`
	Local         bool      `json:"local"`
	Path          string    `json:"path"`
	Distinguished bool      `json:"distinguished"`
	LanguageID    int32     `json:"language_id"`
}

type CommentAggregates struct {
	CommentID  int32     `json:"comment_id"`
	Score      int       `json:"score"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	Published  time.Time `json:"published"`
	ChildCount int       `json:"child_count"`
}

type CommentView struct {
	Comment                    Comment           `json:"comment"`
	Creator                    Person            `json:"creator"`
	Post                       Post              `json:"post"`
	Community                  Community         `json:"community"`
	Counts                     CommentAggregates `json:"counts"`
	CreatorBannedFromCommunity bool              `json:"creator_banned_from_community"`
	BannedFromCommunity        bool              `json:"banned_from_community"`
	CreatorIsModerator         bool              `json:"creator_is_moderator"`
	CreatorIsAdmin             bool              `json:"creator_is_admin"`
	Subscribed                 string            `json:"subscribed"`
	Saved                      bool              `json:"saved"`
	CreatorBlocked             bool              `json:"creator_blocked"`
	MyVote                     *int              `json:"my_vote,omitempty"`
}

type PersonAggregates struct {
	PersonID     int32 `json:"person_id"`
	PostCount    int   `json:"post_count"`
	CommentCount int   `json:"comment_count"`
}

type PersonView struct {
	Person  Person           `json:"person"`
	Counts  PersonAggregates `json:"counts"`
	IsAdmin bool             `json:"is_admin"`
}

type CommentReply struct {
	ID          int32     `json:"id"`
	RecipientID int32     `json:"recipient_id"`
	CommentID   int32     `json:"comment_id"`
	Read        bool      `json:"read"`
	Published   time.Time `json:"published"`
}

// CommentReplyView is used for both replies and mentions; mentions carry the
// same fields under person_mention.
type CommentReplyView struct {
	CommentReply  *CommentReply     `json:"comment_reply,omitempty"`
	PersonMention *CommentReply     `json:"person_mention,omitempty"`
	Comment       Comment           `json:"comment"`
	Creator       Person            `json:"creator"`
	Post          Post              `json:"post"`
	Community     Community         `json:"community"`
	Recipient     Person            `json:"recipient"`
	Counts        CommentAggregates `json:"counts"`
	Subscribed    string            `json:"subscribed"`
	Saved         bool              `json:"saved"`
	MyVote        *int              `json:"my_vote,omitempty"`
}

type PostReport struct {
	ID               int32     `json:"id"`
	CreatorID        int32     `json:"creator_id"`
	PostID           int32     `json:"post_id"`
	OriginalPostName string    `json:"original_post_name"`
	Reason           string    `json:"reason"`
	Resolved         bool      `json:"resolved"`
	Published        time.Time `json:"published"`
}

type CommentReport struct {
	ID                  int32     `json:"id"`
	CreatorID           int32     `json:"creator_id"`
	CommentID           int32     `json:"comment_id"`
	OriginalCommentText string    `json:"original_comment_text"`
	Reason              string    `json:"reason"`
	Resolved            bool      `json:"resolved"`
	Published           time.Time `json:"published"`
}

type Site struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Published   time.Time `json:"published"`
	ActorID     string    `json:"actor_id"`
	InstanceID  int32     `json:"instance_id"`
}

type LocalSite struct {
	ID                  int32  `json:"id"`
	SiteID              int32  `json:"site_id"`
	EnableDownvotes     bool   `json:"enable_downvotes"`
	EnableNSFW          bool   `json:"enable_nsfw"`
	CommunityCreation   bool   `json:"community_creation_admin_only"`
	RegistrationMode    string `json:"registration_mode"`
	DefaultPostListType string `json:"default_post_listing_type"`
	FederationEnabled   bool   `json:"federation_enabled"`
}

type SiteView struct {
	Site      Site      `json:"site"`
	LocalSite LocalSite `json:"local_site"`
}

type LocalUser struct {
	ID                  int32  `json:"id"`
	PersonID            int32  `json:"person_id"`
	ShowNSFW            bool   `json:"show_nsfw"`
	Theme               string `json:"theme"`
	DefaultSortType     string `json:"default_sort_type"`
	DefaultListingType  string `json:"default_listing_type"`
	InterfaceLanguage   string `json:"interface_language"`
	ShowAvatars         bool   `json:"show_avatars"`
	ShowScores          bool   `json:"show_scores"`
	ShowBotAccounts     bool   `json:"show_bot_accounts"`
	ShowReadPosts       bool   `json:"show_read_posts"`
	EmailVerified       bool   `json:"email_verified"`
	AcceptedApplication bool   `json:"accepted_application"`
}

type LocalUserView struct {
	LocalUser LocalUser        `json:"local_user"`
	Person    Person           `json:"person"`
	Counts    PersonAggregates `json:"counts"`
}

type MyUserInfo struct {
	LocalUserView       LocalUserView `json:"local_user_view"`
	Follows             []any         `json:"follows"`
	Moderates           []any         `json:"moderates"`
	CommunityBlocks     []any         `json:"community_blocks"`
	InstanceBlocks      []any         `json:"instance_blocks"`
	PersonBlocks        []any         `json:"person_blocks"`
	DiscussionLanguages []int32       `json:"discussion_languages"`
}

// Requests

type Login struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
	TOTP2FAToken    string `json:"totp_2fa_token,omitempty"`
}

type CreatePost struct {
	Name        string `json:"name"`
	CommunityID int32  `json:"community_id"`
	URL         string `json:"url,omitempty"`
	Body        string `json:"body,omitempty"`
	NSFW        bool   `json:"nsfw,omitempty"`
	LanguageID  int32  `json:"language_id,omitempty"`
}

type CreateComment struct {
	Content  string `json:"content"`
	PostID   int32  `json:"post_id"`
	ParentID *int32 `json:"parent_id,omitempty"`
}

type CreatePostLike struct {
	PostID int32 `json:"post_id"`
	Score  int   `json:"score"`
}

type CreateCommentLike struct {
	CommentID int32 `json:"comment_id"`
	Score     int   `json:"score"`
}

type DeletePost struct {
	PostID  int32 `json:"post_id"`
	Deleted bool  `json:"deleted"`
}

type DeleteComment struct {
	CommentID int32 `json:"comment_id"`
	Deleted   bool  `json:"deleted"`
}

type CreatePostReport struct {
	PostID int32  `json:"post_id"`
	Reason string `json:"reason"`
}

type CreateCommentReport struct {
	CommentID int32  `json:"comment_id"`
	Reason    string `json:"reason"`
}

// Responses

type LoginResponse struct {
	JWT                 string `json:"jwt,omitempty"`
	RegistrationCreated bool   `json:"registration_created"`
	VerifyEmailSent     bool   `json:"verify_email_sent"`
}

type GetPostsResponse struct {
	Posts    []PostView `json:"posts"`
	NextPage string     `json:"next_page,omitempty"`
}

type GetPostResponse struct {
	PostView   PostView `json:"post_view"`
	Moderators []any    `json:"moderators"`
	CrossPosts []any    `json:"cross_posts"`
}

type PostResponse struct {
	PostView PostView `json:"post_view"`
}

type GetCommentsResponse struct {
	Comments []CommentView `json:"comments"`
}

type CommentResponse struct {
	CommentView  CommentView `json:"comment_view"`
	RecipientIDs []int32     `json:"recipient_ids"`
}

type SearchResponse struct {
	Type        string        `json:"type_"`
	Comments    []CommentView `json:"comments"`
	Posts       []PostView    `json:"posts"`
	Communities []any         `json:"communities"`
	Users       []PersonView  `json:"users"`
	NextPage    string        `json:"next_page,omitempty"`
}

type GetPersonDetailsResponse struct {
	PersonView PersonView    `json:"person_view"`
	Comments   []CommentView `json:"comments"`
	Posts      []PostView    `json:"posts"`
	Moderates  []any         `json:"moderates"`
	NextPage   string        `json:"next_page,omitempty"`
}

type GetRepliesResponse struct {
	Replies []CommentReplyView `json:"replies"`
}

type GetPersonMentionsResponse struct {
	Mentions []CommentReplyView `json:"mentions"`
}

type GetUnreadCountResponse struct {
	Replies         int `json:"replies"`
	Mentions        int `json:"mentions"`
	PrivateMessages int `json:"private_messages"`
}

type GetSiteResponse struct {
	SiteView            SiteView    `json:"site_view"`
	Admins              []any       `json:"admins"`
	Version             string      `json:"version"`
	MyUser              *MyUserInfo `json:"my_user,omitempty"`
	AllLanguages        []any       `json:"all_languages"`
	DiscussionLanguages []int32     `json:"discussion_languages"`
	Taglines            []any       `json:"taglines"`
	CustomEmojis        []any       `json:"custom_emojis"`
}

type PostReportResponse struct {
	PostReport PostReport `json:"post_report"`
}

type CommentReportResponse struct {
	CommentReport CommentReport `json:"comment_report"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
