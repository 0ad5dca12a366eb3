package api

import (
	"path"
	"strings"
	"time"
)

// Author is the profile row embedded in every post query.
type Author struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// Post mirrors a row of the posts relation joined to its author.
type Post struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"user_id"`
	Author            *Author   `json:"author,omitempty"`
	Content           string    `json:"content"`
	MediaURL          string    `json:"media_url,omitempty"`
	LikesCount        int       `json:"likes_count"`
	BrokenHeartsCount int       `json:"broken_hearts_count"`
	RepostsCount      int       `json:"reposts_count"`
	ViewsCount        int       `json:"views_count"`
	CommentsCount     int       `json:"comments_count"`
	IsPinned          bool      `json:"is_pinned,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MediaKind distinguishes attached media by file extension.
type MediaKind string

const (
	MediaNone  MediaKind = "none"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".m4v": true, ".ogv": true,
}

// MediaKind reports whether the post carries an image, a video or nothing.
// Anything that is not a known video extension is treated as an image.
func (p Post) MediaKind() MediaKind {
	if p.MediaURL == "" {
		return MediaNone
	}
	u := p.MediaURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if videoExtensions[strings.ToLower(path.Ext(u))] {
		return MediaVideo
	}
	return MediaImage
}

// IsPrivateAuthor is false when the author was not embedded.
func (p Post) IsPrivateAuthor() bool {
	return p.Author != nil && p.Author.IsPrivate
}

// Counters is a partial set of the mutable engagement counters. A nil field
// means "not specified"; it is the payload of overlay records and bus events.
type Counters struct {
	Likes        *int `json:"likes_count,omitempty"`
	BrokenHearts *int `json:"broken_hearts_count,omitempty"`
	Reposts      *int `json:"reposts_count,omitempty"`
	Comments     *int `json:"comments_count,omitempty"`
}

// Int returns a pointer to a copy of v, for building Counters literals.
func Int(v int) *int {
	return &v
}

// IsEmpty reports whether no field is set.
func (c Counters) IsEmpty() bool {
	return c.Likes == nil && c.BrokenHearts == nil && c.Reposts == nil && c.Comments == nil
}

// Merge returns c with every field that is set in other replaced. The result
// shares no pointers with either input.
func (c Counters) Merge(other Counters) Counters {
	out := c.Clone()
	if other.Likes != nil {
		out.Likes = Int(*other.Likes)
	}
	if other.BrokenHearts != nil {
		out.BrokenHearts = Int(*other.BrokenHearts)
	}
	if other.Reposts != nil {
		out.Reposts = Int(*other.Reposts)
	}
	if other.Comments != nil {
		out.Comments = Int(*other.Comments)
	}
	return out
}

// Clone deep-copies the set fields.
func (c Counters) Clone() Counters {
	var out Counters
	if c.Likes != nil {
		out.Likes = Int(*c.Likes)
	}
	if c.BrokenHearts != nil {
		out.BrokenHearts = Int(*c.BrokenHearts)
	}
	if c.Reposts != nil {
		out.Reposts = Int(*c.Reposts)
	}
	if c.Comments != nil {
		out.Comments = Int(*c.Comments)
	}
	return out
}

// Clamped returns a copy with every negative value raised to zero.
func (c Counters) Clamped() Counters {
	out := c.Clone()
	for _, f := range []*int{out.Likes, out.BrokenHearts, out.Reposts, out.Comments} {
		if f != nil && *f < 0 {
			*f = 0
		}
	}
	return out
}

// Counters returns the post's four mutable counters, all set.
func (p Post) Counters() Counters {
	return Counters{
		Likes:        Int(p.LikesCount),
		BrokenHearts: Int(p.BrokenHeartsCount),
		Reposts:      Int(p.RepostsCount),
		Comments:     Int(p.CommentsCount),
	}
}

// WithCounters returns a copy of p with the set fields of c applied.
func (p Post) WithCounters(c Counters) Post {
	if c.Likes != nil {
		p.LikesCount = *c.Likes
	}
	if c.BrokenHearts != nil {
		p.BrokenHeartsCount = *c.BrokenHearts
	}
	if c.Reposts != nil {
		p.RepostsCount = *c.Reposts
	}
	if c.Comments != nil {
		p.CommentsCount = *c.Comments
	}
	if p.Author != nil {
		a := *p.Author
		p.Author = &a
	}
	return p
}

// ReactionKind identifies one of the three reaction edge relations.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
	ReactionRepost  ReactionKind = "repost"
)

// Table returns the relation that stores edges of this kind.
func (k ReactionKind) Table() string {
	switch k {
	case ReactionLike:
		return "likes"
	case ReactionDislike:
		return "broken_hearts"
	case ReactionRepost:
		return "reposts"
	}
	return ""
}

// ReactionSet is the viewer's reaction edges on one post.
type ReactionSet struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
	Reposted bool `json:"reposted"`
}

// reactionRow is the body of an edge insert and the shape of edge reads.
type reactionRow struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

type followRow struct {
	FollowingID string `json:"following_id"`
}

// TokenResponse is returned by the password and refresh token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}
