package domain

import (
	"time"
)

// PostRecordType is the lexicon type of a post record.
const PostRecordType = "app.bsky.feed.post"

// Author is the account that wrote a post or owns a profile.
type Author struct {
	DID         string
	Handle      string
	DisplayName string
	Avatar      string
}

// Engagement holds the counters the AppView reports for a post.
// A nil counter was not reported and is omitted from rendered titles.
type Engagement struct {
	Replies *int
	Reposts *int
	Likes   *int
	Quotes  *int
}

// Post is a fetched post with its embed already normalized.
type Post struct {
	URI       string
	CID       string
	Author    Author
	Text      string
	CreatedAt time.Time
	Embed     Embed // nil when the post carries no embed
	Counts    Engagement
}

// HasEmbed returns true if the post carries an embed of any kind.
func (p *Post) HasEmbed() bool {
	return p.Embed != nil
}

// ThreadView is the root node of a fetched thread.
type ThreadView struct {
	Post Post
}

// Profile is a fetched account profile.
type Profile struct {
	Author
	Description    string
	FollowersCount *int
	FollowsCount   *int
	PostsCount     *int
}

// Count returns a pointer to n, for building optional counters.
func Count(n int) *int {
	return &n
}
