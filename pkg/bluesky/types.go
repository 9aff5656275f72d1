package bluesky

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iconidentify/bskye/internal/domain"
)

// Lexicon embed types, without the "#view" suffix the AppView adds to
// hydrated views.
const (
	embedImages          = "app.bsky.embed.images"
	embedVideo           = "app.bsky.embed.video"
	embedExternal        = "app.bsky.embed.external"
	embedRecord          = "app.bsky.embed.record"
	embedRecordWithMedia = "app.bsky.embed.recordWithMedia"

	viewRecordType = "app.bsky.embed.record#viewRecord"
)

type threadResponse struct {
	Thread *threadJSON `json:"thread"`
}

type threadJSON struct {
	Type string        `json:"$type"`
	Post *postViewJSON `json:"post"`
}

type postViewJSON struct {
	URI         string          `json:"uri"`
	CID         string          `json:"cid"`
	Author      authorJSON      `json:"author"`
	Record      *postRecordJSON `json:"record"`
	Embed       *embedJSON      `json:"embed"`
	ReplyCount  *int            `json:"replyCount"`
	RepostCount *int            `json:"repostCount"`
	LikeCount   *int            `json:"likeCount"`
	QuoteCount  *int            `json:"quoteCount"`
}

type authorJSON struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// postRecordJSON is an app.bsky.feed.post record.
type postRecordJSON struct {
	Type      string     `json:"$type"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"createdAt"`
	Embed     *embedJSON `json:"embed"`
}

// embedJSON covers both the record and the view shape of every embed type.
// Fields not present in a given shape decode to their zero value.
type embedJSON struct {
	Type string `json:"$type"`

	Images []imageJSON `json:"images"`

	Video       *blobJSON        `json:"video"`
	CID         string           `json:"cid"`
	Playlist    string           `json:"playlist"`
	Thumbnail   string           `json:"thumbnail"`
	AspectRatio *aspectRatioJSON `json:"aspectRatio"`

	External *externalJSON `json:"external"`

	Record *recordJSON `json:"record"`
	Media  *embedJSON  `json:"media"`
}

type imageJSON struct {
	Alt         string           `json:"alt"`
	Image       *blobJSON        `json:"image"`
	Thumb       string           `json:"thumb"`
	Fullsize    string           `json:"fullsize"`
	AspectRatio *aspectRatioJSON `json:"aspectRatio"`
}

type externalJSON struct {
	URI         string    `json:"uri"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumb       thumbJSON `json:"thumb"`
}

// thumbJSON is an external thumbnail: a blob in records, a CDN URL in views.
type thumbJSON struct {
	Blob *blobJSON
	URL  string
}

func (t *thumbJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &t.URL)
	}
	t.Blob = new(blobJSON)
	return json.Unmarshal(data, t.Blob)
}

type blobJSON struct {
	Type string `json:"$type"`
	Ref  struct {
		Link string `json:"$link"`
	} `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

func (b *blobJSON) link() string {
	if b == nil {
		return ""
	}
	return b.Ref.Link
}

func (b *blobJSON) mimeType() string {
	if b == nil {
		return ""
	}
	return b.MimeType
}

type aspectRatioJSON struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (a *aspectRatioJSON) toDomain() *domain.AspectRatio {
	if a == nil {
		return nil
	}
	return &domain.AspectRatio{Width: a.Width, Height: a.Height}
}

// recordJSON is the "record" member of a record or recordWithMedia embed.
// In records it is a strong reference (or a wrapper around one); in views
// it is a viewRecord, a not-found/blocked marker, or a record#view wrapper.
type recordJSON struct {
	Type   string          `json:"$type"`
	URI    string          `json:"uri"`
	CID    string          `json:"cid"`
	Author *authorJSON     `json:"author"`
	Value  *postRecordJSON `json:"value"`
	Embeds []embedJSON     `json:"embeds"`
	Record *recordJSON     `json:"record"`
}

type profileJSON struct {
	DID            string `json:"did"`
	Handle         string `json:"handle"`
	DisplayName    string `json:"displayName"`
	Avatar         string `json:"avatar"`
	Description    string `json:"description"`
	FollowersCount *int   `json:"followersCount"`
	FollowsCount   *int   `json:"followsCount"`
	PostsCount     *int   `json:"postsCount"`
}

func invalidPost(reason string) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrInvalidPost, domain.ErrMalformedResponse, reason)
}

func (r *threadResponse) toDomain() (*domain.ThreadView, error) {
	if r.Thread == nil {
		return nil, invalidPost("thread missing")
	}
	if r.Thread.Type != "" && r.Thread.Type != threadViewPostType {
		return nil, invalidPost("thread root is " + r.Thread.Type)
	}
	pv := r.Thread.Post
	if pv == nil {
		return nil, invalidPost("thread root has no post")
	}
	if pv.Record == nil {
		return nil, invalidPost("post record not found")
	}
	if pv.Record.Type != domain.PostRecordType {
		return nil, invalidPost("record type is " + pv.Record.Type)
	}

	post := domain.Post{
		URI:    pv.URI,
		CID:    pv.CID,
		Author: pv.Author.toDomain(),
		Text:   pv.Record.Text,
		Embed:  toEmbed(pv.Record.Embed, pv.Embed),
		Counts: domain.Engagement{
			Replies: pv.ReplyCount,
			Reposts: pv.RepostCount,
			Likes:   pv.LikeCount,
			Quotes:  pv.QuoteCount,
		},
	}
	if t, err := time.Parse(time.RFC3339Nano, pv.Record.CreatedAt); err == nil {
		post.CreatedAt = t
	}

	return &domain.ThreadView{Post: post}, nil
}

func (a authorJSON) toDomain() domain.Author {
	return domain.Author{
		DID:         a.DID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
	}
}

func (p *profileJSON) toDomain() (*domain.Profile, error) {
	if p.Handle == "" {
		return nil, fmt.Errorf("%w: profile has no handle", domain.ErrMalformedResponse)
	}
	return &domain.Profile{
		Author: domain.Author{
			DID:         p.DID,
			Handle:      p.Handle,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
		},
		Description:    p.Description,
		FollowersCount: p.FollowersCount,
		FollowsCount:   p.FollowsCount,
		PostsCount:     p.PostsCount,
	}, nil
}

func baseType(t string) string {
	return strings.TrimSuffix(t, "#view")
}

// toEmbed merges the record side and the hydrated view side of one embed.
// Either may be nil. Unknown embed types yield nil.
func toEmbed(rec, view *embedJSON) domain.Embed {
	if rec == nil && view == nil {
		return nil
	}
	if rec == nil {
		rec = &embedJSON{}
	}
	if view == nil {
		view = &embedJSON{}
	}
	t := baseType(view.Type)
	if t == "" {
		t = baseType(rec.Type)
	}

	switch t {
	case embedVideo:
		return toVideo(rec, view)
	case embedImages:
		return toImages(rec, view)
	case embedExternal:
		return toExternal(rec, view)
	case embedRecord:
		return toQuote(view.Record)
	case embedRecordWithMedia:
		rwm := &domain.RecordWithMediaEmbed{
			Media: toEmbed(rec.Media, view.Media),
		}
		if view.Record != nil {
			rwm.Quote = toQuote(view.Record.Record)
		}
		return rwm
	}
	return nil
}

func toVideo(rec, view *embedJSON) *domain.VideoEmbed {
	v := &domain.VideoEmbed{
		BlobRef:   rec.Video.link(),
		MimeType:  rec.Video.mimeType(),
		Playlist:  view.Playlist,
		Thumbnail: view.Thumbnail,
	}
	if v.BlobRef == "" {
		v.BlobRef = view.CID
	}
	if ar := view.AspectRatio.toDomain(); ar != nil {
		v.AspectRatio = ar
	} else {
		v.AspectRatio = rec.AspectRatio.toDomain()
	}
	return v
}

func toImages(rec, view *embedJSON) *domain.ImagesEmbed {
	n := max(len(rec.Images), len(view.Images))
	e := &domain.ImagesEmbed{Images: make([]domain.Image, 0, n)}
	for i := range n {
		var img domain.Image
		if i < len(rec.Images) {
			r := rec.Images[i]
			img.BlobRef = r.Image.link()
			img.MimeType = r.Image.mimeType()
			img.Alt = r.Alt
			img.AspectRatio = r.AspectRatio.toDomain()
		}
		if i < len(view.Images) {
			v := view.Images[i]
			img.Thumb = v.Thumb
			img.Fullsize = v.Fullsize
			if img.Alt == "" {
				img.Alt = v.Alt
			}
			if img.AspectRatio == nil {
				img.AspectRatio = v.AspectRatio.toDomain()
			}
		}
		e.Images = append(e.Images, img)
	}
	return e
}

func toExternal(rec, view *embedJSON) *domain.ExternalEmbed {
	e := &domain.ExternalEmbed{}
	for _, ext := range []*externalJSON{view.External, rec.External} {
		if ext == nil {
			continue
		}
		if e.URI == "" {
			e.URI = ext.URI
		}
		if e.Title == "" {
			e.Title = ext.Title
		}
		if e.Description == "" {
			e.Description = ext.Description
		}
		if ext.Thumb.Blob != nil && e.ThumbBlobRef == "" {
			e.ThumbBlobRef = ext.Thumb.Blob.link()
			e.ThumbMimeType = ext.Thumb.Blob.mimeType()
		}
		if ext.Thumb.URL != "" && e.ThumbURL == "" {
			e.ThumbURL = ext.Thumb.URL
		}
	}
	return e
}

// toQuote converts a hydrated quoted record. Only a viewable post becomes a
// quote with IsPost set, and only its first embed is kept.
func toQuote(r *recordJSON) *domain.QuoteEmbed {
	q := &domain.QuoteEmbed{}
	if r == nil || r.Type != viewRecordType || r.Value == nil || r.Value.Type != domain.PostRecordType {
		return q
	}

	q.IsPost = true
	q.Text = r.Value.Text
	if r.Author != nil {
		q.Author = r.Author.toDomain()
	}
	if len(r.Embeds) > 0 {
		q.Embed = toEmbed(r.Value.Embed, &r.Embeds[0])
	}
	return q
}
