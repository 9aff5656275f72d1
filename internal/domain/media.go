package domain

// MediaKind identifies the primary media picked for a post preview.
type MediaKind string

const (
	MediaKindNone   MediaKind = "none"
	MediaKindVideo  MediaKind = "video"
	MediaKindImages MediaKind = "images"
	MediaKindGIF    MediaKind = "gif"
)

// ResolvedMedia is the classified media of a single render. It is derived
// from the post embed on every request and never stored.
type ResolvedMedia struct {
	Kind MediaKind
	// Author is the author of the post being rendered, even when the media
	// itself belongs to a quoted post.
	Author Author
	Video  *ResolvedVideo
	Images []ResolvedImage
	GIF    *ResolvedGIF
	Quote  *QuotedPost
}

// ResolvedVideo is a playable video.
type ResolvedVideo struct {
	URL         string
	MimeType    string
	Thumbnail   string
	AspectRatio *AspectRatio
}

// ResolvedImage is a displayable image.
type ResolvedImage struct {
	URL         string
	MimeType    string
	Alt         string
	AspectRatio *AspectRatio
}

// ResolvedGIF is a displayable animated image taken from an external embed.
type ResolvedGIF struct {
	URL      string
	MimeType string
	Title    string
}

// QuotedPost is the author and text of a quote appended to a description.
type QuotedPost struct {
	Author Author
	Text   string
}

// HasText returns true if the quote carries text worth appending.
func (q *QuotedPost) HasText() bool {
	return q != nil && q.Text != ""
}
