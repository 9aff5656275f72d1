package domain

// Embed is the closed set of attachments a post can carry. Exactly one
// variant is active per post: *VideoEmbed, *ImagesEmbed, *ExternalEmbed,
// *QuoteEmbed or *RecordWithMediaEmbed.
type Embed interface {
	embed()
}

// AspectRatio is the declared width:height of an image or video.
type AspectRatio struct {
	Width  int
	Height int
}

// VideoEmbed is an uploaded video.
type VideoEmbed struct {
	BlobRef     string
	MimeType    string
	AspectRatio *AspectRatio
	Playlist    string
	Thumbnail   string
}

// Image is a single image of an ImagesEmbed.
type Image struct {
	BlobRef     string
	MimeType    string
	AspectRatio *AspectRatio
	Alt         string
	Thumb       string
	Fullsize    string
}

// ImagesEmbed is a set of one to four images, in post order.
type ImagesEmbed struct {
	Images []Image
}

// ExternalEmbed is a link card. GIFs picked from the composer arrive as
// external embeds pointing at the GIF host.
type ExternalEmbed struct {
	URI           string
	Title         string
	Description   string
	ThumbBlobRef  string // blob of the uploaded thumbnail, record side
	ThumbMimeType string
	ThumbURL      string // CDN thumbnail, view side
}

// HasThumb returns true if either side of the embed carries a thumbnail.
func (e *ExternalEmbed) HasThumb() bool {
	return e.ThumbBlobRef != "" || e.ThumbURL != ""
}

// QuoteEmbed is a quoted record.
type QuoteEmbed struct {
	Author Author
	Text   string
	// IsPost is true when the quoted record is a viewable post. Blocked,
	// deleted and non-post records (feeds, lists) leave it false.
	IsPost bool
	// Embed is the first rendered embed of the quoted post. Later embeds
	// are not kept.
	Embed Embed
}

// RecordWithMediaEmbed is a post carrying its own media and a quote.
type RecordWithMediaEmbed struct {
	Media Embed // *VideoEmbed, *ImagesEmbed or *ExternalEmbed
	Quote *QuoteEmbed
}

func (*VideoEmbed) embed()           {}
func (*ImagesEmbed) embed()          {}
func (*ExternalEmbed) embed()        {}
func (*QuoteEmbed) embed()           {}
func (*RecordWithMediaEmbed) embed() {}
