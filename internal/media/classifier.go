// Package media picks the primary media of a post and builds the URLs the
// renderers point chat scrapers at.
package media

import (
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/format"
)

const (
	defaultVideoMimeType = "video/mp4"
	defaultGIFMimeType   = "image/jpeg"

	// cacheBustRange bounds the r parameter appended to video URLs.
	cacheBustRange = 100
)

// gifHosts are external hosts whose link URI is already a direct image.
var gifHosts = []string{"tenor.com"}

// RandomSource yields the cache-busting value appended to video URLs.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// Classifier resolves the single media a preview shows for a post.
type Classifier struct {
	blobEndpoint string
	rnd          RandomSource
}

// NewClassifier creates a classifier building blob URLs against blobEndpoint.
// A nil rnd uses the process-wide random source.
func NewClassifier(blobEndpoint string, rnd RandomSource) *Classifier {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &Classifier{
		blobEndpoint: blobEndpoint,
		rnd:          rnd,
	}
}

// Classify returns the media of post. Precedence is video, then images,
// then GIF, each checked on the post itself before the quoted post; a quote
// without usable media still contributes its text. Classify never fails:
// anything unrecognized resolves to MediaKindNone.
func (c *Classifier) Classify(post *domain.Post) domain.ResolvedMedia {
	res := domain.ResolvedMedia{
		Kind:   domain.MediaKindNone,
		Author: post.Author,
	}
	if !post.HasEmbed() {
		return res
	}

	switch e := post.Embed.(type) {
	case *domain.VideoEmbed:
		c.setVideo(&res, post.Author, e)

	case *domain.ImagesEmbed:
		c.setImages(&res, post.Author, e)

	case *domain.ExternalEmbed:
		c.setGIF(&res, post.Author, e)

	case *domain.RecordWithMediaEmbed:
		switch m := e.Media.(type) {
		case *domain.VideoEmbed:
			c.setVideo(&res, post.Author, m)
		case *domain.ImagesEmbed:
			c.setImages(&res, post.Author, m)
		case *domain.ExternalEmbed:
			c.setGIF(&res, post.Author, m)
		}
		res.Quote = quotedPost(e.Quote)

	case *domain.QuoteEmbed:
		c.classifyQuoted(&res, e)
		res.Quote = quotedPost(e)
	}

	return res
}

// classifyQuoted surfaces the media of a quoted post. Only the quote's first
// rendered embed is inspected, and quoted GIFs are not surfaced.
func (c *Classifier) classifyQuoted(res *domain.ResolvedMedia, q *domain.QuoteEmbed) {
	if q == nil || !q.IsPost {
		return
	}

	switch qe := q.Embed.(type) {
	case *domain.VideoEmbed:
		c.setVideo(res, q.Author, qe)
	case *domain.ImagesEmbed:
		c.setImages(res, q.Author, qe)
	case *domain.RecordWithMediaEmbed:
		if images, ok := qe.Media.(*domain.ImagesEmbed); ok {
			c.setImages(res, q.Author, images)
		}
	}
}

func (c *Classifier) setVideo(res *domain.ResolvedMedia, owner domain.Author, v *domain.VideoEmbed) {
	if v.BlobRef == "" {
		return
	}
	mimeType := v.MimeType
	if mimeType == "" {
		mimeType = defaultVideoMimeType
	}

	res.Kind = domain.MediaKindVideo
	res.Video = &domain.ResolvedVideo{
		URL:         c.VideoURL(owner.DID, v.BlobRef),
		MimeType:    mimeType,
		Thumbnail:   v.Thumbnail,
		AspectRatio: v.AspectRatio,
	}
}

func (c *Classifier) setImages(res *domain.ResolvedMedia, owner domain.Author, e *domain.ImagesEmbed) {
	images := make([]domain.ResolvedImage, 0, len(e.Images))
	for _, img := range e.Images {
		imageURL := img.Fullsize
		if imageURL == "" {
			if img.BlobRef == "" {
				continue
			}
			imageURL = format.BlobURL(c.blobEndpoint, owner.DID, img.BlobRef)
		}
		images = append(images, domain.ResolvedImage{
			URL:         imageURL,
			MimeType:    format.ImageMimeType(imageURL),
			Alt:         img.Alt,
			AspectRatio: img.AspectRatio,
		})
	}
	if len(images) == 0 {
		return
	}

	res.Kind = domain.MediaKindImages
	res.Images = images
}

// setGIF treats an external embed with a thumbnail as a GIF. A link card
// without a thumbnail is left unclassified.
func (c *Classifier) setGIF(res *domain.ResolvedMedia, owner domain.Author, e *domain.ExternalEmbed) {
	if !e.HasThumb() {
		return
	}

	gif := &domain.ResolvedGIF{
		MimeType: defaultGIFMimeType,
		Title:    e.Title,
	}
	link, linkOK := format.SafeURL(e.URI)
	switch {
	case linkOK && IsGIFHost(link):
		gif.URL = link
	case e.ThumbBlobRef != "":
		gif.URL = format.BlobURL(c.blobEndpoint, owner.DID, e.ThumbBlobRef)
		if e.ThumbMimeType != "" {
			gif.MimeType = e.ThumbMimeType
		}
	default:
		thumb, ok := format.SafeURL(e.ThumbURL)
		if !ok {
			return
		}
		gif.URL = thumb
	}

	res.Kind = domain.MediaKindGIF
	res.GIF = gif
}

// VideoURL builds a blob URL for a video with a fresh r parameter, so chat
// platforms do not serve a stale or rate-limited copy of the same clip.
func (c *Classifier) VideoURL(did, blobRef string) string {
	return format.CacheBustedBlobURL(c.blobEndpoint, did, blobRef, c.rnd.IntN(cacheBustRange))
}

// IsGIFHost reports whether uri points at a host serving GIFs directly.
func IsGIFHost(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range gifHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func quotedPost(q *domain.QuoteEmbed) *domain.QuotedPost {
	if q == nil || !q.IsPost || q.Text == "" {
		return nil
	}
	return &domain.QuotedPost{
		Author: q.Author,
		Text:   q.Text,
	}
}
