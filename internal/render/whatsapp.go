package render

import (
	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/format"
)

// whatsApp uses og:* naming only. Its scraper never plays inline video, so
// every post gets a large summary card.
type whatsApp struct{}

func (whatsApp) Name() string { return "whatsapp" }

func (whatsApp) PostTags(in PostInput) []Tag {
	post := in.Post
	postURL := in.CanonicalURL()
	description := format.EscapeHTML(post.Text)
	m := in.Media

	tags := append(headTags(in.Site),
		MetaProperty("og:title", format.EscapeHTML(format.AuthorDisplayName(post.Author))),
		MetaProperty("description", description),
		MetaProperty("og:site_name", in.Site.Name),
		MetaProperty("og:url", postURL),
		Refresh(postURL),
		MetaName("twitter:card", "summary_large_image"),
		MetaProperty("og:description", quotedDescription(description, m.Quote)),
	)

	switch m.Kind {
	case domain.MediaKindVideo:
		v := m.Video
		tags = append(tags,
			MetaProperty("og:video", v.URL),
			MetaProperty("og:video:secure_url", v.URL),
			MetaProperty("og:video:type", v.MimeType),
			MetaProperty("og:video:width", "0"),
			MetaProperty("og:video:height", "0"),
		)
		if v.Thumbnail != "" {
			tags = append(tags, MetaProperty("og:image", v.Thumbnail))
		}
	case domain.MediaKindImages:
		for _, img := range m.Images {
			tags = append(tags, whatsAppImage(img.URL, img.MimeType, format.EscapeHTML(img.Alt))...)
		}
	case domain.MediaKindGIF:
		tags = append(tags, whatsAppImage(m.GIF.URL, m.GIF.MimeType, format.EscapeHTML(m.GIF.Title))...)
	}

	return tags
}

func (whatsApp) ProfileTags(in ProfileInput) []Tag {
	p := in.Profile
	profileURL := in.CanonicalURL()

	tags := append(headTags(in.Site),
		MetaProperty("og:title", format.EscapeHTML(format.DisplayName(p.DisplayName, p.Handle))),
		MetaProperty("og:description", format.EscapeHTML(p.Description)),
		MetaProperty("og:site_name", in.Site.Name),
		MetaProperty("og:url", profileURL),
		Refresh(profileURL),
	)

	if p.Avatar != "" {
		tags = append(tags, whatsAppImage(p.Avatar, "image/jpeg", format.EscapeHTML(p.DisplayName))...)
	}

	return tags
}

// whatsAppImage is the og:image group for one image. WhatsApp needs real
// dimensions to pick the large layout; 600x600 is a fixed placeholder.
func whatsAppImage(url, mimeType, alt string) []Tag {
	return []Tag{
		MetaProperty("og:image", url),
		MetaProperty("og:image:secure_url", url),
		MetaProperty("og:image:type", mimeType),
		MetaProperty("og:image:width", "600"),
		MetaProperty("og:image:height", "600"),
		MetaProperty("og:image:alt", alt),
	}
}
