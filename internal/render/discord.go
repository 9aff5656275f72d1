package render

import (
	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/format"
)

// oembedTextLimit bounds text carried through the oEmbed link and the
// profile description.
const oembedTextLimit = 250

// discord names its tags twitter:* and carries engagement counters through
// an oEmbed link; videos play inline through a player card.
type discord struct{}

func (discord) Name() string { return "discord" }

func (discord) PostTags(in PostInput) []Tag {
	post := in.Post
	postURL := in.CanonicalURL()
	displayName := format.EscapeHTML(format.AuthorDisplayName(post.Author))
	description := format.EscapeHTML(post.Text)
	provider := format.Counters(
		format.Counter{Label: "💬", Value: post.Counts.Replies},
		format.Counter{Label: "🔁", Value: post.Counts.Reposts},
		format.Counter{Label: "❤️", Value: post.Counts.Likes},
	)
	linkTitle := "@" + format.EscapeHTML(in.Handle)
	m := in.Media

	tags := append(headTags(in.Site),
		MetaName("twitter:title", displayName),
		MetaProperty("og:site_name", in.Site.Name),
		MetaProperty("og:url", postURL),
		Refresh(postURL),
	)

	// Discord hides og:description under a player card, so video text
	// travels as the oEmbed author instead.
	if m.Kind == domain.MediaKindVideo {
		text := format.Truncate(description, oembedTextLimit)
		text = format.Truncate(quotedDescription(text, m.Quote), oembedTextLimit)
		v := m.Video

		return append(tags,
			MetaName("twitter:card", "player"),
			MetaName("twitter:player:width", "0"),
			MetaName("twitter:player:height", "0"),
			MetaName("twitter:player:stream", v.URL),
			MetaName("twitter:player:stream:content_type", v.MimeType),
			MetaProperty("og:video", v.URL),
			MetaProperty("og:video:secure_url", v.URL),
			MetaProperty("og:video:type", v.MimeType),
			MetaProperty("og:video:width", "0"),
			MetaProperty("og:video:height", "0"),
			OEmbedLink(format.OEmbedURL(in.Host, text, postURL, displayName, provider), linkTitle),
		)
	}

	tags = append(tags,
		OEmbedLink(format.OEmbedURL(in.Host, "", postURL, displayName, provider), linkTitle),
		MetaProperty("og:description", quotedDescription(description, m.Quote)),
	)

	switch m.Kind {
	case domain.MediaKindImages:
		for _, img := range m.Images {
			tags = append(tags, discordImage(img.URL, img.MimeType, format.EscapeHTML(img.Alt))...)
		}
	case domain.MediaKindGIF:
		tags = append(tags, discordImage(m.GIF.URL, m.GIF.MimeType, format.EscapeHTML(m.GIF.Title))...)
	}

	return tags
}

func (discord) ProfileTags(in ProfileInput) []Tag {
	p := in.Profile
	profileURL := in.CanonicalURL()
	displayName := format.EscapeHTML(format.DisplayName(p.DisplayName, p.Handle))
	provider := format.Counters(
		format.Counter{Label: "👥", Value: p.FollowersCount},
		format.Counter{Label: "➡️", Value: p.FollowsCount},
		format.Counter{Label: "📸", Value: p.PostsCount},
	)

	tags := append(headTags(in.Site),
		MetaName("twitter:title", displayName),
		MetaProperty("og:site_name", in.Site.Name),
		MetaProperty("og:url", profileURL),
		Refresh(profileURL),
		MetaProperty("og:description", format.Truncate(format.EscapeHTML(p.Description), oembedTextLimit)),
		OEmbedLink(format.OEmbedURL(in.Host, "", profileURL, displayName, provider), "@"+format.EscapeHTML(p.Handle)),
	)

	if p.Avatar != "" {
		tags = append(tags, discordImage(p.Avatar, "image/jpeg", format.EscapeHTML(p.DisplayName))...)
	}

	return tags
}

// discordImage is the card group for one image. Discord sizes images
// itself, so dimensions are zero placeholders.
func discordImage(url, mimeType, alt string) []Tag {
	return []Tag{
		MetaName("twitter:card", "summary_large_image"),
		MetaProperty("twitter:image", url),
		MetaProperty("og:image", url),
		MetaProperty("og:image:secure_url", url),
		MetaProperty("og:image:type", mimeType),
		MetaProperty("og:image:width", "0"),
		MetaProperty("og:image:height", "0"),
		MetaProperty("og:image:alt", alt),
	}
}
