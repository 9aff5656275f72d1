package render

import (
	"strings"

	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/format"
)

// Site holds the branding and URLs shared by every platform.
type Site struct {
	Name        string
	ThemeColor  string
	WebURL      string // canonical Bluesky web app
	ProviderURL string // oEmbed provider_url
}

// DefaultSite is the public bskye deployment.
var DefaultSite = Site{
	Name:        "bskye",
	ThemeColor:  "#0a7aff",
	WebURL:      "https://bsky.app",
	ProviderURL: "https://bskye.app/",
}

// PostInput is everything a platform needs to describe a post.
type PostInput struct {
	Site   Site
	Host   string // scheme://host of the incoming request, for the oEmbed link
	Handle string // handle or DID as it appeared in the request path
	PostID string
	Post   *domain.Post
	Media  domain.ResolvedMedia
}

// CanonicalURL is the web app URL of the post.
func (in PostInput) CanonicalURL() string {
	return format.PostURL(in.Site.WebURL, in.Handle, in.PostID)
}

// ProfileInput is everything a platform needs to describe a profile.
type ProfileInput struct {
	Site    Site
	Host    string
	Profile *domain.Profile
}

// CanonicalURL is the web app URL of the profile.
func (in ProfileInput) CanonicalURL() string {
	return format.ProfileURL(in.Site.WebURL, in.Profile.Handle)
}

// Platform renders head tags following one scraper's conventions.
// Classification is shared; platforms differ only in presentation.
type Platform interface {
	Name() string
	PostTags(in PostInput) []Tag
	ProfileTags(in ProfileInput) []Tag
}

// Built-in platforms.
var (
	Discord  Platform = discord{}
	WhatsApp Platform = whatsApp{}
)

type agentRule struct {
	needle   string
	platform Platform
}

// agentRules are matched in order against the lowercased User-Agent.
var agentRules = []agentRule{
	{"discord", Discord},
	{"whatsapp", WhatsApp},
	{"telegram", WhatsApp},
}

// Detect returns the platform whose scraper sent userAgent.
func Detect(userAgent string) (Platform, bool) {
	ua := strings.ToLower(userAgent)
	for _, r := range agentRules {
		if strings.Contains(ua, r.needle) {
			return r.platform, true
		}
	}
	return nil, false
}

// ForUserAgent is Detect with an explicit Discord fallback for agents no
// rule recognizes.
func ForUserAgent(userAgent string) Platform {
	if p, ok := Detect(userAgent); ok {
		return p
	}
	return Discord
}

// headTags are the leading tags common to both platforms up to the title.
func headTags(site Site) []Tag {
	return []Tag{
		Charset(),
		MetaName("theme-color", site.ThemeColor),
	}
}

func quotedDescription(description string, q *domain.QuotedPost) string {
	if q.HasText() {
		return description + format.Quoting(q.Author, q.Text)
	}
	return description
}
