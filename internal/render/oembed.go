package render

import "github.com/iconidentify/bskye/internal/format"

// OEmbed is the oEmbed "link" response a Discord-style consumer fetches from
// the discovery link.
type OEmbed struct {
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Version      string `json:"version"`
}

// NewOEmbed builds the response for already percent-decoded query values.
// Values were HTML-escaped before they were put in the discovery URL, so
// they are unescaped here.
func NewOEmbed(site Site, author, link, title, provider string) OEmbed {
	providerName := site.Name
	if provider = format.UnescapeHTML(provider); provider != "" {
		providerName += " - " + provider
	}

	return OEmbed{
		AuthorName:   format.UnescapeHTML(author),
		AuthorURL:    format.UnescapeHTML(link),
		ProviderName: providerName,
		ProviderURL:  site.ProviderURL,
		Title:        format.UnescapeHTML(title),
		Type:         "link",
		Version:      "1.0",
	}
}
