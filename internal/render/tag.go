// Package render synthesizes the head tags chat scrapers read to build a
// link preview, one Platform per scraper convention.
package render

import "strings"

// TagKind is the element a Tag renders as.
type TagKind int

const (
	TagCharset TagKind = iota
	TagMeta
	TagLink
)

// Tag is a single head element. Values are interpolated as given, so
// callers escape user text before building a tag.
type Tag struct {
	Kind  TagKind
	Attr  string // name, property or http-equiv
	Key   string
	Value string
	Title string // link title
}

// Charset is the utf-8 charset declaration.
func Charset() Tag {
	return Tag{Kind: TagCharset}
}

// MetaName is a <meta name=...> tag.
func MetaName(key, value string) Tag {
	return Tag{Kind: TagMeta, Attr: "name", Key: key, Value: value}
}

// MetaProperty is a <meta property=...> tag.
func MetaProperty(key, value string) Tag {
	return Tag{Kind: TagMeta, Attr: "property", Key: key, Value: value}
}

// Refresh redirects the browser to url once the document loads.
func Refresh(url string) Tag {
	return Tag{Kind: TagMeta, Attr: "http-equiv", Key: "refresh", Value: "0; url = " + url}
}

// OEmbedLink is the oEmbed discovery link.
func OEmbedLink(href, title string) Tag {
	return Tag{Kind: TagLink, Value: href, Title: title}
}

func (t Tag) String() string {
	switch t.Kind {
	case TagCharset:
		return `<meta charset="utf-8" />`
	case TagLink:
		return `<link rel="alternate" href="` + attr(t.Value) + `" type="application/json+oembed" title="` + attr(t.Title) + `" />`
	default:
		return `<meta ` + t.Attr + `="` + t.Key + `" content="` + attr(t.Value) + `" />`
	}
}

// attr keeps a value inside its double-quoted attribute. Values are escaped
// by their builders, so a raw quote only appears in an unescaped URL.
func attr(v string) string {
	return strings.ReplaceAll(v, `"`, "&quot;")
}

// Join renders tags one per line.
func Join(tags []Tag) string {
	lines := make([]string, len(tags))
	for i, t := range tags {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}
