package format

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// queryEscape percent-encodes a query value. Colons stay literal since DIDs
// are colon-separated and ':' is legal inside a query.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%3A", ":")
}

// BlobURL builds the blob retrieval URL for a blob owned by did.
func BlobURL(endpoint, did, cid string) string {
	return endpoint + "?did=" + queryEscape(did) + "&cid=" + queryEscape(cid)
}

// CacheBustedBlobURL is BlobURL with the r cache-busting parameter.
func CacheBustedBlobURL(endpoint, did, cid string, r int) string {
	return BlobURL(endpoint, did, cid) + "&r=" + strconv.Itoa(r)
}

// PostURL is the canonical web URL of a post.
func PostURL(webURL, handle, postID string) string {
	return webURL + "/profile/" + url.PathEscape(handle) + "/post/" + url.PathEscape(postID)
}

// ProfileURL is the canonical web URL of a profile. It keeps the trailing slash.
func ProfileURL(webURL, handle string) string {
	return webURL + "/profile/" + url.PathEscape(handle) + "/"
}

// PostATURI is the at:// URI the AppView expects for a post.
func PostATURI(handle, postID string) string {
	return "at://" + handle + "/app.bsky.feed.post/" + postID
}

// OEmbedURL builds the oEmbed discovery URL. Each field is percent-encoded
// on its own; callers pass values that are already HTML-escaped.
func OEmbedURL(host, author, link, title, provider string) string {
	var b strings.Builder
	b.WriteString(host)
	b.WriteString("/oembed?author=")
	b.WriteString(url.QueryEscape(author))
	b.WriteString("&link=")
	b.WriteString(url.QueryEscape(link))
	b.WriteString("&title=")
	b.WriteString(url.QueryEscape(title))
	b.WriteString("&provider=")
	b.WriteString(url.QueryEscape(provider))
	return b.String()
}

// ImageMimeType infers an image MIME type from the CDN "@format" suffix,
// defaulting to image/jpeg.
func ImageMimeType(imageURL string) string {
	if i := strings.LastIndex(imageURL, "@"); i != -1 {
		return "image/" + imageURL[i+1:]
	}
	return "image/jpeg"
}

// SafeURL re-encodes an untrusted absolute http(s) URL so it can sit inside
// a double-quoted attribute. Quotes, angle brackets, whitespace and
// non-ASCII bytes are percent-encoded. Anything else is rejected.
func SafeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Opaque != "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if u.Host == "" || strings.ContainsAny(u.Host, "\"'<>` \t\r\n\\") {
		return "", false
	}

	u.User = nil
	u.RawPath = ""
	u.RawFragment = ""
	u.RawQuery = escapeUnsafe(u.RawQuery)
	return u.String(), true
}

// escapeUnsafe percent-encodes the bytes of an already-encoded component
// that would be unsafe in markup, leaving existing escapes alone.
func escapeUnsafe(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("\"'<>`\\", c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
