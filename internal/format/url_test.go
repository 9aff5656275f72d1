package format

import (
	"net/url"
	"testing"
)

const testBlobEndpoint = "https://bsky.social/xrpc/com.atproto.sync.getBlob"

func TestBlobURL(t *testing.T) {
	got := BlobURL(testBlobEndpoint, "did:plc:z72i4hdhw56rfsilqqqyqj2m", "bafkreiabc")
	want := "https://bsky.social/xrpc/com.atproto.sync.getBlob?did=did:plc:z72i4hdhw56rfsilqqqyqj2m&cid=bafkreiabc"
	if got != want {
		t.Errorf("BlobURL() = %q, want %q", got, want)
	}
}

func TestBlobURL_EscapesQueryBreakers(t *testing.T) {
	got := BlobURL(testBlobEndpoint, "did:web:a&b", "c#d")
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if u.Query().Get("did") != "did:web:a&b" {
		t.Errorf("did = %q", u.Query().Get("did"))
	}
	if u.Query().Get("cid") != "c#d" {
		t.Errorf("cid = %q", u.Query().Get("cid"))
	}
}

func TestCacheBustedBlobURL(t *testing.T) {
	got := CacheBustedBlobURL(testBlobEndpoint, "did:plc:abc", "cid1", 42)
	want := testBlobEndpoint + "?did=did:plc:abc&cid=cid1&r=42"
	if got != want {
		t.Errorf("CacheBustedBlobURL() = %q, want %q", got, want)
	}
}

func TestCanonicalURLs(t *testing.T) {
	if got := PostURL("https://bsky.app", "example.bsky.social", "3l4zmomzlla2x"); got != "https://bsky.app/profile/example.bsky.social/post/3l4zmomzlla2x" {
		t.Errorf("PostURL() = %q", got)
	}
	if got := ProfileURL("https://bsky.app", "example.bsky.social"); got != "https://bsky.app/profile/example.bsky.social/" {
		t.Errorf("ProfileURL() = %q", got)
	}
	if got := PostATURI("example.bsky.social", "123"); got != "at://example.bsky.social/app.bsky.feed.post/123" {
		t.Errorf("PostATURI() = %q", got)
	}
}

func TestOEmbedURL_RoundTrip(t *testing.T) {
	author := "text &amp; more\n\n🗨️Quoting: x"
	link := "https://bsky.app/profile/example.bsky.social/"
	title := "Example User (@example.bsky.social)"
	provider := "👥 100 ➡️ 50 📸 25"

	got := OEmbedURL("http://localhost", author, link, title, provider)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if u.Path != "/oembed" {
		t.Errorf("path = %q, want /oembed", u.Path)
	}
	q := u.Query()
	for key, want := range map[string]string{"author": author, "link": link, "title": title, "provider": provider} {
		if q.Get(key) != want {
			t.Errorf("%s = %q, want %q", key, q.Get(key), want)
		}
	}
}

func TestImageMimeType(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/cid@jpeg", "image/jpeg"},
		{"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/cid@png", "image/png"},
		{"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/cid@webp", "image/webp"},
		{"https://example.com/fullsize.jpg", "image/jpeg"},
		{"https://user@example.com/a.png@gif", "image/gif"},
	}

	for _, tt := range tests {
		if got := ImageMimeType(tt.url); got != tt.want {
			t.Errorf("ImageMimeType(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://media.tenor.com/abc/cat.gif?hh=1&ww=2", "https://media.tenor.com/abc/cat.gif?hh=1&ww=2", true},
		{"https://media.tenor.com/a%20b.gif", "https://media.tenor.com/a%20b.gif", true},
		{`https://media.tenor.com/x.gif?a="><b>`, "https://media.tenor.com/x.gif?a=%22%3E%3Cb%3E", true},
		{"https://media.tenor.com/x.gif?q=café", "https://media.tenor.com/x.gif?q=caf%C3%A9", true},
		{`https://media.tenor.com/x.gif#"frag"`, "https://media.tenor.com/x.gif#%22frag%22", true},
		{"https://user:pw@media.tenor.com/x.gif", "https://media.tenor.com/x.gif", true},
		{"  https://tenor.com/x  ", "https://tenor.com/x", true},
		{"javascript:alert(1)", "", false},
		{"data:image/gif;base64,AAAA", "", false},
		{"/relative/x.gif", "", false},
		{"https://media.tenor.com/%zz", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := SafeURL(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("SafeURL(%q) = %q, %v, want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
