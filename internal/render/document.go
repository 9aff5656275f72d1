package render

import "strings"

// Document wraps tags in the HTML page served to scrapers. Browsers follow
// the refresh tag or the body link to canonicalURL.
func Document(tags []Tag, canonicalURL string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n\t")
	b.WriteString(Join(tags))
	b.WriteString("\n</head>\n\n<body><a href=\"")
	b.WriteString(canonicalURL)
	b.WriteString("\">Click here</a> or wait to be redirected to the post</body>\n</html>")
	return b.String()
}
