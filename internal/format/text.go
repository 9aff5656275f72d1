// Package format holds the pure string helpers shared by the classifier and
// the renderers: HTML escaping, compact counters, display strings and URLs.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/bskye/internal/domain"
)

// QuotingMarker opens the quote block appended to descriptions.
const QuotingMarker = "\n\n🗨️Quoting: "

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	htmlUnescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&#039;", "'",
	)
)

// EscapeHTML escapes the five characters that are unsafe inside an HTML
// attribute value.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// UnescapeHTML reverses a single application of EscapeHTML.
func UnescapeHTML(s string) string {
	return htmlUnescaper.Replace(s)
}

var compactUnits = []struct {
	size   float64
	suffix string
}{
	{1e3, "K"},
	{1e6, "M"},
	{1e9, "B"},
	{1e12, "T"},
}

// Metric formats a counter in English compact notation with at most one
// fractional digit: 999 -> "999", 1500 -> "1.5K", 999950 -> "1M".
func Metric(n int) string {
	sign := ""
	abs := float64(n)
	if n < 0 {
		sign = "-"
		abs = -abs
	}
	if abs < compactUnits[0].size {
		return strconv.Itoa(n)
	}

	unit := 0
	for unit < len(compactUnits)-1 && abs >= compactUnits[unit+1].size {
		unit++
	}
	scaled := roundTenth(abs, compactUnits[unit].size)
	// Rounding can carry into the next unit (999.95K is 1M, not 1000K).
	if scaled >= 1000 && unit < len(compactUnits)-1 {
		unit++
		scaled = roundTenth(abs, compactUnits[unit].size)
	}

	return sign + humanize.FtoaWithDigits(scaled, 1) + compactUnits[unit].suffix
}

func roundTenth(v, unit float64) float64 {
	return math.Round(v*10/unit) / 10
}

// DisplayName composes "Name (@handle)", or "@handle" without a display name.
func DisplayName(displayName, handle string) string {
	if displayName != "" {
		return displayName + " (@" + handle + ")"
	}
	return "@" + handle
}

// AuthorDisplayName is DisplayName applied to an author.
func AuthorDisplayName(a domain.Author) string {
	return DisplayName(a.DisplayName, a.Handle)
}

// Quoting builds the quote block appended to a description. Both the author
// and the text are HTML-escaped.
func Quoting(author domain.Author, text string) string {
	return QuotingMarker + EscapeHTML(AuthorDisplayName(author)) + "\n" + EscapeHTML(text)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Counters joins labelled counters with single spaces, skipping nil ones:
// "💬 5 🔁 3 ❤️ 10".
func Counters(pairs ...Counter) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.Value == nil {
			continue
		}
		parts = append(parts, p.Label+" "+Metric(*p.Value))
	}
	return strings.Join(parts, " ")
}

// Counter is a labelled optional count.
type Counter struct {
	Label string
	Value *int
}
