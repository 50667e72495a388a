package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// listingPolicy keeps the formatting agents actually use in descriptions and
// drops everything executable: script/style bodies, event-handler attributes,
// javascript: URLs.
var listingPolicy = buildListingPolicy()

var strictPolicy = bluemonday.StrictPolicy()

func buildListingPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "b", "i", "em", "strong", "ul", "ol", "li", "h3", "h4")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireNoFollowOnLinks(true)
	return p
}

// SanitizeListingHTML cleans rich-text input before it is persisted.
func SanitizeListingHTML(input string) string {
	return strings.TrimSpace(listingPolicy.Sanitize(input))
}

// SanitizeText strips all markup, for plain fields like titles and notes.
func SanitizeText(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}
