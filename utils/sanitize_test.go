package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeListingHTMLStripsScripts(t *testing.T) {
	out := SanitizeListingHTML(`<p>Sunny flat</p><script>alert("x")</script>`)
	assert.Equal(t, "<p>Sunny flat</p>", out)
}

func TestSanitizeListingHTMLStripsEventHandlers(t *testing.T) {
	out := SanitizeListingHTML(`<p onclick="steal()">Great view</p>`)
	assert.Equal(t, "<p>Great view</p>", out)
}

func TestSanitizeListingHTMLKeepsFormatting(t *testing.T) {
	in := "<h3>Features</h3><ul><li><strong>3</strong> bedrooms</li><li><em>2</em> baths</li></ul>"
	assert.Equal(t, in, SanitizeListingHTML(in))
}

func TestSanitizeListingHTMLDropsJavascriptHrefs(t *testing.T) {
	out := SanitizeListingHTML(`<a href="javascript:alert(1)">tour</a>`)
	assert.NotContains(t, out, "javascript")
}

func TestSanitizeListingHTMLAddsNoFollow(t *testing.T) {
	out := SanitizeListingHTML(`<a href="https://example.com">site</a>`)
	assert.Contains(t, out, `rel="nofollow"`)
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestSanitizeTextStripsAllMarkup(t *testing.T) {
	assert.Equal(t, "Cozy cottage", SanitizeText("<b>Cozy</b> cottage"))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
}

func TestSanitizeTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  hello  "))
}
