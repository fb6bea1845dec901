package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksResolvesRelative(t *testing.T) {
	html := `<html><body>
		<a href="/docs">Docs</a>
		<a href="https://other.com/page">Other</a>
	</body></html>`

	links := ExtractLinks(html, "https://example.com/start")
	require.Len(t, links, 2)
	assert.Equal(t, "Docs", links[0].Text)
	assert.Equal(t, "https://example.com/docs", links[0].Href)
	assert.Equal(t, "https://other.com/page", links[1].Href)
}

func TestExtractLinksSkipsFragmentsAndJavascript(t *testing.T) {
	html := `<html><body>
		<a href="#top">Top</a>
		<a href="javascript:void(0)">JS</a>
		<a href="/real">Real</a>
		<a href="/no-text"></a>
	</body></html>`

	links := ExtractLinks(html, "https://example.com")
	require.Len(t, links, 1)
	assert.Equal(t, "Real", links[0].Text)
}

func TestExtractLinksNormalizesWhitespace(t *testing.T) {
	html := `<a href="/a">  spread
		out   text </a>`

	links := ExtractLinks(html, "https://example.com")
	require.Len(t, links, 1)
	assert.Equal(t, "spread out text", links[0].Text)
}

func TestExtractLinksNestedText(t *testing.T) {
	html := `<a href="/b"><span>Click</span> <b>here</b></a>`

	links := ExtractLinks(html, "https://example.com")
	require.Len(t, links, 1)
	assert.Equal(t, "Click here", links[0].Text)
}
