package action

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"taskagent/internal/domain/entity"
)

// ExtractLinks walks the page HTML and collects anchors that have both
// visible text and an href. Relative hrefs are resolved against the page
// URL; fragment-only and javascript: links are skipped.
func ExtractLinks(rawHTML, pageURL string) []entity.PageLink {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	base, _ := url.Parse(pageURL)
	var links []entity.PageLink

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			text := strings.Join(strings.Fields(nodeText(n)), " ")
			if href != "" && text != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
				if base != nil {
					if abs, err := base.Parse(href); err == nil {
						href = abs.String()
					}
				}
				links = append(links, entity.PageLink{Text: text, Href: href})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
