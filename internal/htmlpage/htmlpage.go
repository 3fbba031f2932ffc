// Package htmlpage pulls crawlable links and visible text out of fetched
// HTML. Both operations are pure and never fail; malformed markup yields
// whatever the parser recovers.
package htmlpage

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// Extractor is safe for concurrent use.
type Extractor struct {
	policy *bluemonday.Policy
}

// New returns an Extractor with a tag-stripping policy that keeps word
// boundaries between elements.
func New() *Extractor {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return &Extractor{policy: p}
}

// ExtractText returns the visible text of content with entities decoded and
// whitespace collapsed. Script and style bodies are dropped.
func (e *Extractor) ExtractText(content string) string {
	stripped := e.policy.Sanitize(content)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

// ExtractLinks returns the absolute http(s) targets of every <a href> in
// content, resolved against baseURL, without fragments, deduplicated in
// document order.
func (e *Extractor) ExtractLinks(content, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	root, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if !strings.EqualFold(a.Key, "href") {
					continue
				}
				if link := resolve(base, a.Val); link != "" {
					if _, dup := seen[link]; !dup {
						seen[link] = struct{}{}
						links = append(links, link)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "data:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
