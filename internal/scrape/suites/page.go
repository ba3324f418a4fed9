package suites

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ogTags extracts Open Graph <meta property="og:*"> values from a video
// page. Only the first occurrence of each property is kept.
func ogTags(body []byte) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string)
	doc.Find(`meta[property]`).Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		if !strings.HasPrefix(prop, "og:") {
			return
		}
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		if _, seen := tags[prop]; !seen {
			tags[prop] = content
		}
	})
	return tags, nil
}

// canonicalLink walks the document for <link rel="canonical">, falling back
// to the <title> text for pages without usable og tags. html.Parse tolerates
// broken markup, so real-world pages never error here.
func canonicalLink(body []byte) (link, title string) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				var rel, href string
				for _, a := range n.Attr {
					switch a.Key {
					case "rel":
						rel = a.Val
					case "href":
						href = a.Val
					}
				}
				if rel == "canonical" && link == "" {
					link = href
				}
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return link, title
}
