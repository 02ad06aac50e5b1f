package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// rawTextElements are serialized without escaping their text children,
// mirroring the set html.Render treats as literal.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

// Render serializes n and its subtree.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderAll serializes each node in order and concatenates the results.
func RenderAll(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// RenderInner serializes only the content of n, without its own tags.
func RenderInner(n *html.Node) (string, error) {
	var sb strings.Builder
	literal := n.Type == html.ElementNode && rawTextElements[n.Data]
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if literal && c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
