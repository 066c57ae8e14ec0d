package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Small traversal helpers over the x/net/html node tree. The target site's
// markup is not a stable contract, so everything here is best-effort lookup
// rather than strict selection.

func parseDocument(raw string) (*html.Node, error) {
	return html.Parse(strings.NewReader(raw))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func classContains(n *html.Node, substr string) bool {
	return strings.Contains(strings.ToLower(attr(n, "class")), substr)
}

// findAll collects elements in document order matching the predicate.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	nodes := findAll(root, match)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// textContent returns the visible text of a subtree with whitespace collapsed.
// Script and style subtrees are skipped.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

var blockTags = map[string]bool{
	"div": true, "td": true, "tr": true, "li": true, "section": true,
	"article": true, "table": true, "ul": true, "body": true,
}

// closestBlock walks up to the nearest enclosing block-level element, used to
// gather labelling text around a scattered price node.
func closestBlock(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && blockTags[p.Data] {
			return p
		}
	}
	return nil
}
