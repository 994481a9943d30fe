package docscan

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// extractHTMLRefs pulls unresolved references out of built HTML. When the
// generator cannot resolve a cross-reference it leaves the node as literal
// text but keeps its xref classes, e.g.
//
//	<code class="xref py py-class docutils literal">SomeClass</code>
//
// so any element still carrying an "xref" class after the build names a
// target that failed to resolve. Resolved references render as <a> and are
// not reported.
func extractHTMLRefs(r io.Reader, path string) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var refs []Ref
	var walk func(n *html.Node, insideLink bool)
	walk = func(n *html.Node, insideLink bool) {
		if n.Type == html.ElementNode {
			if n.Data == "a" {
				insideLink = true
			}
			if !insideLink && (n.Data == "code" || n.Data == "span") {
				if domain, role, ok := xrefClasses(n); ok {
					target := strings.TrimSpace(textContent(n))
					if target != "" {
						refs = append(refs, Ref{
							Domain: domain,
							Role:   role,
							Target: target,
							File:   path,
						})
					}
					return // don't descend into nested spans of the same node
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, insideLink)
		}
	}
	walk(doc, false)
	return refs, nil
}

// xrefClasses decodes the class list of an unresolved reference node.
// The classes look like "xref py py-class"; the token after "xref" is the
// domain and a "<domain>-<role>" token names the role.
func xrefClasses(n *html.Node) (domain, role string, ok bool) {
	var classAttr string
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			classAttr = attr.Val
			break
		}
	}
	classes := strings.Fields(classAttr)

	hasXref := false
	for _, c := range classes {
		if c == "xref" {
			hasXref = true
			break
		}
	}
	if !hasXref {
		return "", "", false
	}

	domain = "py"
	role = "obj"
	for _, c := range classes {
		if c == "xref" || c == "docutils" || c == "literal" || c == "notranslate" {
			continue
		}
		if i := strings.IndexByte(c, '-'); i > 0 {
			domain = c[:i]
			role = c[i+1:]
		} else {
			domain = c
		}
	}
	return domain, role, true
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
