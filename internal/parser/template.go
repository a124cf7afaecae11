package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

// Template blocks are rewritten into placeholder elements before the
// fragment is handed to x/net/html, which only understands markup. The
// placeholders carry the block header in data attributes and are converted
// back into typed AST nodes after parsing.
var (
	eachOpenRe    = regexp.MustCompile(`\{#each\s+([^}]+)\}`)
	eachHeaderRe  = regexp.MustCompile(`^(.*?)\s+as\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?:,\s*([A-Za-z_$][A-Za-z0-9_$]*))?\s*(?:\(([^)]*)\))?$`)
	eachCloseRe   = regexp.MustCompile(`\{/each\}`)
	awaitOpenRe   = regexp.MustCompile(`\{#await[^}]*\}`)
	awaitClauseRe = regexp.MustCompile(`\{:(then|catch)[^}]*\}`)
	awaitCloseRe  = regexp.MustCompile(`\{/await\}`)
	blockOpenRe   = regexp.MustCompile(`\{#([a-zA-Z]+)[^}]*\}`)
	blockCloseRe  = regexp.MustCompile(`\{/[a-zA-Z]+\}`)
	blockElseRe   = regexp.MustCompile(`\{:[a-zA-Z]+[^}]*\}`)

	exprAttrRe    = regexp.MustCompile(`=\s*\{([^{}]*)\}`)
	selfClosingRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9]*)((?:[^<>"']|"[^"]*"|'[^']*')*?)\s*/>`)
	mustacheRe    = regexp.MustCompile(`\{[^{}]+\}`)
)

func parseTemplate(fragmentSource, source, filename string) (*ast.Fragment, *diag.Error) {
	pre := preprocessBlocks(fragmentSource)
	pre = quoteExprAttributes(pre)
	pre = expandSelfClosing(pre)

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(pre), body)
	if err != nil {
		return nil, diag.NewError(diag.ParseError,
			diag.LocationFromOffset(source, 0, filename),
			map[string]string{"detail": err.Error()})
	}

	conv := &converter{source: source}
	frag := &ast.Fragment{}
	for _, n := range parsed {
		frag.Nodes = append(frag.Nodes, conv.convert(n)...)
	}
	return frag, nil
}

// preprocessBlocks rewrites {#each}/{#await}/other blocks into placeholder
// elements so the HTML parser keeps their structure.
func preprocessBlocks(src string) string {
	src = eachOpenRe.ReplaceAllStringFunc(src, func(m string) string {
		header := strings.TrimSpace(eachOpenRe.FindStringSubmatch(m)[1])
		parts := eachHeaderRe.FindStringSubmatch(header)
		if parts == nil {
			// Header without an 'as' clause; keep the raw expression so the
			// IR builder can reject it with the right each-misuse code.
			return `<rsv-each data-expr="` + escapeAttr(header) + `">`
		}
		out := `<rsv-each data-expr="` + escapeAttr(strings.TrimSpace(parts[1])) +
			`" data-item="` + escapeAttr(parts[2]) + `"`
		if parts[3] != "" {
			out += ` data-index="` + escapeAttr(parts[3]) + `"`
		}
		if parts[4] != "" {
			out += ` data-key="` + escapeAttr(strings.TrimSpace(parts[4])) + `"`
		}
		return out + ">"
	})
	src = eachCloseRe.ReplaceAllString(src, "</rsv-each>")

	src = awaitOpenRe.ReplaceAllString(src, "<rsv-await></rsv-await>")
	src = awaitClauseRe.ReplaceAllString(src, "")
	src = awaitCloseRe.ReplaceAllString(src, "")

	src = blockOpenRe.ReplaceAllStringFunc(src, func(m string) string {
		name := blockOpenRe.FindStringSubmatch(m)[1]
		return `<rsv-unknown data-name="` + escapeAttr(name) + `"></rsv-unknown>`
	})
	src = blockElseRe.ReplaceAllString(src, "")
	src = blockCloseRe.ReplaceAllString(src, "")
	return src
}

// quoteExprAttributes wraps attr={expr} values in quotes; unquoted HTML
// attribute values end at the first space, which would shred expressions.
func quoteExprAttributes(src string) string {
	return exprAttrRe.ReplaceAllStringFunc(src, func(m string) string {
		inner := exprAttrRe.FindStringSubmatch(m)[1]
		return `="{` + escapeAttr(inner) + `}"`
	})
}

// expandSelfClosing rewrites <tag ... /> into <tag ...></tag>. The HTML5
// parser ignores the slash on non-void elements, which would otherwise
// swallow following siblings as children.
func expandSelfClosing(src string) string {
	return selfClosingRe.ReplaceAllString(src, "<$1$2></$1>")
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// converter rebuilds typed fragment nodes from the parsed placeholder tree.
// Offsets are estimated by searching the original source with an advancing
// cursor; document order matches source order, so the estimate is stable
// even for repeated tags.
type converter struct {
	source string
	cursor int
}

func (c *converter) convert(n *html.Node) []ast.Node {
	switch n.Type {
	case html.TextNode:
		return c.convertText(n.Data)
	case html.ElementNode:
		return []ast.Node{c.convertElement(n)}
	default:
		return nil
	}
}

func (c *converter) convertList(n *html.Node) []ast.Node {
	var out []ast.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, c.convert(child)...)
	}
	return out
}

var wsRunRe = regexp.MustCompile(`\s+`)

func (c *converter) convertText(text string) []ast.Node {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var nodes []ast.Node
	rest := text
	atStart := true
	// Whitespace collapses to single spaces; the run's outer edges are
	// trimmed, but a space against a mustache boundary is content.
	flush := func(seg string, atEnd bool) {
		if strings.TrimSpace(seg) == "" {
			return
		}
		t := wsRunRe.ReplaceAllString(seg, " ")
		if atStart {
			t = strings.TrimLeft(t, " ")
		}
		if atEnd {
			t = strings.TrimRight(t, " ")
		}
		atStart = false
		nodes = append(nodes, &ast.Text{Text: t, Start: c.find(strings.TrimSpace(t))})
	}
	for {
		loc := mustacheRe.FindStringIndex(rest)
		if loc == nil {
			flush(rest, true)
			return nodes
		}
		flush(rest[:loc[0]], false)
		atStart = false
		raw := rest[loc[0]:loc[1]]
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		start := c.find(raw)
		nodes = append(nodes, &ast.Mustache{
			Expr:  &ast.RawExpr{Text: inner, Start: start},
			Start: start,
		})
		rest = rest[loc[1]:]
	}
}

func (c *converter) convertElement(n *html.Node) ast.Node {
	switch n.Data {
	case "rsv-each":
		return c.convertEach(n)
	case "rsv-await":
		return &ast.AwaitBlock{Start: c.find("{#await")}
	case "rsv-unknown":
		return &ast.UnknownBlock{Name: htmlAttr(n, "data-name"), Start: c.find("{#" + htmlAttr(n, "data-name"))}
	}

	tag := findOriginalTag(c.source, n.Data, c.cursor)
	start := c.find("<" + tag)
	elem := &ast.Element{Tag: tag, Start: start}

	for _, attr := range n.Attr {
		switch {
		case attr.Key == "style":
			elem.StyleRaw = attr.Val
		case strings.HasPrefix(attr.Key, "on:"):
			handler, inline := handlerRef(attr.Val)
			elem.Events = append(elem.Events, &ast.EventAttr{
				Event:   attr.Key[len("on:"):],
				Handler: handler,
				Inline:  inline,
				Start:   start,
			})
		default:
			name := findOriginalAttr(c.source, start, attr.Key)
			a := &ast.Attr{Name: name, Start: start}
			if inner, ok := exprValue(attr.Val); ok {
				a.Expr = &ast.RawExpr{Text: inner, Start: start}
			} else {
				a.Value = attr.Val
			}
			elem.Attrs = append(elem.Attrs, a)
		}
	}
	elem.Children = c.convertList(n)
	return elem
}

func (c *converter) convertEach(n *html.Node) ast.Node {
	start := c.find("{#each")
	block := &ast.EachBlock{
		Expr:  &ast.RawExpr{Text: htmlAttr(n, "data-expr"), Start: start},
		Item:  htmlAttr(n, "data-item"),
		Index: htmlAttr(n, "data-index"),
		Start: start,
	}
	if key := htmlAttr(n, "data-key"); key != "" {
		block.Key = &ast.RawExpr{Text: key, Start: start}
	}
	block.Children = c.convertList(n)
	return block
}

// find locates needle at or after the cursor and advances the cursor to it.
// Falls back to a whole-source search, then to the cursor position.
func (c *converter) find(needle string) int {
	if idx := strings.Index(c.source[c.cursor:], needle); idx >= 0 {
		c.cursor += idx
		return c.cursor
	}
	if idx := strings.Index(c.source, needle); idx >= 0 {
		return idx
	}
	return c.cursor
}

// exprValue reports whether an attribute value is a {expression} and
// returns the inner expression text.
func exprValue(val string) (string, bool) {
	trimmed := strings.TrimSpace(val)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
	}
	return "", false
}

// handlerRef extracts a handler name from an on: directive value. Anything
// other than a bare {identifier} is an inline handler.
func handlerRef(val string) (name string, inline bool) {
	inner, ok := exprValue(val)
	if !ok {
		return strings.TrimSpace(val), true
	}
	if isIdent(inner) {
		return inner, false
	}
	return inner, true
}

func htmlAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
