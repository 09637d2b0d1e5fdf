package include

import (
	"bytes"
	"regexp"

	"golang.org/x/net/html"
)

// Directive is one include found in a document.
// Start and End delimit the whole comment, End exclusive.
type Directive struct {
	Target string
	Start  int
	End    int
}

var virtualAttr = regexp.MustCompile(`virtual\s*=\s*"([^"]+)"`)

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	includeKw    = []byte("#include")
)

// rawTextElements have bodies the tokenizer returns as a single text token.
// Comments in them are not HTML comments, so their bodies are searched
// for directives byte-wise instead.
var rawTextElements = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"textarea":  true,
	"title":     true,
	"xmp":       true,
}

// Scan returns the include directives in content, in document order.
//
// A directive is a complete HTML comment whose trimmed body starts with
// #include and carries virtual="...". Inside raw-text elements such as
// <script> or <title> a directive must open and close within the element
// body; a stray "<!--" there never hides markup that follows the element.
func Scan(content []byte) []Directive {
	var directives []Directive

	z := html.NewTokenizer(bytes.NewReader(content))
	offset := 0
	inRawText := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF on an in-memory reader
			return directives
		}

		raw := z.Raw()
		start := offset
		offset += len(raw)

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			inRawText = rawTextElements[string(name)]
			continue
		case html.TextToken:
			if inRawText {
				directives = append(directives, scanRawText(raw, start)...)
			}
		case html.CommentToken:
			if target, ok := parseDirective(raw); ok {
				directives = append(directives, Directive{Target: target, Start: start, End: offset})
			}
		}
		inRawText = false
	}
}

// scanRawText finds directives in the body of a raw-text element.
// base is the offset of text within the document.
func scanRawText(text []byte, base int) []Directive {
	var directives []Directive
	pos := 0
	for {
		open := bytes.Index(text[pos:], commentOpen)
		if open < 0 {
			return directives
		}
		open += pos
		end := bytes.Index(text[open+len(commentOpen):], commentClose)
		if end < 0 {
			return directives
		}
		end += open + len(commentOpen) + len(commentClose)

		if target, ok := parseDirective(text[open:end]); ok {
			directives = append(directives, Directive{Target: target, Start: base + open, End: base + end})
			pos = end
		} else {
			pos = open + len(commentOpen)
		}
	}
}

// parseDirective extracts the virtual target from a raw comment token.
func parseDirective(raw []byte) (string, bool) {
	if len(raw) < len(commentOpen)+len(commentClose) ||
		!bytes.HasPrefix(raw, commentOpen) || !bytes.HasSuffix(raw, commentClose) {
		return "", false
	}
	body := bytes.TrimSpace(raw[len(commentOpen) : len(raw)-len(commentClose)])
	if !bytes.HasPrefix(body, includeKw) {
		return "", false
	}
	m := virtualAttr.FindSubmatch(body[len(includeKw):])
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
