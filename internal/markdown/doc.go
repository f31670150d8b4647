// Package markdown turns lesson source into the structure the rest of the
// toolchain works with: headings, fenced code blocks, and links, all with
// source positions. Parsing is done with goldmark; positions are 1-based
// lines and 0-based columns so they can be handed to LSP clients unchanged.
package markdown

// Doc is the parsed structure of one markdown document.
type Doc struct {
	Headings []Heading
	Blocks   []CodeBlock
	Links    []Link
}

// Heading is a single ATX or setext heading.
type Heading struct {
	Level  int
	Text   string
	Anchor string // unique within the document, GitHub-style
	Line   int
}

// CodeBlock is a fenced code block. The info string is split into the
// language and the remaining key=value attributes, e.g.
//
//	```sql dialect=mysql norun
//
// yields Lang "sql" and Attrs {"dialect": "mysql", "norun": ""}.
type CodeBlock struct {
	Lang      string
	Attrs     map[string]string
	Content   string
	FenceLine int // line of the opening fence, 0 when unknown
	StartLine int // first content line
	EndLine   int // last content line
}

// HasAttr reports whether the bare or valued attribute is present.
func (b CodeBlock) HasAttr(key string) bool {
	_, ok := b.Attrs[key]
	return ok
}

// Dialect returns the dialect attribute, or "" for portable blocks.
func (b CodeBlock) Dialect() string {
	return b.Attrs["dialect"]
}

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

// Link is a link or image occurrence. Line/Col/EndCol locate the
// destination text in the source where it could be found, otherwise the
// enclosing block.
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
	Col         int
	EndCol      int
}

// External reports whether the destination points outside the corpus.
func (l Link) External() bool {
	return hasScheme(l.Destination)
}

// FragmentOnly reports whether the link targets an anchor in its own file.
func (l Link) FragmentOnly() bool {
	return len(l.Destination) > 0 && l.Destination[0] == '#'
}

// SplitTarget splits an internal destination into path and fragment parts.
// "window-functions.md#frames" yields ("window-functions.md", "frames").
func (l Link) SplitTarget() (path, fragment string) {
	dest := l.Destination
	for i := 0; i < len(dest); i++ {
		if dest[i] == '#' {
			return dest[:i], dest[i+1:]
		}
	}
	return dest, ""
}

func hasScheme(dest string) bool {
	if len(dest) >= 2 && dest[0] == '/' && dest[1] == '/' {
		return true
	}
	for i := 0; i < len(dest); i++ {
		c := dest[i]
		if c == ':' {
			return i > 0
		}
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return false
}
