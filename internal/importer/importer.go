// Package importer drafts lessons from existing HTML articles. It strips
// page chrome, converts the article body to markdown, synthesizes
// frontmatter, and tags bare code fences that look like SQL. The result
// is a starting point for an author, not a finished lesson, so drafts
// are marked draft: true.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/corpus"
	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/markdown"
)

// chrome is removed before conversion. Scripts and styles would leak
// into the markdown as text; the rest is navigation, not content.
const chrome = "script, style, noscript, iframe, form, nav, header, footer, aside, svg, button"

// Draft is an imported lesson before it is written anywhere.
type Draft struct {
	FrontMatter corpus.FrontMatter
	Body        string
}

// FileName returns the lesson file name the draft should be saved under.
func (d *Draft) FileName() string {
	return d.FrontMatter.Slug + ".md"
}

// Encode renders the draft as a complete lesson file.
func (d *Draft) Encode() ([]byte, error) {
	fm, err := yaml.Marshal(d.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(d.Body))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Importer converts HTML articles into lesson drafts.
type Importer struct {
	client *http.Client
}

func New() *Importer {
	return &Importer{client: &http.Client{Timeout: 30 * time.Second}}
}

// FromURL fetches an article and converts it.
func (i *Importer) FromURL(ctx context.Context, rawURL string) (*Draft, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	return i.convert(resp.Body, u.Host)
}

// FromReader converts an article read from r, for already-saved pages.
func (i *Importer) FromReader(r io.Reader) (*Draft, error) {
	return i.convert(r, "")
}

func (i *Importer) convert(r io.Reader, host string) (*Draft, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := articleTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("article has no title")
	}

	article := articleNode(doc)
	article.Find(chrome).Remove()

	html, err := article.Html()
	if err != nil {
		return nil, fmt.Errorf("extract article html: %w", err)
	}

	// The domain makes relative hrefs absolute, so references keep
	// pointing at the source site instead of dangling in the corpus.
	// Code must come out fenced, or tagSQLFences has nothing to tag.
	converter := md.NewConverter(host, true, &md.Options{CodeBlockStyle: "fenced"})
	body, err := converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	body = tagSQLFences(body)
	body = ensureLeadingHeading(body, title)

	slug := markdown.Slug(title)
	summary := "Imported draft"
	if host != "" {
		summary = fmt.Sprintf("Imported draft from %s", host)
	}

	return &Draft{
		FrontMatter: corpus.FrontMatter{
			Title:   title,
			Slug:    slug,
			Topic:   "imported",
			Order:   99,
			Dialect: "ansi",
			Summary: summary,
			Tags:    []string{"imported"},
			Draft:   true,
		},
		Body: body,
	}, nil
}

// articleTitle prefers the first content heading over the page title,
// which usually carries site branding.
func articleTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sep := range []string{" | ", " — ", " - "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	return strings.TrimSpace(title)
}

// articleNode picks the most specific content container present.
func articleNode(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"article", "main", "[role=main]", "#content", ".content"} {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find("body").First()
}

// sqlKeywords are statement-leading words that mark a bare fence as SQL.
var sqlKeywords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "CREATE": {},
	"ALTER": {}, "DROP": {}, "WITH": {}, "EXPLAIN": {}, "PRAGMA": {},
	"BEGIN": {}, "COMMIT": {}, "ROLLBACK": {}, "VALUES": {}, "GRANT": {},
	"REVOKE": {}, "TRUNCATE": {}, "MERGE": {}, "CALL": {}, "DECLARE": {},
}

// tagSQLFences rewrites untagged code fences whose first statement leads
// with a SQL keyword into ```sql fences. Tagged fences are left alone.
func tagSQLFences(body string) string {
	lines := strings.Split(body, "\n")
	inFence := false
	fenceStart := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		if !inFence {
			inFence = true
			if trimmed == "```" {
				fenceStart = i
			} else {
				fenceStart = -1
			}
			continue
		}
		inFence = false
		if fenceStart >= 0 && looksLikeSQL(lines[fenceStart+1:i]) {
			lines[fenceStart] = strings.Replace(lines[fenceStart], "```", "```sql", 1)
		}
		fenceStart = -1
	}
	return strings.Join(lines, "\n")
}

func looksLikeSQL(content []string) bool {
	for _, line := range content {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		word := trimmed
		if i := strings.IndexAny(word, " \t("); i > 0 {
			word = word[:i]
		}
		_, ok := sqlKeywords[strings.ToUpper(word)]
		return ok
	}
	return false
}

// ensureLeadingHeading makes the draft open with an H1 so the heading
// rules have something to anchor on.
func ensureLeadingHeading(body, title string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "# ") {
		return trimmed
	}
	return "# " + title + "\n\n" + trimmed
}
