// Package sqlcheck validates SQL snippets against a reference grammar.
// A snippet is accepted when the tree-sitter SQL parser produces a tree
// without ERROR or MISSING nodes; anything else becomes a positioned issue.
package sqlcheck

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/sql"
)

// Issue is a single grammar violation inside a snippet. Line is 1-based and
// Col 0-based, both relative to the snippet itself; callers add the fence
// offset to produce file positions.
type Issue struct {
	Line    int
	Col     int
	Message string
	Context string
}

// Statement is one top-level statement of a snippet.
type Statement struct {
	Text      string
	StartLine int
}

// Checker wraps a tree-sitter parser for the SQL grammar. It is not safe
// for concurrent use; each goroutine owns its own Checker and must Close it
// to release the parser's C memory.
type Checker struct {
	parser *sitter.Parser
}

func New() *Checker {
	parser := sitter.NewParser()
	parser.SetLanguage(sql.GetLanguage())
	return &Checker{parser: parser}
}

func (c *Checker) Close() {
	if c.parser != nil {
		c.parser.Close()
		c.parser = nil
	}
}

// Check parses the snippet and collects every ERROR and MISSING node.
// An empty result means the snippet is valid against the grammar.
func (c *Checker) Check(ctx context.Context, src []byte) ([]Issue, error) {
	if len(strings.TrimSpace(string(src))) == 0 {
		return nil, nil
	}

	tree, err := c.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse snippet: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var issues []Issue
	collectIssues(root, src, &issues)
	return issues, nil
}

// collectIssues walks only subtrees that contain errors.
func collectIssues(node *sitter.Node, src []byte, issues *[]Issue) {
	switch {
	case node.IsMissing():
		*issues = append(*issues, Issue{
			Line:    int(node.StartPoint().Row) + 1,
			Col:     int(node.StartPoint().Column),
			Message: fmt.Sprintf("missing %s", node.Type()),
		})
		return
	case node.Type() == "ERROR":
		*issues = append(*issues, Issue{
			Line:    int(node.StartPoint().Row) + 1,
			Col:     int(node.StartPoint().Column),
			Message: "syntax error",
			Context: errorContext(node, src),
		})
		// Do not descend: nested errors inside an ERROR region would
		// only repeat the same finding.
		return
	}

	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectIssues(node.Child(i), src, issues)
	}
}

// errorContext returns the offending text, trimmed to a single short line.
func errorContext(node *sitter.Node, src []byte) string {
	content := node.Content(src)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	content = strings.TrimSpace(content)
	const max = 60
	if len(content) > max {
		content = content[:max] + "..."
	}
	return content
}

// Statements splits a snippet into its top-level statements, preserving the
// 1-based line each statement starts on. Comments and stray semicolons are
// skipped. The split is grammar-based, so string literals containing
// semicolons do not confuse it.
func (c *Checker) Statements(ctx context.Context, src []byte) ([]Statement, error) {
	if len(strings.TrimSpace(string(src))) == 0 {
		return nil, nil
	}

	tree, err := c.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse snippet: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	var statements []Statement
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "statement" {
			continue
		}
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(child.Content(src)), ";"))
		if text == "" {
			continue
		}
		statements = append(statements, Statement{
			Text:      text,
			StartLine: int(child.StartPoint().Row) + 1,
		})
	}
	return statements, nil
}
