// Package lessons embeds the shipped curriculum. The CLI falls back to
// this copy when the default corpus root holds no lessons, so linting,
// serving and running examples work straight from the installed binary.
package lessons

import "embed"

//go:embed *.md glossary.yaml luxsql.yaml
var FS embed.FS
