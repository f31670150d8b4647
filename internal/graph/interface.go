// Package graph maintains the in-memory link topology of a corpus: which
// lesson links to which, with live change events. Lessons that are linked
// to but do not exist yet appear as placeholder nodes, which is how the
// language server knows a link is dangling without re-linting the world.
package graph

import (
	"context"
	"errors"

	lsp "github.com/tliron/glsp/protocol_3_16"
)

type Path = string

// Node is one lesson in the topology. Placeholder nodes are link targets
// with no lesson behind them yet.
type Node = struct {
	Path        Path
	Placeholder bool
}

// Link is a directed edge between two lessons. Ranges locate every
// occurrence of the link in the source document.
type Link struct {
	Source Path
	Target Path
	Ranges []lsp.Range
}

type EventType int

const (
	CreateNode EventType = iota
	UpdateNode           // placeholder status flipped
	DeleteNode
	CreateLink
	DeleteLink
)

// LinkEvent carries topology only. A link whose ranges moved but whose
// endpoints stayed produces no event.
type LinkEvent struct {
	Source Path `json:"source"`
	Target Path `json:"target"`
}

type NodeEvent = Node

// Event describes a single change to the topology.
type Event struct {
	Type EventType
	Node *NodeEvent
	Link *LinkEvent
}

var (
	ErrInvalidLink = errors.New("graph: link source does not match the upserted lesson")
	ErrNotFound    = errors.New("graph: lesson not found")
)

type Graph interface {
	// UpsertLesson replaces the outgoing links of a lesson, creating the
	// node if needed and placeholders for any unknown targets.
	UpsertLesson(path Path, forward []Link) error

	// DeleteLesson removes a lesson, or downgrades it to a placeholder
	// when other lessons still link to it.
	DeleteLesson(path Path) error

	// Paths returns every known path, placeholders included.
	Paths() []Path

	// ForwardLinks returns the outgoing links of a lesson.
	ForwardLinks(path Path) ([]Link, error)

	// BackLinks returns the incoming links of a lesson.
	BackLinks(path Path) ([]Link, error)

	IsPlaceholder(path Path) (bool, error)

	// Subscribe returns a channel of change events until ctx is canceled.
	// Events are dropped rather than block a slow subscriber.
	Subscribe(ctx context.Context) (<-chan Event, error)
}
