package graph

import (
	"context"
	"sync"
)

// In-memory implementation of Graph. Maps keyed by path on both
// directions keep lookups O(1) at the cost of double bookkeeping.
type graph struct {
	mu          sync.RWMutex
	nodes       map[Path]*Node
	forward     map[Path]map[Path]Link
	backlinks   map[Path]map[Path]Link
	subscribers map[int]chan Event
	nextSubID   int
}

func New() Graph {
	return &graph{
		nodes:       make(map[Path]*Node),
		forward:     make(map[Path]map[Path]Link),
		backlinks:   make(map[Path]map[Path]Link),
		subscribers: make(map[int]chan Event),
	}
}

func (g *graph) UpsertLesson(path Path, forward []Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[path]
	if !exists {
		node = &Node{Path: path}
		g.nodes[path] = node
		g.emit(Event{Type: CreateNode, Node: &NodeEvent{Path: path}})
	} else if node.Placeholder {
		node.Placeholder = false
		g.emit(Event{Type: UpdateNode, Node: &NodeEvent{Path: path}})
	}

	newSet := make(map[Path]Link, len(forward))
	for _, l := range forward {
		if l.Source != path {
			return ErrInvalidLink
		}
		newSet[l.Target] = l
	}

	// Remove links that disappeared, then drop placeholders they orphaned.
	for target, old := range g.forward[path] {
		if _, still := newSet[target]; still {
			continue
		}
		delete(g.forward[path], target)
		if bl := g.backlinks[target]; bl != nil {
			delete(bl, path)
			if len(bl) == 0 {
				delete(g.backlinks, target)
			}
		}
		g.emit(Event{Type: DeleteLink, Link: &LinkEvent{Source: path, Target: old.Target}})
		if ph, ok := g.nodes[target]; ok && ph.Placeholder {
			if _, hasBack := g.backlinks[target]; !hasBack {
				delete(g.nodes, target)
				g.emit(Event{Type: DeleteNode, Node: &NodeEvent{Path: target, Placeholder: true}})
			}
		}
	}

	existing := g.forward[path]
	g.forward[path] = make(map[Path]Link, len(newSet))
	for target, l := range newSet {
		if _, ok := g.nodes[target]; !ok {
			g.nodes[target] = &Node{Path: target, Placeholder: true}
			g.emit(Event{Type: CreateNode, Node: &NodeEvent{Path: target, Placeholder: true}})
		}
		g.forward[path][target] = l
		if g.backlinks[target] == nil {
			g.backlinks[target] = make(map[Path]Link)
		}
		g.backlinks[target][path] = l
		if _, had := existing[target]; !had {
			g.emit(Event{Type: CreateLink, Link: &LinkEvent{Source: path, Target: target}})
		}
	}
	return nil
}

func (g *graph) DeleteLesson(path Path) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[path]
	if !exists {
		return ErrNotFound
	}

	// Forward links go away regardless of what happens to the node.
	if fl := g.forward[path]; fl != nil {
		for target := range fl {
			if bl := g.backlinks[target]; bl != nil {
				delete(bl, path)
				if len(bl) == 0 {
					delete(g.backlinks, target)
				}
			}
			g.emit(Event{Type: DeleteLink, Link: &LinkEvent{Source: path, Target: target}})
			if ph, ok := g.nodes[target]; ok && ph.Placeholder {
				if _, hasBack := g.backlinks[target]; !hasBack {
					delete(g.nodes, target)
					g.emit(Event{Type: DeleteNode, Node: &NodeEvent{Path: target, Placeholder: true}})
				}
			}
		}
		delete(g.forward, path)
	}

	// Still linked to: keep the node around as a placeholder.
	if bl := g.backlinks[path]; len(bl) > 0 {
		if !node.Placeholder {
			node.Placeholder = true
			g.emit(Event{Type: UpdateNode, Node: &NodeEvent{Path: path, Placeholder: true}})
		}
		return nil
	}

	delete(g.nodes, path)
	g.emit(Event{Type: DeleteNode, Node: &NodeEvent{Path: path, Placeholder: node.Placeholder}})
	return nil
}

func (g *graph) Paths() []Path {
	g.mu.RLock()
	defer g.mu.RUnlock()
	paths := make([]Path, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	return paths
}

func (g *graph) ForwardLinks(path Path) ([]Link, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fl := g.forward[path]
	if fl == nil {
		return nil, nil
	}
	out := make([]Link, 0, len(fl))
	for _, l := range fl {
		out = append(out, l)
	}
	return out, nil
}

func (g *graph) BackLinks(path Path) ([]Link, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	bl := g.backlinks[path]
	if bl == nil {
		return nil, nil
	}
	out := make([]Link, 0, len(bl))
	for _, l := range bl {
		out = append(out, l)
	}
	return out, nil
}

func (g *graph) IsPlaceholder(path Path) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.nodes[path]
	if !ok {
		return false, ErrNotFound
	}
	return node.Placeholder, nil
}

func (g *graph) Subscribe(ctx context.Context) (<-chan Event, error) {
	g.mu.Lock()
	ch := make(chan Event, 16)
	sid := g.nextSubID
	g.nextSubID++
	g.subscribers[sid] = ch
	g.mu.Unlock()

	go func() {
		<-ctx.Done()
		g.mu.Lock()
		delete(g.subscribers, sid)
		close(ch)
		g.mu.Unlock()
	}()
	return ch, nil
}

// emit sends to all subscribers without blocking; slow subscribers lose
// events rather than stall a write.
func (g *graph) emit(event Event) {
	for _, ch := range g.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
