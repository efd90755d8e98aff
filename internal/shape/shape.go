// Package shape computes display projections of a story tree: which
// nodes are visible, at what depth, and with what expand state. A
// projection is a pure view-level value; building or zooming one never
// mutates the underlying document.
package shape

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/storytrace/storytrace/internal/model"
)

// noiseSubtitles suppress low-value nodes from the projection. Matching
// is case-sensitive substring containment against the node subtitle.
var noiseSubtitles = []string{
	"Meta data",
	"User object",
	"Certificate information",
}

var noiseMatcher = ahocorasick.NewStringMatcher(noiseSubtitles)

// Entry is one visible node with its display depth and expand state.
type Entry struct {
	Node     *model.Node `json:"node"`
	Depth    int         `json:"depth"`
	Expanded bool        `json:"expanded"`
}

// Projection is the ordered visible subset of a document. ZoomID is the
// id of the active zoom root, empty for the full-tree projection.
type Projection struct {
	Entries []Entry `json:"entries"`
	ZoomID  string  `json:"zoomId,omitempty"`
}

// Len returns the number of visible nodes.
func (p *Projection) Len() int { return len(p.Entries) }

// Build computes the default full-tree projection: pre-order traversal
// over both child collections with noise nodes suppressed and their
// descendants promoted into the parent's position, everything expanded.
func Build(doc *model.Document) *Projection {
	p := &Projection{}
	if doc == nil {
		return p
	}
	appendVisible(p, doc.Items, 0)
	return p
}

// appendVisible walks nodes in order. A suppressed node elides only
// itself; its children and nested items are spliced in at the same
// depth, keeping their relative order.
func appendVisible(p *Projection, nodes []*model.Node, depth int) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if suppressed(n) {
			appendVisible(p, n.Children, depth)
			appendVisible(p, n.NestedItems, depth)
			continue
		}
		p.Entries = append(p.Entries, Entry{Node: n, Depth: depth, Expanded: true})
		appendVisible(p, n.Children, depth+1)
		appendVisible(p, n.NestedItems, depth+1)
	}
}

func suppressed(n *model.Node) bool {
	sub := n.Subtitle()
	if sub == "" {
		return false
	}
	return len(noiseMatcher.Match([]byte(sub))) > 0
}

// Zoom isolates the subtree of the node with the given id: the visible
// set becomes the node plus its descendants, with depths rebased so the
// target sits at depth zero. A stale id (not in the current projection)
// is a no-op returning the projection unchanged, never an error.
func (p *Projection) Zoom(id string) *Projection {
	idx := -1
	for i, e := range p.Entries {
		if e.Node.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p
	}

	root := p.Entries[idx]
	out := &Projection{ZoomID: id}
	out.Entries = append(out.Entries, Entry{Node: root.Node, Depth: 0, Expanded: root.Expanded})

	// Descendants are the contiguous run of deeper entries that follows
	// the target in pre-order.
	for _, e := range p.Entries[idx+1:] {
		if e.Depth <= root.Depth {
			break
		}
		out.Entries = append(out.Entries, Entry{
			Node:     e.Node,
			Depth:    e.Depth - root.Depth,
			Expanded: e.Expanded,
		})
	}
	return out
}

// SetExpanded flips the transient expand state of one visible node.
// Unknown ids are ignored.
func (p *Projection) SetExpanded(id string, expanded bool) {
	for i := range p.Entries {
		if p.Entries[i].Node.ID == id {
			p.Entries[i].Expanded = expanded
			return
		}
	}
}
