package model

// Document is the root of one loaded attack story. It is created once per
// successful load and never mutated afterwards; anonymized or reshaped
// views are always derived from a fresh Clone.
type Document struct {
	Error      string   `json:"error,omitempty"`
	MainUser   *Account `json:"mainUser,omitempty"`
	DeviceID   string   `json:"deviceId,omitempty"`
	DeviceName string   `json:"deviceName,omitempty"`
	Items      []*Node  `json:"items"`
}

// Account is the user the story was exported for.
type Account struct {
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Title is the three-part display title of a node.
type Title struct {
	Prefix string `json:"prefix,omitempty"`
	Main   string `json:"main,omitempty"`
	Intro  string `json:"intro,omitempty"`
}

// Node is a single event entry in the story tree. Children and NestedItems
// are two distinct ordered child collections; both are temporally
// meaningful and both are traversed by statistics, anonymization, and
// shaping.
type Node struct {
	ID                string                    `json:"id"`
	Title             Title                     `json:"title"`
	ActionType        string                    `json:"actionType,omitempty"`
	Time              string                    `json:"time,omitempty"`
	Entity            *Entity                   `json:"entity,omitempty"`
	Details           []Detail                  `json:"details,omitempty"`
	AdditionalDetails []AdditionalDetailSection `json:"additionalDetails,omitempty"`
	Children          []*Node                   `json:"children,omitempty"`
	NestedItems       []*Node                   `json:"nestedItems,omitempty"`
	AssociatedAlerts  []string                  `json:"associatedAlerts,omitempty"`
}

// Detail is one key/value display pair attached to a node.
type Detail struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ValueType string `json:"valueType,omitempty"`
}

// AdditionalDetailSection is a titled group of details.
type AdditionalDetailSection struct {
	Title   string   `json:"title"`
	Details []Detail `json:"details,omitempty"`
}

// Walk visits every node of the tree in pre-order, descending through
// both child collections (Children before NestedItems, matching the
// display order).
func Walk(items []*Node, fn func(*Node)) {
	for _, n := range items {
		if n == nil {
			continue
		}
		fn(n)
		Walk(n.Children, fn)
		Walk(n.NestedItems, fn)
	}
}

// CountNodes returns the total transitive node count across both child
// collections.
func CountNodes(items []*Node) int {
	total := 0
	Walk(items, func(*Node) { total++ })
	return total
}

// Clone returns a full deep copy of the document. Derived views
// (anonymized copies, projections) operate on clones so the original
// stays valid for further actions.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Error:      d.Error,
		DeviceID:   d.DeviceID,
		DeviceName: d.DeviceName,
		Items:      cloneNodes(d.Items),
	}
	if d.MainUser != nil {
		u := *d.MainUser
		out.MainUser = &u
	}
	return out
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Clone returns a deep copy of the node and its entire subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:         n.ID,
		Title:      n.Title,
		ActionType: n.ActionType,
		Time:       n.Time,
		Entity:     n.Entity.Clone(),
	}
	if n.Details != nil {
		out.Details = make([]Detail, len(n.Details))
		copy(out.Details, n.Details)
	}
	if n.AdditionalDetails != nil {
		out.AdditionalDetails = make([]AdditionalDetailSection, len(n.AdditionalDetails))
		for i, s := range n.AdditionalDetails {
			sec := AdditionalDetailSection{Title: s.Title}
			if s.Details != nil {
				sec.Details = make([]Detail, len(s.Details))
				copy(sec.Details, s.Details)
			}
			out.AdditionalDetails[i] = sec
		}
	}
	out.Children = cloneNodes(n.Children)
	out.NestedItems = cloneNodes(n.NestedItems)
	if n.AssociatedAlerts != nil {
		out.AssociatedAlerts = make([]string, len(n.AssociatedAlerts))
		copy(out.AssociatedAlerts, n.AssociatedAlerts)
	}
	return out
}

// Subtitle returns the text the view shows under the main title. The
// shaping denylist matches against this.
func (n *Node) Subtitle() string {
	return n.Title.Intro
}
