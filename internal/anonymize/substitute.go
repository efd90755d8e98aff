package anonymize

import (
	"regexp"

	"github.com/storytrace/storytrace/internal/model"
)

// Replacer rewrites strings using a compiled AnonymizationSet. Category
// order is fixed and significant: device names go first so a fully
// qualified name is removed before any shorter domain substring inside it
// could match, then usernames, domains, device ids, and SIDs.
type Replacer struct {
	patterns []*regexp.Regexp
}

// NewReplacer compiles the set's identifiers in substitution order.
// Matching is case-insensitive and substring-anywhere, except domain
// candidates of three characters or fewer, which match only at word
// boundaries so a two-letter domain cannot corrupt unrelated text.
func NewReplacer(set Set) *Replacer {
	r := &Replacer{}
	r.addAll(set.DeviceNames, false)
	r.addAll(set.Usernames, false)
	for _, d := range set.Domains {
		r.add(d, len(d) <= 3)
	}
	r.addAll(set.DeviceIDs, false)
	r.addAll(set.SIDs, false)
	return r
}

func (r *Replacer) addAll(ids []string, boundary bool) {
	for _, id := range ids {
		r.add(id, boundary)
	}
}

func (r *Replacer) add(id string, boundary bool) {
	if id == "" {
		return
	}
	expr := `(?i)` + regexp.QuoteMeta(id)
	if boundary {
		expr = `(?i)\b` + regexp.QuoteMeta(id) + `\b`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		// QuoteMeta output always compiles; kept for safety.
		return
	}
	r.patterns = append(r.patterns, re)
}

// Rewrite applies every pattern in order to one string.
func (r *Replacer) Rewrite(s string) string {
	if s == "" {
		return s
	}
	for _, re := range r.patterns {
		s = re.ReplaceAllLiteralString(s, Placeholder)
	}
	return s
}

// Apply produces a redacted deep copy of the document. The original is
// never touched; callers re-derive the redacted view from the original
// every time the toggle flips.
func Apply(doc *model.Document, set Set) *model.Document {
	if doc == nil {
		return nil
	}
	r := NewReplacer(set)
	out := doc.Clone()

	out.DeviceID = r.Rewrite(out.DeviceID)
	out.DeviceName = r.Rewrite(out.DeviceName)
	if out.MainUser != nil {
		out.MainUser.Name = r.Rewrite(out.MainUser.Name)
		out.MainUser.Domain = r.Rewrite(out.MainUser.Domain)
	}
	model.Walk(out.Items, func(n *model.Node) { rewriteNode(r, n) })
	return out
}

// rewriteNode rewrites every string value the node carries, in both
// ordered collections and keyed records.
func rewriteNode(r *Replacer, n *model.Node) {
	n.Title.Prefix = r.Rewrite(n.Title.Prefix)
	n.Title.Main = r.Rewrite(n.Title.Main)
	n.Title.Intro = r.Rewrite(n.Title.Intro)

	for i := range n.Details {
		n.Details[i].Key = r.Rewrite(n.Details[i].Key)
		n.Details[i].Value = r.Rewrite(n.Details[i].Value)
	}
	for i := range n.AdditionalDetails {
		sec := &n.AdditionalDetails[i]
		sec.Title = r.Rewrite(sec.Title)
		for j := range sec.Details {
			sec.Details[j].Key = r.Rewrite(sec.Details[j].Key)
			sec.Details[j].Value = r.Rewrite(sec.Details[j].Value)
		}
	}
	for i := range n.AssociatedAlerts {
		n.AssociatedAlerts[i] = r.Rewrite(n.AssociatedAlerts[i])
	}
	rewriteEntity(r, n.Entity)
}

func rewriteEntity(r *Replacer, e *model.Entity) {
	if e == nil {
		return
	}
	switch e.Kind {
	case model.EntityImageFile:
		if f := e.ImageFile; f != nil {
			f.FilePath = r.Rewrite(f.FilePath)
			f.FileName = r.Rewrite(f.FileName)
		}
	case model.EntityUser:
		if u := e.User; u != nil {
			u.DomainName = r.Rewrite(u.DomainName)
			u.UserName = r.Rewrite(u.UserName)
			u.Sid = r.Rewrite(u.Sid)
		}
	case model.EntityProcess:
		if p := e.Process; p != nil {
			p.CommandLine = r.Rewrite(p.CommandLine)
			p.ParentProcessName = r.Rewrite(p.ParentProcessName)
		}
	}
}
