// Package report renders plain-text reports over the current projection:
// every command line in view, and the contents of script-execution
// events.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/storytrace/storytrace/internal/model"
	"github.com/storytrace/storytrace/internal/shape"
)

// ruleLine separates blocks in the script report.
const ruleLine = "----------------------------------------"

// entry is one report line pair: the comment header and the content.
type entry struct {
	when    time.Time
	hasTime bool
	label   string
	process string
	user    string
	content string
}

// acceptedTimeLayouts covers the timestamp shapes seen in exports.
var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// bestTimestamp picks the item's best available timestamp: its own time
// field, else the process entity creation time.
func bestTimestamp(n *model.Node) (time.Time, string, bool) {
	if t, ok := parseTime(n.Time); ok {
		return t, n.Time, true
	}
	if n.Entity != nil && n.Entity.Kind == model.EntityProcess && n.Entity.Process != nil {
		if t, ok := parseTime(n.Entity.Process.CreationTime); ok {
			return t, n.Entity.Process.CreationTime, true
		}
	}
	return time.Time{}, "unknown time", false
}

func processName(n *model.Node) string {
	if n.Title.Main != "" {
		return n.Title.Main
	}
	if n.Entity != nil && n.Entity.Kind == model.EntityImageFile &&
		n.Entity.ImageFile != nil && n.Entity.ImageFile.FileName != "" {
		return n.Entity.ImageFile.FileName
	}
	return "unknown process"
}

func userName(n *model.Node, doc *model.Document) string {
	for _, d := range n.Details {
		if strings.EqualFold(d.Key, "user") || strings.EqualFold(d.Key, "username") {
			if d.Value != "" {
				return d.Value
			}
		}
	}
	if doc != nil && doc.MainUser != nil && doc.MainUser.Name != "" {
		return doc.MainUser.Name
	}
	return "unknown user"
}

// isWMIQueryDetail reports whether a detail carries a WMI query.
func isWMIQueryDetail(d model.Detail) bool {
	return strings.EqualFold(d.Key, "wmi query") || strings.EqualFold(d.Key, "wmiquery")
}

// collectCommandEntries gathers one entry per command-line occurrence in
// the projection: the process entity command line, and any WMI-query
// detail prefixed "WMI: ".
func collectCommandEntries(doc *model.Document, p *shape.Projection) []entry {
	var entries []entry
	for _, e := range p.Entries {
		n := e.Node
		when, label, hasTime := bestTimestamp(n)
		base := entry{
			when: when, hasTime: hasTime, label: label,
			process: processName(n), user: userName(n, doc),
		}
		if n.Entity != nil && n.Entity.Kind == model.EntityProcess &&
			n.Entity.Process != nil && n.Entity.Process.CommandLine != "" {
			cmd := base
			cmd.content = n.Entity.Process.CommandLine
			entries = append(entries, cmd)
		}
		for _, d := range n.Details {
			if isWMIQueryDetail(d) && d.Value != "" {
				wmi := base
				wmi.content = "WMI: " + d.Value
				entries = append(entries, wmi)
			}
		}
	}
	return entries
}

// sortEntries orders ascending by timestamp; entries without one sort
// last, otherwise keeping their original order.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].hasTime != entries[j].hasTime {
			return entries[i].hasTime
		}
		if !entries[i].hasTime {
			return false
		}
		return entries[i].when.Before(entries[j].when)
	})
}

func (e entry) comment() string {
	return "# " + e.label + " - " + e.process + " - User: " + e.user
}

// CommandLines renders the command-line report for the current
// projection: one entry per occurrence, each preceded by its comment
// line.
func CommandLines(doc *model.Document, p *shape.Projection) string {
	entries := collectCommandEntries(doc, p)
	sortEntries(entries)

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.comment())
		b.WriteString("\n")
		b.WriteString(e.content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// isScriptEvent identifies "executed a script" items.
func isScriptEvent(n *model.Node) bool {
	if strings.EqualFold(n.ActionType, "scriptrun") {
		return true
	}
	title := n.Title.Prefix + " " + n.Title.Main + " " + n.Title.Intro
	return strings.Contains(strings.ToLower(title), "executed a script")
}

// Scripts renders the script report: the same selection and sort logic
// restricted to script-execution events, with content passed through the
// readability unescape and blocks separated by a rule line.
func Scripts(doc *model.Document, p *shape.Projection) string {
	var entries []entry
	for _, e := range p.Entries {
		n := e.Node
		if !isScriptEvent(n) {
			continue
		}
		when, label, hasTime := bestTimestamp(n)
		base := entry{
			when: when, hasTime: hasTime, label: label,
			process: processName(n), user: userName(n, doc),
		}
		if n.Entity != nil && n.Entity.Kind == model.EntityProcess &&
			n.Entity.Process != nil && n.Entity.Process.CommandLine != "" {
			cmd := base
			cmd.content = Unescape(n.Entity.Process.CommandLine)
			entries = append(entries, cmd)
		}
		for _, d := range n.Details {
			if strings.Contains(strings.ToLower(d.Key), "script") && d.Value != "" {
				sc := base
				sc.content = Unescape(d.Value)
				entries = append(entries, sc)
			}
		}
	}
	sortEntries(entries)

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(ruleLine)
			b.WriteString("\n")
		}
		b.WriteString(e.comment())
		b.WriteString("\n")
		b.WriteString(e.content)
		b.WriteString("\n")
	}
	return b.String()
}

// Unescape makes copied script content readable: separator unescape,
// Windows/Unix/Mac newline escapes to real line breaks, tab and quote
// unescape, and backslash unescape performed last.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, `\/`, `/`)
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
