// Package anonymize extracts sensitive identifiers from a story and
// produces a redacted copy. Extraction runs exactly once per load;
// substitution always starts from the immutable original, so toggling
// redaction on and off never accumulates.
package anonymize

import (
	"strings"

	"github.com/storytrace/storytrace/internal/model"
)

// Placeholder is the fixed literal substituted for every redacted
// identifier. It contains no letters or digits, so it can never itself
// match an extracted identifier; re-applying substitution to already
// redacted text is a no-op.
const Placeholder = "*****"

// systemAccounts are never treated as sensitive, matched by
// case-insensitive exact comparison.
var systemAccounts = map[string]bool{
	"system":          true,
	"local service":   true,
	"network service": true,
	"localsystem":     true,
	"defaultaccount":  true,
	"anonymous logon": true,
}

// systemDomains are never treated as sensitive.
var systemDomains = map[string]bool{
	"nt authority":     true,
	"nt service":       true,
	"window manager":   true,
	"font driver host": true,
	"workgroup":        true,
}

// Set holds the five disjoint identifier categories collected from one
// document. Order within a category is insertion order.
type Set struct {
	Usernames   []string `json:"usernames"`
	Domains     []string `json:"domains"`
	DeviceIDs   []string `json:"deviceIds"`
	DeviceNames []string `json:"deviceNames"`
	SIDs        []string `json:"sids"`
}

// Size returns the total number of identifiers across all categories.
func (s Set) Size() int {
	return len(s.Usernames) + len(s.Domains) + len(s.DeviceIDs) + len(s.DeviceNames) + len(s.SIDs)
}

func appendDistinct(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, have := range list {
		if strings.EqualFold(have, v) {
			return list
		}
	}
	return append(list, v)
}

func (s Set) withUsername(v string) Set {
	if systemAccounts[strings.ToLower(strings.TrimSpace(v))] {
		return s
	}
	s.Usernames = appendDistinct(s.Usernames, v)
	return s
}

func (s Set) withDomain(v string) Set {
	if systemDomains[strings.ToLower(strings.TrimSpace(v))] {
		return s
	}
	s.Domains = appendDistinct(s.Domains, v)
	return s
}

func (s Set) withSID(v string) Set {
	s.SIDs = appendDistinct(s.SIDs, v)
	return s
}

func (s Set) withDeviceID(v string) Set {
	s.DeviceIDs = appendDistinct(s.DeviceIDs, v)
	return s
}

// withDeviceName adds the full device name; for a dotted name it also
// adds the first label alone, and when at least three labels are present
// and the trailing two look like a real domain, those two joined become a
// domain candidate.
func (s Set) withDeviceName(v string) Set {
	v = strings.TrimSpace(v)
	if v == "" {
		return s
	}
	s.DeviceNames = appendDistinct(s.DeviceNames, v)

	labels := strings.Split(v, ".")
	if len(labels) > 1 && labels[0] != "" {
		s.DeviceNames = appendDistinct(s.DeviceNames, labels[0])
	}
	if len(labels) >= 3 {
		candidate := labels[len(labels)-2] + "." + labels[len(labels)-1]
		if looksLikeDomain(candidate) {
			s = s.withDomain(candidate)
		}
	}
	return s
}

// looksLikeDomain checks the plausible-domain shape for a trailing
// two-label candidate: a name label and an alphabetic TLD of 2+ chars.
func looksLikeDomain(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) < 2 {
		return false
	}
	for _, part := range parts {
		for _, r := range part {
			isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
			if !isAlnum {
				return false
			}
		}
	}
	for _, r := range parts[1] {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

// Extract collects the AnonymizationSet from a document in a single
// traversal: the declared main user, the device identity, and every User
// entity anywhere in the tree. Implemented as a pure fold; the input
// document is not touched.
func Extract(doc *model.Document) Set {
	var s Set
	if doc == nil {
		return s
	}
	if doc.MainUser != nil {
		s = s.withUsername(doc.MainUser.Name)
		s = s.withDomain(doc.MainUser.Domain)
	}
	s = s.withDeviceID(doc.DeviceID)
	s = s.withDeviceName(doc.DeviceName)
	return foldNodes(s, doc.Items)
}

func foldNodes(s Set, nodes []*model.Node) Set {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if e := n.Entity; e != nil && e.Kind == model.EntityUser && e.User != nil {
			s = s.withUsername(e.User.UserName)
			s = s.withDomain(e.User.DomainName)
			s = s.withSID(e.User.Sid)
		}
		s = foldNodes(s, n.Children)
		s = foldNodes(s, n.NestedItems)
	}
	return s
}
