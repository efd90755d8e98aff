// Package stats aggregates node-type counts over a story tree.
package stats

import (
	"strings"

	"github.com/storytrace/storytrace/internal/model"
)

// Counts holds per-category node counts. Total always equals the sum of
// the six categories and the number of nodes visited.
type Counts struct {
	Process  int `json:"process"`
	File     int `json:"file"`
	Account  int `json:"account"`
	Network  int `json:"network"`
	Registry int `json:"registry"`
	Other    int `json:"other"`
	Total    int `json:"total"`
}

// Count classifies every node in the document, recursing through both
// child collections.
func Count(doc *model.Document) Counts {
	var c Counts
	if doc == nil {
		return c
	}
	model.Walk(doc.Items, func(n *model.Node) {
		c.Total++
		switch Classify(n) {
		case "process":
			c.Process++
		case "file":
			c.File++
		case "account":
			c.Account++
		case "network":
			c.Network++
		case "registry":
			c.Registry++
		default:
			c.Other++
		}
	})
	return c
}

// Classify maps a node's action type to exactly one of the six
// categories. A missing or unrecognized type is "other".
func Classify(n *model.Node) string {
	t := strings.ToLower(n.ActionType)
	switch {
	case t == "":
		return "other"
	case strings.Contains(t, "process") || strings.Contains(t, "script"):
		return "process"
	case strings.Contains(t, "registry"):
		return "registry"
	case strings.Contains(t, "file") || strings.Contains(t, "image"):
		return "file"
	case strings.Contains(t, "user") || strings.Contains(t, "account") || strings.Contains(t, "logon"):
		return "account"
	case strings.Contains(t, "network") || strings.Contains(t, "connection") || strings.Contains(t, "url") || strings.Contains(t, "dns"):
		return "network"
	default:
		return "other"
	}
}
