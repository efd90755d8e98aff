package stats

import (
	"testing"

	"github.com/storytrace/storytrace/internal/model"
)

func node(action string, children ...*model.Node) *model.Node {
	return &model.Node{ActionType: action, Children: children}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		action string
		want   string
	}{
		{"processcreated", "process"},
		{"ProcessCreated", "process"},
		{"scriptrun", "process"},
		{"registryvaluesetted", "registry"},
		{"filecreated", "file"},
		{"imageloaded", "file"},
		{"usercreated", "account"},
		{"accountlogon", "account"},
		{"logonattempt", "account"},
		{"networkconnection", "network"},
		{"urlaccessed", "network"},
		{"dnsquery", "network"},
		{"connectionopened", "network"},
		{"somethingelse", "other"},
		{"", "other"},
	}
	for _, c := range cases {
		got := Classify(&model.Node{ActionType: c.action})
		if got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.action, got, c.want)
		}
	}
}

func TestCount(t *testing.T) {
	doc := &model.Document{
		Items: []*model.Node{
			node("processcreated",
				node("filecreated"),
				node("registryvaluesetted"),
			),
			{
				ActionType:  "networkconnection",
				NestedItems: []*model.Node{node("logonattempt"), node("strange")},
			},
		},
	}
	c := Count(doc)
	want := Counts{Process: 1, File: 1, Registry: 1, Network: 1, Account: 1, Other: 1, Total: 6}
	if c != want {
		t.Errorf("Count = %+v, want %+v", c, want)
	}
}

func TestCountTotalMatchesSum(t *testing.T) {
	doc := &model.Document{
		Items: []*model.Node{
			node("processcreated", node("x"), node("filecreated", node("urlaccessed"))),
			node(""),
		},
	}
	c := Count(doc)
	sum := c.Process + c.File + c.Account + c.Network + c.Registry + c.Other
	if c.Total != sum {
		t.Errorf("total %d does not match category sum %d", c.Total, sum)
	}
	if c.Total != model.CountNodes(doc.Items) {
		t.Errorf("total %d does not match node count %d", c.Total, model.CountNodes(doc.Items))
	}
}

func TestCountNilDocument(t *testing.T) {
	if c := Count(nil); c.Total != 0 {
		t.Errorf("expected zero counts for nil document, got %+v", c)
	}
}
