package model

import (
	"encoding/json"
	"testing"
)

func sampleDoc() *Document {
	return &Document{
		MainUser:   &Account{Name: "alice", Domain: "CORP"},
		DeviceID:   "dev-123",
		DeviceName: "host1.corp.example.com",
		Items: []*Node{
			{
				ID:         "n1",
				Title:      Title{Prefix: "powershell.exe", Main: "created process", Intro: "Process"},
				ActionType: "processcreated",
				Time:       "2024-05-01T10:00:00Z",
				Entity: &Entity{
					Kind:    EntityProcess,
					Process: &Process{ProcessID: 42, CommandLine: "powershell -enc AAA"},
				},
				Details: []Detail{{Key: "User", Value: "alice"}},
				Children: []*Node{
					{ID: "n2", Title: Title{Main: "cmd.exe"}, ActionType: "processcreated"},
				},
				NestedItems: []*Node{
					{ID: "n3", Title: Title{Main: "evil.dll"}, ActionType: "filecreated"},
				},
			},
		},
	}
}

func TestCountNodes(t *testing.T) {
	doc := sampleDoc()
	if got := CountNodes(doc.Items); got != 3 {
		t.Errorf("expected 3 nodes, got %d", got)
	}
}

func TestWalkOrder(t *testing.T) {
	doc := sampleDoc()
	var ids []string
	Walk(doc.Items, func(n *Node) { ids = append(ids, n.ID) })

	want := []string{"n1", "n2", "n3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("visit %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDoc()
	clone := doc.Clone()

	clone.MainUser.Name = "changed"
	clone.Items[0].Title.Main = "changed"
	clone.Items[0].Details[0].Value = "changed"
	clone.Items[0].Entity.Process.CommandLine = "changed"
	clone.Items[0].Children[0].ID = "changed"

	if doc.MainUser.Name != "alice" {
		t.Error("clone shares MainUser with original")
	}
	if doc.Items[0].Title.Main != "created process" {
		t.Error("clone shares node title with original")
	}
	if doc.Items[0].Details[0].Value != "alice" {
		t.Error("clone shares details with original")
	}
	if doc.Items[0].Entity.Process.CommandLine != "powershell -enc AAA" {
		t.Error("clone shares entity with original")
	}
	if doc.Items[0].Children[0].ID != "n2" {
		t.Error("clone shares children with original")
	}
}

func TestCloneNil(t *testing.T) {
	var doc *Document
	if doc.Clone() != nil {
		t.Error("expected nil clone of nil document")
	}
}

func TestEntityUnmarshalDiscriminator(t *testing.T) {
	var e Entity
	data := `{"entityType":"user","userName":"bob","domainName":"CORP","sid":"S-1-5-21-1"}`
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Kind != EntityUser {
		t.Fatalf("expected user entity, got %s", e.Kind)
	}
	if e.User.UserName != "bob" || e.User.DomainName != "CORP" || e.User.Sid != "S-1-5-21-1" {
		t.Errorf("unexpected user payload: %+v", e.User)
	}
}

func TestEntityUnmarshalProbing(t *testing.T) {
	var e Entity
	data := `{"processId":"4711","commandLine":"cmd /c whoami"}`
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Kind != EntityProcess {
		t.Fatalf("expected process entity, got %s", e.Kind)
	}
	if e.Process.ProcessID != 4711 {
		t.Errorf("expected pid 4711, got %d", e.Process.ProcessID)
	}
}

func TestEntityUnmarshalUnknown(t *testing.T) {
	var e Entity
	if err := json.Unmarshal([]byte(`{}`), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.Kind != EntityUnknown {
		t.Errorf("expected unknown entity, got %s", e.Kind)
	}
	if e.HasData() {
		t.Error("unknown entity must not report data")
	}
}

func TestEntityHasData(t *testing.T) {
	cases := []struct {
		name string
		e    *Entity
		want bool
	}{
		{"nil", nil, false},
		{"empty process", &Entity{Kind: EntityProcess, Process: &Process{}}, false},
		{"pid only", &Entity{Kind: EntityProcess, Process: &Process{ProcessID: 1}}, true},
		{"empty user", &Entity{Kind: EntityUser, User: &User{}}, false},
		{"sid only", &Entity{Kind: EntityUser, User: &User{Sid: "S-1-5-18"}}, true},
		{"file path", &Entity{Kind: EntityImageFile, ImageFile: &ImageFile{FilePath: "C:\\x"}}, true},
	}
	for _, tc := range cases {
		if got := tc.e.HasData(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestEntityMarshalRoundTrip(t *testing.T) {
	in := &Entity{Kind: EntityProcess, Process: &Process{ProcessID: 10, CommandLine: "cmd"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out Entity
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Kind != EntityProcess || out.Process.ProcessID != 10 || out.Process.CommandLine != "cmd" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestToString(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := ToString(tc.in); got != tc.want {
			t.Errorf("ToString(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
