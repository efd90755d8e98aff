package report

import (
	"strings"
	"testing"

	"github.com/storytrace/storytrace/internal/model"
	"github.com/storytrace/storytrace/internal/shape"
)

func processNode(id, title, when, cmd string) *model.Node {
	return &model.Node{
		ID:    id,
		Title: model.Title{Main: title},
		Time:  when,
		Entity: &model.Entity{
			Kind:    model.EntityProcess,
			Process: &model.Process{ProcessID: 1, CommandLine: cmd},
		},
	}
}

func projectionOf(doc *model.Document) *shape.Projection {
	return shape.Build(doc)
}

func TestCommandLinesOrderedByTime(t *testing.T) {
	doc := &model.Document{
		MainUser: &model.Account{Name: "alice"},
		Items: []*model.Node{
			processNode("late", "cmd.exe", "2024-05-01T11:00:00Z", "cmd /c whoami"),
			processNode("early", "powershell.exe", "2024-05-01T10:00:00Z", "powershell -nop"),
		},
	}
	out := CommandLines(doc, projectionOf(doc))

	first := strings.Index(out, "powershell -nop")
	second := strings.Index(out, "cmd /c whoami")
	if first < 0 || second < 0 {
		t.Fatalf("missing command lines in report:\n%s", out)
	}
	if first > second {
		t.Errorf("entries not in ascending time order:\n%s", out)
	}
}

func TestCommandLinesCommentFormat(t *testing.T) {
	doc := &model.Document{
		MainUser: &model.Account{Name: "alice"},
		Items: []*model.Node{
			processNode("n1", "cmd.exe", "2024-05-01T10:00:00Z", "cmd /c dir"),
		},
	}
	out := CommandLines(doc, projectionOf(doc))
	want := "# 2024-05-01T10:00:00Z - cmd.exe - User: alice\ncmd /c dir\n\n"
	if out != want {
		t.Errorf("report = %q, want %q", out, want)
	}
}

func TestCommandLinesUserFromDetails(t *testing.T) {
	n := processNode("n1", "cmd.exe", "2024-05-01T10:00:00Z", "cmd")
	n.Details = []model.Detail{{Key: "User", Value: "bob"}}
	doc := &model.Document{MainUser: &model.Account{Name: "alice"}, Items: []*model.Node{n}}
	out := CommandLines(doc, projectionOf(doc))
	if !strings.Contains(out, "User: bob") {
		t.Errorf("detail user not preferred over main user:\n%s", out)
	}
}

func TestCommandLinesUnknownFallbacks(t *testing.T) {
	n := &model.Node{
		ID: "n1",
		Entity: &model.Entity{
			Kind:    model.EntityProcess,
			Process: &model.Process{ProcessID: 1, CommandLine: "mystery.exe"},
		},
	}
	doc := &model.Document{Items: []*model.Node{n}}
	out := CommandLines(doc, projectionOf(doc))
	if !strings.Contains(out, "# unknown time - unknown process - User: unknown user") {
		t.Errorf("missing fallback comment:\n%s", out)
	}
}

func TestCommandLinesTimestamplessLast(t *testing.T) {
	doc := &model.Document{
		Items: []*model.Node{
			processNode("none", "no-time.exe", "", "first in document"),
			processNode("stamped", "timed.exe", "2024-05-01 10:00:00", "has a time"),
		},
	}
	out := CommandLines(doc, projectionOf(doc))
	if strings.Index(out, "has a time") > strings.Index(out, "first in document") {
		t.Errorf("timestampless entry must sort last:\n%s", out)
	}
}

func TestCommandLinesUseProcessCreationTime(t *testing.T) {
	n := processNode("n1", "cmd.exe", "", "cmd")
	n.Entity.Process.CreationTime = "2024-05-01T09:00:00Z"
	doc := &model.Document{Items: []*model.Node{n}}
	out := CommandLines(doc, projectionOf(doc))
	if !strings.Contains(out, "# 2024-05-01T09:00:00Z") {
		t.Errorf("entity creation time not used as fallback:\n%s", out)
	}
}

func TestCommandLinesIncludeWMIQueries(t *testing.T) {
	n := &model.Node{
		ID:      "n1",
		Title:   model.Title{Main: "wmiprvse.exe"},
		Time:    "2024-05-01T10:00:00Z",
		Details: []model.Detail{{Key: "WMI Query", Value: "SELECT * FROM Win32_Process"}},
	}
	doc := &model.Document{Items: []*model.Node{n}}
	out := CommandLines(doc, projectionOf(doc))
	if !strings.Contains(out, "WMI: SELECT * FROM Win32_Process") {
		t.Errorf("missing WMI entry:\n%s", out)
	}
}

func TestCommandLinesRespectProjection(t *testing.T) {
	doc := &model.Document{
		Items: []*model.Node{
			processNode("a", "a.exe", "2024-05-01T10:00:00Z", "visible command"),
			processNode("b", "b.exe", "2024-05-01T11:00:00Z", "outside the zoom"),
		},
	}
	p := projectionOf(doc).Zoom("a")
	out := CommandLines(doc, p)
	if !strings.Contains(out, "visible command") || strings.Contains(out, "outside the zoom") {
		t.Errorf("report must cover exactly the projection:\n%s", out)
	}
}

func TestScripts(t *testing.T) {
	s1 := processNode("s1", "powershell.exe executed a script", "2024-05-01T10:00:00Z", `Write-Host \"hi\"`)
	s2 := &model.Node{
		ID:         "s2",
		Title:      model.Title{Main: "wscript.exe"},
		ActionType: "scriptrun",
		Time:       "2024-05-01T11:00:00Z",
		Details:    []model.Detail{{Key: "Script content", Value: `line1\nline2`}},
	}
	plain := processNode("p1", "cmd.exe", "2024-05-01T09:00:00Z", "not a script")
	doc := &model.Document{Items: []*model.Node{plain, s1, s2}}

	out := Scripts(doc, projectionOf(doc))
	if strings.Contains(out, "not a script") {
		t.Errorf("non-script entry leaked into script report:\n%s", out)
	}
	if !strings.Contains(out, `Write-Host "hi"`) {
		t.Errorf("quote escape not unescaped:\n%s", out)
	}
	if !strings.Contains(out, "line1\nline2") {
		t.Errorf("newline escape not unescaped:\n%s", out)
	}
	if strings.Count(out, ruleLine) != 1 {
		t.Errorf("expected one rule line between two blocks:\n%s", out)
	}
}

func TestScriptsEmpty(t *testing.T) {
	doc := &model.Document{Items: []*model.Node{processNode("p1", "cmd.exe", "", "cmd")}}
	if out := Scripts(doc, projectionOf(doc)); out != "" {
		t.Errorf("expected empty script report, got %q", out)
	}
}

func TestIsScriptEvent(t *testing.T) {
	cases := []struct {
		node *model.Node
		want bool
	}{
		{&model.Node{ActionType: "scriptrun"}, true},
		{&model.Node{ActionType: "ScriptRun"}, true},
		{&model.Node{Title: model.Title{Main: "powershell.exe Executed a Script"}}, true},
		{&model.Node{Title: model.Title{Prefix: "host", Intro: "executed a script block"}}, true},
		{&model.Node{ActionType: "processcreated"}, false},
	}
	for i, c := range cases {
		if got := isScriptEvent(c.node); got != c.want {
			t.Errorf("case %d: isScriptEvent = %v, want %v", i, got, c.want)
		}
	}
}

func TestUnescape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`a\/b`, "a/b"},
		{`a\r\nb`, "a\nb"},
		{`a\nb`, "a\nb"},
		{`a\rb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`say \"hi\"`, `say "hi"`},
		{`C:\\Windows\\cmd.exe`, `C:\Windows\cmd.exe`},
	}
	for _, c := range cases {
		if got := Unescape(c.in); got != c.want {
			t.Errorf("Unescape(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
