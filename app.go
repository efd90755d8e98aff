package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/storytrace/storytrace/internal/anonymize"
	"github.com/storytrace/storytrace/internal/casedb"
	"github.com/storytrace/storytrace/internal/config"
	"github.com/storytrace/storytrace/internal/export"
	"github.com/storytrace/storytrace/internal/model"
	"github.com/storytrace/storytrace/internal/recovery"
	"github.com/storytrace/storytrace/internal/report"
	"github.com/storytrace/storytrace/internal/shape"
	"github.com/storytrace/storytrace/internal/stats"
)

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript.
type App struct {
	ctx   context.Context
	cfg   config.Config
	store casedb.Store

	// Per-load state. The original document is immutable after load;
	// current and the projections are derived views.
	path       string
	caseID     int64
	original   *model.Document
	idents     anonymize.Set
	counts     stats.Counts
	current    *model.Document
	full       *shape.Projection
	proj       *shape.Projection
	anonymized bool
}

// NewApp creates a new App instance.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.LoadDefault()
	if err != nil {
		logrus.WithError(err).Warn("loading settings, using defaults")
	}
	a.cfg = cfg

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}

	store, err := casedb.Open(cfg.CaseStoreDriver, cfg.CaseStoreDSN)
	if err != nil {
		// The viewer works without history; notes and recents degrade.
		logrus.WithError(err).Warn("case store unavailable")
		return
	}
	a.store = store
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.store != nil {
		a.store.Close()
	}
}

// -- File Operations --

// StoryInfo contains summary info about the loaded story.
type StoryInfo struct {
	Path            string       `json:"path"`
	DeviceName      string       `json:"deviceName"`
	DeviceID        string       `json:"deviceId"`
	NodeCount       int          `json:"nodeCount"`
	IdentifierCount int          `json:"identifierCount"`
	ParseWarning    string       `json:"parseWarning,omitempty"`
	Stats           stats.Counts `json:"stats"`
	Anonymized      bool         `json:"anonymized"`
}

// OpenStory opens a file dialog and loads an attack story export.
func (a *App) OpenStory() (*StoryInfo, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Attack Story",
		Filters: []runtime.FileFilter{
			{DisplayName: "Story Exports (*.json;*.txt)", Pattern: "*.json;*.txt"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil // user cancelled
	}
	return a.OpenStoryPath(path)
}

// OpenStoryPath loads a story from a known path, e.g. a recent case or a
// dropped file. The full validation and recovery chain runs every time.
func (a *App) OpenStoryPath(path string) (*StoryInfo, error) {
	runtime.EventsEmit(a.ctx, "load:progress", map[string]interface{}{
		"phase": "parsing", "message": "Parsing story...",
	})

	doc, err := recovery.ParseFile(path)
	if err != nil {
		a.CloseStory()
		return nil, fmt.Errorf("loading story: %w", err)
	}

	a.path = path
	a.original = doc
	// The identifier set is computed exactly once per load, before any
	// substitution.
	a.idents = anonymize.Extract(doc)
	a.counts = stats.Count(doc)
	a.anonymized = a.cfg.AnonymizeByDefault
	a.deriveViews("")

	a.recordCase()

	info := a.storyInfo()
	logrus.WithFields(logrus.Fields{
		"path":  path,
		"nodes": info.NodeCount,
	}).Info("story loaded")
	runtime.EventsEmit(a.ctx, "load:progress", map[string]interface{}{
		"phase": "done", "message": fmt.Sprintf("Loaded %d events", info.NodeCount),
	})
	return info, nil
}

// CloseStory drops the loaded story and returns to the welcome screen.
func (a *App) CloseStory() {
	a.path = ""
	a.caseID = 0
	a.original = nil
	a.idents = anonymize.Set{}
	a.counts = stats.Counts{}
	a.current = nil
	a.full = nil
	a.proj = nil
	a.anonymized = false
}

func (a *App) recordCase() {
	if a.store == nil {
		return
	}
	c := &casedb.Case{
		Path:       a.path,
		DeviceName: a.original.DeviceName,
		DeviceID:   a.original.DeviceID,
		NodeCount:  a.counts.Total,
	}
	id, err := a.store.RecordCase(c)
	if err != nil {
		logrus.WithError(err).Warn("recording case history")
		return
	}
	a.caseID = id
}

func (a *App) storyInfo() *StoryInfo {
	return &StoryInfo{
		Path:            a.path,
		DeviceName:      a.current.DeviceName,
		DeviceID:        a.current.DeviceID,
		NodeCount:       a.counts.Total,
		IdentifierCount: a.idents.Size(),
		ParseWarning:    a.original.Error,
		Stats:           a.counts,
		Anonymized:      a.anonymized,
	}
}

// deriveViews recomputes the active document and projections from the
// immutable original. zoomID, when non-empty, is re-applied; a stale id
// leaves the full projection active.
func (a *App) deriveViews(zoomID string) {
	if a.anonymized {
		a.current = anonymize.Apply(a.original, a.idents)
	} else {
		a.current = a.original.Clone()
	}
	a.full = shape.Build(a.current)
	a.proj = a.full
	if zoomID != "" {
		a.proj = a.full.Zoom(zoomID)
	}
}

// resetTransient returns the transient toggles to their defaults after a
// caught error, leaving the original document intact.
func (a *App) resetTransient() {
	if a.original == nil {
		return
	}
	a.anonymized = false
	a.deriveViews("")
}

// -- View Operations --

// ViewState is everything the display layer needs for one render.
type ViewState struct {
	Projection *shape.Projection `json:"projection"`
	Stats      stats.Counts      `json:"stats"`
	Anonymized bool              `json:"anonymized"`
	Zoomed     bool              `json:"zoomed"`
}

// GetView returns the current projection, statistics, and toggles.
func (a *App) GetView() (*ViewState, error) {
	if a.original == nil {
		return nil, fmt.Errorf("no story loaded")
	}
	return &ViewState{
		Projection: a.proj,
		Stats:      a.counts,
		Anonymized: a.anonymized,
		Zoomed:     a.proj.ZoomID != "",
	}, nil
}

// SetAnonymized flips redaction. The active view is always re-derived
// from the original, never from a previously redacted copy.
func (a *App) SetAnonymized(enabled bool) (*ViewState, error) {
	if a.original == nil {
		return nil, fmt.Errorf("no story loaded")
	}
	zoomID := ""
	if a.proj != nil {
		zoomID = a.proj.ZoomID
	}
	a.anonymized = enabled
	a.deriveViews(zoomID)
	return a.GetView()
}

// ZoomToNode isolates a node's subtree as the display root. A stale id
// is a no-op.
func (a *App) ZoomToNode(id string) (*ViewState, error) {
	if a.original == nil {
		return nil, fmt.Errorf("no story loaded")
	}
	a.proj = a.full.Zoom(id)
	return a.GetView()
}

// ExitZoom restores the full-tree projection with original depths.
func (a *App) ExitZoom() (*ViewState, error) {
	if a.original == nil {
		return nil, fmt.Errorf("no story loaded")
	}
	a.proj = a.full
	return a.GetView()
}

// SetNodeExpanded records the frontend's expand/collapse change for a
// visible node.
func (a *App) SetNodeExpanded(id string, expanded bool) {
	if a.proj != nil {
		a.proj.SetExpanded(id, expanded)
	}
}

// -- Export Operations --

func (a *App) exportOptions() export.Options {
	return export.Options{
		Anonymized: a.anonymized,
		Zoomed:     a.proj != nil && a.proj.ZoomID != "",
	}
}

func (a *App) saveDialog(defaultName, displayName, pattern string) (string, error) {
	return runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:            "Save As",
		DefaultDirectory: a.cfg.ExportDir,
		DefaultFilename:  defaultName,
		Filters: []runtime.FileFilter{
			{DisplayName: displayName, Pattern: pattern},
		},
	})
}

// ExportStory writes the current (optionally redacted) document,
// pretty-printed, under a timestamped filename.
func (a *App) ExportStory() (string, error) {
	if a.original == nil {
		return "", fmt.Errorf("no story loaded")
	}
	opts := export.Options{Anonymized: a.anonymized}
	name := export.Filename("story", time.Now(), opts, "json")
	path, err := a.saveDialog(name, "JSON Files (*.json)", "*.json")
	if err != nil || path == "" {
		return "", err
	}
	if err := export.WriteDocument(path, a.current); err != nil {
		a.resetTransient()
		return "", err
	}
	runtime.EventsEmit(a.ctx, "export:status", "Story exported")
	return path, nil
}

// SaveCapture writes a raster capture of the current projection. The
// view layer renders the PNG and hands it over base64-encoded.
func (a *App) SaveCapture(pngBase64 string) (string, error) {
	if a.original == nil {
		return "", fmt.Errorf("no story loaded")
	}
	if i := strings.Index(pngBase64, ","); i >= 0 && strings.HasPrefix(pngBase64, "data:") {
		pngBase64 = pngBase64[i+1:]
	}
	png, err := base64.StdEncoding.DecodeString(pngBase64)
	if err != nil {
		a.resetTransient()
		return "", fmt.Errorf("decoding capture: %w", err)
	}

	name := export.Filename("story_capture", time.Now(), a.exportOptions(), "png")
	path, err := a.saveDialog(name, "PNG Images (*.png)", "*.png")
	if err != nil || path == "" {
		return "", err
	}
	if err := export.WriteCapture(path, png); err != nil {
		a.resetTransient()
		return "", err
	}
	return path, nil
}

// ExportCommandLineReport writes the plain-text command-line report for
// the current projection.
func (a *App) ExportCommandLineReport() (string, error) {
	if a.original == nil {
		return "", fmt.Errorf("no story loaded")
	}
	name := export.Filename("story_cmdlines", time.Now(), a.exportOptions(), "txt")
	path, err := a.saveDialog(name, "Text Files (*.txt)", "*.txt")
	if err != nil || path == "" {
		return "", err
	}
	if err := export.WriteText(path, report.CommandLines(a.current, a.proj)); err != nil {
		a.resetTransient()
		return "", err
	}
	return path, nil
}

// ExportScriptReport writes the plain-text script report for the current
// projection.
func (a *App) ExportScriptReport() (string, error) {
	if a.original == nil {
		return "", fmt.Errorf("no story loaded")
	}
	name := export.Filename("story_scripts", time.Now(), a.exportOptions(), "txt")
	path, err := a.saveDialog(name, "Text Files (*.txt)", "*.txt")
	if err != nil || path == "" {
		return "", err
	}
	if err := export.WriteText(path, report.Scripts(a.current, a.proj)); err != nil {
		a.resetTransient()
		return "", err
	}
	return path, nil
}

// CopyCommandLine puts a node's command line on the clipboard.
func (a *App) CopyCommandLine(nodeID string) error {
	if a.proj == nil {
		return fmt.Errorf("no story loaded")
	}
	for _, e := range a.proj.Entries {
		if e.Node.ID != nodeID {
			continue
		}
		if e.Node.Entity == nil || e.Node.Entity.Kind != model.EntityProcess ||
			e.Node.Entity.Process == nil || e.Node.Entity.Process.CommandLine == "" {
			return fmt.Errorf("node has no command line")
		}
		return runtime.ClipboardSetText(a.ctx, e.Node.Entity.Process.CommandLine)
	}
	return fmt.Errorf("node not visible")
}

// -- Case History --

// GetRecentCases returns the most recently opened stories.
func (a *App) GetRecentCases() ([]casedb.Case, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.RecentCases(20)
}

// SaveNodeNote stores an examiner note for a node of the loaded case.
func (a *App) SaveNodeNote(nodeID, text string) error {
	if a.store == nil || a.caseID == 0 {
		return fmt.Errorf("case history unavailable")
	}
	return a.store.SaveNote(a.caseID, nodeID, text)
}

// GetNodeNotes returns the notes of the loaded case.
func (a *App) GetNodeNotes() ([]casedb.Note, error) {
	if a.store == nil || a.caseID == 0 {
		return nil, nil
	}
	return a.store.Notes(a.caseID)
}

// GetNodeFlags returns the ids of every flagged node of the loaded case,
// so flag state survives reopening.
func (a *App) GetNodeFlags() ([]string, error) {
	if a.store == nil || a.caseID == 0 {
		return nil, nil
	}
	return a.store.Flags(a.caseID)
}

// ToggleNodeFlag flips the examiner flag on a node and returns the new
// state.
func (a *App) ToggleNodeFlag(nodeID string) (bool, error) {
	if a.store == nil || a.caseID == 0 {
		return false, fmt.Errorf("case history unavailable")
	}
	return a.store.ToggleFlag(a.caseID, nodeID)
}

// -- Internal Helpers --

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}
