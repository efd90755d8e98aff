// Package export names and writes output artifacts: the serialized
// story, raster captures handed over by the view layer, and plain-text
// reports.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/storytrace/storytrace/internal/model"
)

// Options control the artifact filename suffixes.
type Options struct {
	Anonymized bool
	Zoomed     bool
}

// Filename builds "<base>_<timestamp>[_zoomed][_anonymized].<ext>".
func Filename(base string, t time.Time, opts Options, ext string) string {
	name := fmt.Sprintf("%s_%s", base, t.Format("20060102_150405"))
	if opts.Zoomed {
		name += "_zoomed"
	}
	if opts.Anonymized {
		name += "_anonymized"
	}
	return name + "." + ext
}

// WriteDocument serializes the document pretty-printed to path.
func WriteDocument(path string, doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing story: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing story export: %w", err)
	}
	return nil
}

// WriteCapture writes raster bytes produced by the view layer.
func WriteCapture(path string, png []byte) error {
	if len(png) == 0 {
		return fmt.Errorf("empty capture")
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("writing capture: %w", err)
	}
	return nil
}

// WriteText writes a plain-text report.
func WriteText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
