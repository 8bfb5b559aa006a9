package sink

import (
	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// RenderJSON exports res as an export.Layout document.
func RenderJSON(res timeline.Result) ([]byte, error) {
	return export.Marshal(export.FromResult(res))
}
