package sink

import (
	"context"

	"github.com/matzehuels/planboard/pkg/render"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// RenderPDF renders res as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, res timeline.Result, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(res, opts...))
}
