package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/render/sink"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// RenderResult generates output artifacts in the requested formats.
func RenderResult(ctx context.Context, res timeline.Result, opts Options) (map[string][]byte, error) {
	svgOpts := opts.SVGOptions()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(res, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, res, sink.WithScale(DefaultPNGScale), sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, res, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(res)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromLayoutData renders output from a serialized export layout.
// This is useful when the layout was computed elsewhere (e.g., by `planboard layout`).
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := export.Unmarshal(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	res, err := export.ToResult(l)
	if err != nil {
		return nil, fmt.Errorf("convert layout: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return RenderResult(ctx, res, opts)
}
