package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
	"github.com/matzehuels/lanegraph/pkg/render/nodelink"
	"github.com/matzehuels/lanegraph/pkg/render/svg"
	"github.com/matzehuels/lanegraph/pkg/render/text"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, v *layout.View, opts Options) (map[string][]byte, error) {
	out := make([][]byte, len(opts.Formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, v, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Classify(err)
	}

	artifacts := make(map[string][]byte, len(out))
	for i, format := range opts.Formats {
		artifacts[format] = out[i]
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, v *layout.View, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return lgio.MarshalLayout(v)
	case FormatTXT:
		return []byte(text.Render(v, textOptions(opts)...)), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(v, dotOptions(opts))), nil
	}

	if opts.IsNodelink() {
		dot := nodelink.ToDOT(v, dotOptions(opts))
		switch format {
		case FormatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			return nodelink.RenderPNG(ctx, dot, DefaultPNGScale)
		case FormatPDF:
			return nodelink.RenderPDF(ctx, dot)
		}
	} else {
		data := svg.Render(v, svgOptions(opts)...)
		switch format {
		case FormatSVG:
			return data, nil
		case FormatPNG:
			return render.ToPNG(ctx, data, DefaultPNGScale)
		case FormatPDF:
			return render.ToPDF(ctx, data)
		}
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format: %s", format)
}

// svgOptions builds lane SVG rendering options.
func svgOptions(opts Options) []svg.Option {
	svgOpts := []svg.Option{
		svg.WithCellSize(opts.CellSize),
		svg.WithLabels(!opts.NoLabels),
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, svg.WithTooltips(), svg.WithInteractive())
	}
	return svgOpts
}

func textOptions(opts Options) []text.Option {
	return []text.Option{
		text.WithColor(opts.Color),
		text.WithLabels(!opts.NoLabels),
	}
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Colored: true}
}
