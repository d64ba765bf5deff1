package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/netlist"
	"github.com/floorplace/floorplace/pkg/pipeline"
	"github.com/floorplace/floorplace/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output       string   // output file path (or base path for multiple formats)
	formats      []string // output formats: "svg", "png", "pdf", "json", "dot"
	pngScale     float64  // rasterization factor for PNG output
	connectivity bool     // render the net-connectivity graph instead of the placement
	storeKind    string   // run store backend: "file" or "mongo"
}

// renderCommand creates the render command, which re-renders a stored run or
// a placement JSON file without re-running the search.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		pngScale: pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "render [run-id|placement.json]",
		Short: "Re-render a stored run or placement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "PNG rasterization scale factor")
	cmd.Flags().BoolVar(&opts.connectivity, "connectivity", false, "render the net-connectivity graph instead of the placement")
	cmd.Flags().StringVar(&opts.storeKind, "store", "file", "run store backend: file or mongo")

	return cmd
}

// runRender loads the placement and writes the requested formats.
func (c *CLI) runRender(ctx context.Context, source string, opts *renderOpts) error {
	placement, err := c.loadPlacement(ctx, source, opts.storeKind)
	if err != nil {
		return err
	}

	circ, err := placement.Build()
	if err != nil {
		return fmt.Errorf("rebuild circuit: %w", err)
	}
	c.Logger.Infof("Loaded placement: %d modules, objective %d",
		len(placement.Modules), placement.Objective)

	base := basePath(opts.output, source)
	for _, format := range opts.formats {
		data, err := c.renderPlacement(ctx, circ, placement, format, opts)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := writeArtifact(path, data); err != nil {
			return err
		}
	}
	return nil
}

// loadPlacement reads a placement from a JSON file, or from the run store
// when the argument is not an existing file.
func (c *CLI) loadPlacement(ctx context.Context, source, backend string) (*netlist.Placement, error) {
	if data, err := os.ReadFile(source); err == nil {
		return netlist.PlacementFromJSON(data)
	}

	s, err := newStore(ctx, backend)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)

	run, err := s.Get(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", source, err)
	}
	if run.Placement == nil {
		return nil, fmt.Errorf("run %s carries no placement", source)
	}
	return run.Placement, nil
}

// renderPlacement produces one artifact, either the placement drawing or the
// net-connectivity graph.
func (c *CLI) renderPlacement(ctx context.Context, circ *circuit.Circuit, placement *netlist.Placement, format string, opts *renderOpts) ([]byte, error) {
	if opts.connectivity {
		return c.renderConnectivity(ctx, circ, format, opts)
	}

	switch format {
	case pipeline.FormatJSON:
		return placement.ToJSON()
	case pipeline.FormatDOT:
		return []byte(render.ConnectivityDOT(circ)), nil
	case pipeline.FormatSVG:
		return render.PlacementSVG(circ, render.WithObjective(placement.Objective)), nil
	case pipeline.FormatPNG:
		svg := render.PlacementSVG(circ, render.WithObjective(placement.Objective))
		return render.ToPNG(svg, opts.pngScale)
	case pipeline.FormatPDF:
		svg := render.PlacementSVG(circ, render.WithObjective(placement.Objective))
		return render.ToPDF(svg)
	default:
		return nil, pipeline.ValidateFormat(format)
	}
}

// renderConnectivity lays out the net-connectivity graph with Graphviz.
func (c *CLI) renderConnectivity(ctx context.Context, circ *circuit.Circuit, format string, opts *renderOpts) ([]byte, error) {
	dot := render.ConnectivityDOT(circ)
	if format == pipeline.FormatDOT {
		return []byte(dot), nil
	}

	svg, err := render.DOTToSVG(ctx, dot)
	if err != nil {
		return nil, err
	}

	switch format {
	case pipeline.FormatSVG:
		return svg, nil
	case pipeline.FormatPNG:
		return render.ToPNG(svg, opts.pngScale)
	case pipeline.FormatPDF:
		return render.ToPDF(svg)
	default:
		return nil, fmt.Errorf("connectivity graphs support svg, png, pdf, dot; not %s", format)
	}
}
