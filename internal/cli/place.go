package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/floorplace/floorplace/pkg/pipeline"
	"github.com/floorplace/floorplace/pkg/search"
	"github.com/floorplace/floorplace/pkg/store"
)

// placeOpts holds the command-line flags for the place command.
type placeOpts struct {
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: "svg", "png", "pdf", "json", "dot"
	iterations int      // max outer search iterations
	stagnation int      // stop after this many non-improving iterations
	pngScale   float64  // rasterization factor for PNG output
	refresh    bool     // bypass the cache even when entries exist
	noCache    bool     // disable caching entirely
	save       bool     // persist the run to the store
	storeKind  string   // run store backend: "file" or "mongo"
	watch      bool     // show live optimizer progress in a TUI
}

// placeCommand creates the place command, the main entry point: it loads a
// TOML netlist, optimizes the placement, and writes the rendered outputs.
func (c *CLI) placeCommand() *cobra.Command {
	var formatsStr string
	opts := placeOpts{
		pngScale: pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "place [netlist]",
		Short: "Optimize a netlist placement and render it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runPlace(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().IntVar(&opts.iterations, "iterations", pipeline.DefaultMaxIterations, "maximum search iterations")
	cmd.Flags().IntVar(&opts.stagnation, "stagnation", pipeline.DefaultMaxStagnation, "stop after this many non-improving iterations")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "PNG rasterization scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached placement exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the run to the run store")
	cmd.Flags().StringVar(&opts.storeKind, "store", "file", "run store backend: file or mongo")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show live optimizer progress")

	return cmd
}

// runPlace executes the full place workflow: pipeline, output files, and
// optionally the run store.
func (c *CLI) runPlace(ctx context.Context, netlistPath string, opts *placeOpts) error {
	source, err := os.ReadFile(netlistPath)
	if err != nil {
		return fmt.Errorf("read netlist: %w", err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}

	pipeOpts := pipeline.Options{
		Netlist:       string(source),
		MaxIterations: opts.iterations,
		MaxStagnation: opts.stagnation,
		Refresh:       opts.refresh,
		Formats:       opts.formats,
		PNGScale:      opts.pngScale,
		Logger:        c.Logger,
	}

	var result *pipeline.Result
	if opts.watch {
		result, err = c.runPlaceWatched(ctx, runner, pipeOpts)
	} else {
		result, err = c.runPlacePlain(ctx, runner, pipeOpts)
	}
	if err != nil {
		return err
	}

	printPlacementSummary(result)

	if err := writeArtifacts(netlistPath, opts, result); err != nil {
		return err
	}

	if opts.save {
		return c.saveRun(ctx, opts.storeKind, string(source), pipeOpts, result)
	}
	return nil
}

// runPlacePlain runs the pipeline with a spinner instead of the TUI.
func (c *CLI) runPlacePlain(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, "Optimizing placement...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Placement failed")
		return nil, err
	}
	spinner.Stop()
	return result, nil
}

// writeArtifacts writes every rendered format to disk (or stdout).
func writeArtifacts(input string, opts *placeOpts, result *pipeline.Result) error {
	if len(opts.formats) == 1 {
		path := opts.output
		if path == "" {
			path = basePath("", input) + "." + opts.formats[0]
		}
		return writeArtifact(path, result.Artifacts[opts.formats[0]])
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		if err := writeArtifact(base+"."+format, result.Artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// saveRun persists the pipeline result to the selected run store.
func (c *CLI) saveRun(ctx context.Context, backend, source string, opts pipeline.Options, result *pipeline.Result) error {
	s, err := newStore(ctx, backend)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	searchResult := result.Search
	if result.CacheInfo.PlacementHit {
		// A cached placement skipped the search; fill in the essentials.
		searchResult = search.Result{
			Objective: result.Placement.Objective,
			Feasible:  result.Placement.Feasible,
		}
	}

	run := store.NewRun(source, store.Options{
		MaxIterations: opts.MaxIterations,
		MaxStagnation: opts.MaxStagnation,
	}, result.Placement, searchResult)

	if err := s.Put(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	printSuccess("Saved run %s", run.ID)
	printNextStep("Inspect it with", "floorplace show "+run.ID)
	return nil
}

// printPlacementSummary prints the post-run status block.
func printPlacementSummary(result *pipeline.Result) {
	if result.Placement.Feasible {
		printSuccess("Feasible placement, objective %d", result.Placement.Objective)
	} else {
		printWarning("No feasible placement found, objective %d", result.Placement.Objective)
	}
	printStats(result.Stats.ModuleCount, result.Stats.NetCount, result.CacheInfo.PlacementHit)
	if !result.CacheInfo.PlacementHit {
		printDetail("%d iterations in %s", result.Search.Iterations,
			result.Search.Duration.Round(time.Millisecond))
	}
}
