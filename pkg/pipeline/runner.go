package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/floorplace/floorplace/pkg/cache"
	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/netlist"
	"github.com/floorplace/floorplace/pkg/observability"
	"github.com/floorplace/floorplace/pkg/render"
	"github.com/floorplace/floorplace/pkg/search"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → place → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		NetlistHash: cache.Hash([]byte(opts.Netlist)),
		Artifacts:   make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	c, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Circuit = c
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ModuleCount = c.NumModules()
	result.Stats.NetCount = c.NumNets()

	r.Logger.Info("loaded netlist",
		"modules", c.NumModules(),
		"nets", c.NumNets(),
		"region", fmt.Sprintf("%dx%d", c.Width(), c.Height()))

	// Stage 2: Place
	placeStart := time.Now()
	placement, searchResult, placeHit, err := r.PlaceWithCacheInfo(ctx, c, result.NetlistHash, opts)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Placement = placement
	result.Search = searchResult
	result.Stats.PlaceTime = time.Since(placeStart)
	result.CacheInfo.PlacementHit = placeHit

	r.Logger.Info("placed circuit",
		"objective", placement.Objective,
		"feasible", placement.Feasible,
		"cached", placeHit,
		"duration", result.Stats.PlaceTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, placement, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load parses the netlist source and builds the circuit.
func (r *Runner) Load(opts Options) (*circuit.Circuit, error) {
	doc, err := netlist.Parse([]byte(opts.Netlist))
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// PlaceWithCacheInfo optimizes the placement with caching and returns cache
// hit info. On a hit the circuit is moved to the cached placement instead of
// re-running the search, and the returned search result is zero.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, c *circuit.Circuit, netlistHash string, opts Options) (*netlist.Placement, search.Result, bool, error) {
	key := r.Keyer.PlacementKey(netlistHash, cache.PlacementKeyOpts{
		MaxIterations: opts.MaxIterations,
		MaxStagnation: opts.MaxStagnation,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			placement, err := netlist.PlacementFromJSON(data)
			if err == nil {
				if err := applyPlacement(c, placement); err == nil {
					observability.Cache().OnCacheHit(ctx, "placement")
					return placement, search.Result{}, true, nil
				}
			}
			// A stale or corrupt entry falls through to a fresh search.
			_ = r.Cache.Delete(ctx, key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "placement")

	s, err := search.New(c, opts.Logger)
	if err != nil {
		return nil, search.Result{}, false, err
	}
	searchResult, err := s.Run(ctx, opts.searchOptions())
	if err != nil {
		return nil, search.Result{}, false, err
	}

	placement := netlist.CapturePlacement(c, searchResult.Objective)

	if data, err := placement.ToJSON(); err == nil {
		err := cache.RetryWithBackoff(ctx, func() error {
			return r.Cache.Set(ctx, key, data, cache.PlacementTTL)
		})
		if err != nil {
			r.Logger.Warn("failed to cache placement", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "placement", len(data))
		}
	}

	return placement, searchResult, false, nil
}

// RenderWithCacheInfo renders every requested format with caching.
// The render stage reports a cache hit only when all artifacts were cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *circuit.Circuit, placement *netlist.Placement, opts Options) (map[string][]byte, bool, error) {
	placementData, err := placement.ToJSON()
	if err != nil {
		return nil, false, err
	}
	placementHash := cache.Hash(placementData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := len(opts.Formats) > 0

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(placementHash, cache.ArtifactKeyOpts{
			Format: format,
			Scale:  opts.PNGScale,
		})

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allHit = false

		data, err := r.renderFormat(ctx, c, placement, placementData, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("failed to cache artifact", "format", format, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allHit, nil
}

// renderFormat produces a single artifact.
func (r *Runner) renderFormat(ctx context.Context, c *circuit.Circuit, placement *netlist.Placement, placementJSON []byte, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return placementJSON, nil
	case FormatDOT:
		return []byte(render.ConnectivityDOT(c)), nil
	case FormatSVG:
		return render.PlacementSVG(c, render.WithObjective(placement.Objective)), nil
	case FormatPNG:
		svg := render.PlacementSVG(c, render.WithObjective(placement.Objective))
		return render.ToPNG(svg, opts.PNGScale)
	case FormatPDF:
		svg := render.PlacementSVG(c, render.WithObjective(placement.Objective))
		return render.ToPDF(svg)
	default:
		return nil, ValidateFormat(format)
	}
}

// applyPlacement moves the circuit's modules and pins to a cached placement.
// The placement must describe the same circuit structure.
func applyPlacement(c *circuit.Circuit, p *netlist.Placement) error {
	if len(p.Modules) != c.NumModules() {
		return fmt.Errorf("placement has %d modules, circuit has %d", len(p.Modules), c.NumModules())
	}

	restored, err := p.Build()
	if err != nil {
		return err
	}

	for i := 0; i < c.NumModules(); i++ {
		id := circuit.ModuleID(i)
		if c.ModuleName(id) != restored.ModuleName(id) {
			return fmt.Errorf("module %d is %q in the placement, %q in the circuit",
				i, restored.ModuleName(id), c.ModuleName(id))
		}
	}

	c.RestoreState(restored.SaveState())
	return nil
}
