// Package pipeline provides the core placement pipeline for Floorplace.
//
// This package implements the complete load → place → render pipeline that
// can be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the TOML netlist and build the circuit
//  2. Place: Optimize the placement with guided local search
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// The place and render stages are cached: a placement is keyed by the
// netlist hash plus the search options, an artifact by the placement hash
// plus the output options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Netlist: netlistTOML,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/errors"
	"github.com/floorplace/floorplace/pkg/netlist"
	"github.com/floorplace/floorplace/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxIterations caps the outer search iterations.
	DefaultMaxIterations = search.DefaultMaxIterations

	// DefaultMaxStagnation stops the search after this many consecutive
	// non-improving iterations.
	DefaultMaxStagnation = search.DefaultMaxStagnation

	// DefaultPNGScale is the rasterization factor for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the placement pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Netlist string `json:"netlist"` // TOML netlist source

	// Place options
	MaxIterations int  `json:"max_iterations,omitempty"`
	MaxStagnation int  `json:"max_stagnation,omitempty"`
	Refresh       bool `json:"refresh,omitempty"` // Bypass the placement cache

	// Render options
	Formats  []string `json:"formats,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger            `json:"-"`
	Progress func(search.Iteration) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Netlist == "" {
		return errors.New(errors.ErrCodeInvalidInput, "netlist is required")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MaxStagnation <= 0 {
		o.MaxStagnation = DefaultMaxStagnation
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}

	o.validated = true
	return nil
}

// searchOptions projects the pipeline options onto the optimizer's options.
func (o *Options) searchOptions() search.Options {
	return search.Options{
		MaxIterations: o.MaxIterations,
		MaxStagnation: o.MaxStagnation,
		Progress:      o.Progress,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Circuit is the placed circuit, left at the best placement found.
	Circuit *circuit.Circuit

	// NetlistHash is the content hash of the netlist source.
	NetlistHash string

	// Placement is the serializable snapshot of the best placement.
	Placement *netlist.Placement

	// Search summarizes the optimization (empty on a placement cache hit).
	Search search.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ModuleCount int
	NetCount    int
	LoadTime    time.Duration
	PlaceTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlacementHit bool // Whether the placement came from cache
	RenderHit    bool // Whether all artifacts came from cache
}
