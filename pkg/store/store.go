// Package store persists completed placement runs.
//
// A run records everything needed to reproduce or re-render a placement: the
// source netlist, the search options, the best placement found, and the
// per-iteration objective trace. Two backends are provided: a file store for
// CLI usage and a MongoDB store for server deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/floorplace/floorplace/pkg/netlist"
	"github.com/floorplace/floorplace/pkg/search"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// Options are the search parameters a run was produced with.
type Options struct {
	MaxIterations int `json:"max_iterations" bson:"max_iterations"`
	MaxStagnation int `json:"max_stagnation" bson:"max_stagnation"`
}

// Run is one completed optimization, keyed by a UUID.
type Run struct {
	ID        string             `json:"id" bson:"_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	Netlist   string             `json:"netlist,omitempty" bson:"netlist,omitempty"` // source TOML
	Options   Options            `json:"options" bson:"options"`
	Placement *netlist.Placement `json:"placement" bson:"placement"`
	Objective int                `json:"objective" bson:"objective"`
	Feasible  bool               `json:"feasible" bson:"feasible"`
	Trace     []search.Iteration `json:"trace,omitempty" bson:"trace,omitempty"`
}

// NewRun assembles a run document with a fresh UUID and timestamp.
func NewRun(netlistSource string, opts Options, placement *netlist.Placement, result search.Result) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Netlist:   netlistSource,
		Options:   opts,
		Placement: placement,
		Objective: result.Objective,
		Feasible:  result.Feasible,
		Trace:     result.Trace,
	}
}

// Summary is the listing view of a run, without the heavy payloads.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Objective int       `json:"objective" bson:"objective"`
	Feasible  bool      `json:"feasible" bson:"feasible"`
	Modules   int       `json:"modules" bson:"modules"`
}

// summarize projects a run onto its listing view.
func summarize(r *Run) Summary {
	s := Summary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Objective: r.Objective,
		Feasible:  r.Feasible,
	}
	if r.Placement != nil {
		s.Modules = len(r.Placement.Modules)
	}
	return s
}

// Store persists placement runs.
type Store interface {
	// Put saves or replaces a run.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns summaries of all runs, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a run. Returns ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
