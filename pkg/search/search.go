// Package search implements guided local search over a circuit placement.
//
// The optimizer minimizes total net wirelength (bounding-box half-perimeters)
// plus module overlap. It escapes local optima by maintaining per-module-pair
// penalty counters over three features (overlap, horizontal separation of
// connected modules, vertical separation of connected modules) and adding the
// active penalties, scaled by a weight derived from the average module area,
// to the objective it actually descends on.
package search

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/floorplace/floorplace/pkg/circuit"
)

// ErrEmptyCircuit is returned by New when the circuit has no modules.
var ErrEmptyCircuit = errors.New("circuit has no modules")

// penaltyWeightDivisor scales the average module area into the penalty
// weight. Larger divisors make penalties gentler relative to wirelength.
const penaltyWeightDivisor = 10.0

// pairPenalties holds the penalty counters of one unordered module pair.
type pairPenalties struct {
	overlap     int
	connectionX int
	connectionY int
}

// pairUtilities holds one round's utility values for a module pair.
type pairUtilities struct {
	overlap     float64
	connectionX float64
	connectionY float64
}

// Search drives guided local search over a single circuit. It owns the
// penalty state; the circuit itself stays a passive geometry container.
// A Search is bound to its circuit for life and is not safe for concurrent
// use.
type Search struct {
	circuit *circuit.Circuit
	logger  *log.Logger

	penalties []pairPenalties // triangular, indexed by pairIndex
	weight    float64
	actions   []Action
}

// New creates a Search over the circuit. The logger may be nil, in which
// case progress is discarded. Returns ErrEmptyCircuit for a circuit without
// modules, since the penalty weight is undefined there.
func New(c *circuit.Circuit, logger *log.Logger) (*Search, error) {
	if c.NumModules() == 0 {
		return nil, ErrEmptyCircuit
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	n := c.NumModules()
	return &Search{
		circuit:   c,
		logger:    logger,
		penalties: make([]pairPenalties, n*(n-1)/2),
		weight:    c.AverageModuleArea() / penaltyWeightDivisor,
		actions:   Actions(),
	}, nil
}

// Circuit returns the circuit the search mutates.
func (s *Search) Circuit() *circuit.Circuit { return s.circuit }

// PenaltyWeight returns the fixed scale applied to penalty counters in the
// augmented objective.
func (s *Search) PenaltyWeight() float64 { return s.weight }

// pairIndex maps an unordered module pair (i < j) into the triangular
// penalty slice.
func (s *Search) pairIndex(i, j int) int {
	n := s.circuit.NumModules()
	return i*n - i*(i+1)/2 + (j - i - 1)
}

// Objective returns the plain cost of the current placement: the sum of all
// net bounding boxes plus the pairwise module overlap areas. Zero overlap
// means the value is pure wirelength.
func (s *Search) Objective() int {
	result := s.circuit.TotalBoundingBoxes()

	n := s.circuit.NumModules()
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			result += s.circuit.OverlapArea(circuit.ModuleID(i), circuit.ModuleID(j))
		}
	}

	return result
}

// AugmentedObjective returns the guided cost the inner descent minimizes:
// the plain objective plus, per pair, the weighted sum of penalty counters
// whose feature is currently expressed. A penalty only contributes while the
// pair actually overlaps (overlap feature) or while the connected pair is
// separated on the penalized axis.
func (s *Search) AugmentedObjective() float64 {
	result := float64(s.circuit.TotalBoundingBoxes())

	n := s.circuit.NumModules()
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			a, b := circuit.ModuleID(i), circuit.ModuleID(j)
			pen := s.penalties[s.pairIndex(i, j)]

			overlapArea := s.circuit.OverlapArea(a, b)

			overlapPenalty := 0
			if overlapArea > 0 {
				overlapPenalty = pen.overlap
			}

			connectionPenalty := 0
			if s.circuit.Connected(a, b) {
				distance := s.circuit.DistancePerAxis(a, b)
				if distance.DX > 0 {
					connectionPenalty += pen.connectionX
				}
				if distance.DY > 0 {
					connectionPenalty += pen.connectionY
				}
			}

			result += float64(overlapArea) + s.weight*float64(overlapPenalty+connectionPenalty)
		}
	}

	return result
}

// UpdatePenalties runs one guided-local-search penalty round. Each expressed
// feature gets a utility of cost/(1+penalty); the features at the maximum
// utility have their counters incremented. When no pair overlaps at all, the
// placement is feasible and every counter is reset first, so penalties never
// leak across feasible plateaus.
func (s *Search) UpdatePenalties() {
	n := s.circuit.NumModules()
	utilities := make([]pairUtilities, len(s.penalties))

	anyOverlap := false
	maxUtility := 0.0

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			a, b := circuit.ModuleID(i), circuit.ModuleID(j)
			idx := s.pairIndex(i, j)
			pen := s.penalties[idx]

			overlapArea := s.circuit.OverlapArea(a, b)
			if overlapArea > 0 {
				cost := overlapArea + s.circuit.Module(a).Area() + s.circuit.Module(b).Area()
				utilities[idx].overlap = float64(cost) / float64(1+pen.overlap)

				maxUtility = max(maxUtility, utilities[idx].overlap)
				anyOverlap = true
			}

			if s.circuit.Connected(a, b) {
				distance := s.circuit.DistancePerAxis(a, b)

				if distance.DX > 0 {
					utilities[idx].connectionX = float64(distance.DX) / float64(1+pen.connectionX)
					maxUtility = max(maxUtility, utilities[idx].connectionX)
				}
				if distance.DY > 0 {
					utilities[idx].connectionY = float64(distance.DY) / float64(1+pen.connectionY)
					maxUtility = max(maxUtility, utilities[idx].connectionY)
				}
			}
		}
	}

	if !anyOverlap {
		clear(s.penalties)
	}

	for idx := range s.penalties {
		if utilities[idx].overlap == maxUtility {
			s.penalties[idx].overlap++
		}
		if utilities[idx].connectionX == maxUtility {
			s.penalties[idx].connectionX++
		}
		if utilities[idx].connectionY == maxUtility {
			s.penalties[idx].connectionY++
		}
	}
}
