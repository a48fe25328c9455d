// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// normEpsilon guards against dividing a zero vector by its own norm.
const normEpsilon = 1e-16

// Position is a location in n-dimensional issue space. Distance between
// positions represents preference dissimilarity.
type Position []float64

// Clone returns an independent copy of the position.
func (p Position) Clone() Position {
	out := make(Position, len(p))
	copy(out, p)
	return out
}

// Electorate is an ordered, immutable collection of voter positions.
// Row order is fixed for the lifetime of a simulation run.
type Electorate struct {
	positions []Position
	issues    int
}

// NewElectorate copies and validates a voters-by-issues matrix.
func NewElectorate(raw [][]float64) (*Electorate, error) {
	positions, issues, err := copyMatrix(raw)
	if err != nil {
		return nil, fmt.Errorf("electorate: %w", err)
	}
	return &Electorate{positions: positions, issues: issues}, nil
}

// Len returns the number of voters.
func (e *Electorate) Len() int { return len(e.positions) }

// Issues returns the dimensionality of the issue space.
func (e *Electorate) Issues() int { return e.issues }

// Position returns voter i's position. The returned slice is shared;
// callers must not modify it.
func (e *Electorate) Position(i int) Position { return e.positions[i] }

// Normalized returns a derived electorate in which every voter vector
// has unit Euclidean norm, so distance comparisons stay scale-consistent
// across rules and population sizes. A small epsilon keeps zero vectors
// from dividing by zero.
func (e *Electorate) Normalized() *Electorate {
	positions := make([]Position, len(e.positions))
	for i, row := range e.positions {
		out := row.Clone()
		norm := floats.Norm(out, 2)
		floats.Scale(1/(norm+normEpsilon), out)
		positions[i] = out
	}
	return &Electorate{positions: positions, issues: e.issues}
}

// Candidates is an ordered collection of candidate positions. Each row
// carries the candidate's original index, so derived subsets built for
// runoff rounds keep referring to the same physical candidate. Subsets
// are always new collections; a Candidates value is never mutated.
type Candidates struct {
	positions []Position
	indices   []int
	issues    int
}

// NewCandidates copies and validates a candidates-by-issues matrix.
// Original indices are assigned in row order.
func NewCandidates(raw [][]float64) (*Candidates, error) {
	positions, issues, err := copyMatrix(raw)
	if err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}
	indices := make([]int, len(positions))
	for i := range indices {
		indices[i] = i
	}
	return &Candidates{positions: positions, indices: indices, issues: issues}, nil
}

// Len returns the number of candidates in this (possibly reduced) set.
func (c *Candidates) Len() int { return len(c.positions) }

// Issues returns the dimensionality of the issue space.
func (c *Candidates) Issues() int { return c.issues }

// Position returns the position at the given row. The returned slice is
// shared; callers must not modify it.
func (c *Candidates) Position(row int) Position { return c.positions[row] }

// Index maps a row of this set back to the candidate's original index.
func (c *Candidates) Index(row int) int { return c.indices[row] }

// Indices returns the original indices present in this set, in row order.
func (c *Candidates) Indices() []int {
	out := make([]int, len(c.indices))
	copy(out, c.indices)
	return out
}

// PositionOf returns the position of a candidate by original index.
func (c *Candidates) PositionOf(index int) (Position, error) {
	for row, idx := range c.indices {
		if idx == index {
			return c.positions[row], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownIndex, index)
}

// Without returns a derived candidate set with the given original
// indices removed. The receiver is left untouched.
func (c *Candidates) Without(drop ...int) (*Candidates, error) {
	dropped := make(map[int]struct{}, len(drop))
	for _, idx := range drop {
		if !c.contains(idx) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownIndex, idx)
		}
		dropped[idx] = struct{}{}
	}

	positions := make([]Position, 0, len(c.positions)-len(dropped))
	indices := make([]int, 0, len(c.indices)-len(dropped))
	for row, idx := range c.indices {
		if _, gone := dropped[idx]; gone {
			continue
		}
		positions = append(positions, c.positions[row])
		indices = append(indices, idx)
	}
	return &Candidates{positions: positions, indices: indices, issues: c.issues}, nil
}

func (c *Candidates) contains(index int) bool {
	for _, idx := range c.indices {
		if idx == index {
			return true
		}
	}
	return false
}

// copyMatrix deep-copies a rectangular matrix, rejecting empty, ragged,
// and non-finite input.
func copyMatrix(raw [][]float64) ([]Position, int, error) {
	if len(raw) == 0 {
		return nil, 0, ErrEmptyMatrix
	}
	issues := len(raw[0])
	if issues == 0 {
		return nil, 0, ErrEmptyMatrix
	}

	positions := make([]Position, len(raw))
	for i, row := range raw {
		if len(row) != issues {
			return nil, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedMatrix, i, len(row), issues)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, 0, fmt.Errorf("%w: row %d column %d", ErrNonFinite, i, j)
			}
		}
		positions[i] = Position(row).Clone()
	}
	return positions, issues, nil
}
