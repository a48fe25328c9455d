package voting

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/okian/psephos/internal/domain/model"
)

// candidatePoint ties a position to the candidate's original index so a
// nearest-neighbor result identifies the candidate, not just a location.
type candidatePoint struct {
	kdtree.Point
	index int
}

func (p candidatePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(candidatePoint)
	return p.Point.Compare(q.Point, d)
}

func (p candidatePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(candidatePoint)
	return p.Point.Distance(q.Point)
}

// candidatePoints satisfies kdtree.Interface for tree construction.
type candidatePoints []candidatePoint

func (p candidatePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p candidatePoints) Len() int                      { return len(p) }
func (p candidatePoints) Pivot(d kdtree.Dim) int {
	return candidatePlane{candidatePoints: p, Dim: d}.Pivot()
}
func (p candidatePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// candidatePlane allows candidatePoints to be pivoted on a dimension.
type candidatePlane struct {
	kdtree.Dim
	candidatePoints
}

func (p candidatePlane) Less(i, j int) bool {
	return p.candidatePoints[i].Point[p.Dim] < p.candidatePoints[j].Point[p.Dim]
}
func (p candidatePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p candidatePlane) Slice(start, end int) kdtree.SortSlicer {
	p.candidatePoints = p.candidatePoints[start:end]
	return p
}
func (p candidatePlane) Swap(i, j int) {
	p.candidatePoints[i], p.candidatePoints[j] = p.candidatePoints[j], p.candidatePoints[i]
}

// candidateIndex is a per-call nearest-neighbor index over a candidate
// set. It is built inside one allocation pass and discarded afterwards;
// it is never shared across calls.
type candidateIndex struct {
	tree *kdtree.Tree
}

func newCandidateIndex(candidates *model.Candidates) *candidateIndex {
	points := make(candidatePoints, candidates.Len())
	for row := 0; row < candidates.Len(); row++ {
		points[row] = candidatePoint{
			Point: kdtree.Point(candidates.Position(row)),
			index: candidates.Index(row),
		}
	}
	return &candidateIndex{tree: kdtree.New(points, false)}
}

// nearest returns the original indices of the k candidates closest to
// pos. Distance ties resolve to the lower candidate index, so results
// are deterministic for a fixed candidate set.
func (ci *candidateIndex) nearest(pos model.Position, k int) []int {
	query := candidatePoint{Point: kdtree.Point(pos), index: -1}

	keeper := kdtree.NewNKeeper(k)
	ci.tree.NearestSet(keeper, query)

	maxDist := 0.0
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		if c.Dist > maxDist {
			maxDist = c.Dist
		}
	}

	// The keeper's pick among candidates tied at the boundary distance
	// is traversal-ordered; collect everything at or under the boundary
	// and apply the (distance, index) ordering explicitly.
	return ci.within(query, maxDist)[:k]
}

// within returns the original indices of all candidates whose distance
// to the query is at most dist, ordered by ascending distance then
// ascending index.
func (ci *candidateIndex) within(query candidatePoint, dist float64) []int {
	keeper := kdtree.NewDistKeeper(dist)
	ci.tree.NearestSet(keeper, query)

	type hit struct {
		index int
		dist  float64
	}
	hits := make([]hit, 0, len(keeper.Heap))
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		hits = append(hits, hit{index: c.Comparable.(candidatePoint).index, dist: c.Dist})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].index < hits[j].index
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}
