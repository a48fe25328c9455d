// Package population synthesizes voter and candidate positions in
// issue space from named scenarios, deterministically under a seed.
package population

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/okian/psephos/internal/domain/model"
)

// Scenario names accepted by Electorate and Candidates. The cluster
// scenarios model one, two, or three opinion blocs; the uniform
// scenario, accepted only for candidates, spreads them across the
// center box unattached to any bloc.
const (
	ScenarioCentered = "centered"
	ScenarioBipolar  = "bipolar"
	ScenarioTripolar = "tripolar"
	ScenarioUniform  = "uniform"
)

// clusterCounts is the closed set of bloc scenarios.
var clusterCounts = map[string]int{
	ScenarioCentered: 1,
	ScenarioBipolar:  2,
	ScenarioTripolar: 3,
}

// ElectorateScenarios returns the supported electorate scenario names
// in ascending order.
func ElectorateScenarios() []string {
	names := make([]string, 0, len(clusterCounts))
	for name := range clusterCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CandidateScenarios returns the supported candidate scenario names,
// the uniform scenario first.
func CandidateScenarios() []string {
	return append([]string{ScenarioUniform}, ElectorateScenarios()...)
}

// Electorate synthesizes a normalized voter population: voters cluster
// into the scenario's opinion blocs, then every voter vector is scaled
// to unit norm so distance comparisons stay scale-consistent.
func Electorate(scenario string, voters, issues int, opts ...Option) (*model.Electorate, error) {
	clusters, ok := clusterCounts[scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %q (electorate scenarios: %v)", ErrUnknownScenario, scenario, ElectorateScenarios())
	}
	cfg := newConfig(opts...)
	raw, err := blobs(cfg, voters, issues, clusters)
	if err != nil {
		return nil, err
	}
	electorate, err := model.NewElectorate(raw)
	if err != nil {
		return nil, fmt.Errorf("synthesizing electorate: %w", err)
	}
	return electorate.Normalized(), nil
}

// Candidates synthesizes a candidate slate. The uniform scenario draws
// positions uniformly across the center box; bloc scenarios reuse the
// electorate's cluster machinery so candidates court specific blocs.
// Candidate positions are not normalized.
func Candidates(scenario string, count, issues int, opts ...Option) (*model.Candidates, error) {
	cfg := newConfig(opts...)

	var raw [][]float64
	var err error
	switch {
	case scenario == ScenarioUniform:
		raw, err = uniformBox(cfg, count, issues)
	default:
		clusters, ok := clusterCounts[scenario]
		if !ok {
			return nil, fmt.Errorf("%w: %q (candidate scenarios: %v)", ErrUnknownScenario, scenario, CandidateScenarios())
		}
		raw, err = blobs(cfg, count, issues, clusters)
	}
	if err != nil {
		return nil, err
	}

	candidates, err := model.NewCandidates(raw)
	if err != nil {
		return nil, fmt.Errorf("synthesizing candidates: %w", err)
	}
	return candidates, nil
}

// blobs draws rows around cluster centers: centers land uniformly in
// the center box, and each row is its cluster center plus isotropic
// Gaussian noise. Rows are assigned to clusters round-robin.
func blobs(cfg config, rows, issues, clusters int) ([][]float64, error) {
	if rows < 1 {
		return nil, ErrRowCount
	}
	if issues < 1 {
		return nil, ErrIssueCount
	}

	center := distuv.Uniform{Min: cfg.boxMin, Max: cfg.boxMax, Src: cfg.rng}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.clusterStd, Src: cfg.rng}

	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = make([]float64, issues)
		for d := range centers[c] {
			centers[c][d] = center.Rand()
		}
	}

	out := make([][]float64, rows)
	for i := range out {
		home := centers[i%clusters]
		row := make([]float64, issues)
		for d := range row {
			row[d] = home[d] + noise.Rand()
		}
		out[i] = row
	}
	return out, nil
}

// uniformBox draws rows uniformly across the center box.
func uniformBox(cfg config, rows, issues int) ([][]float64, error) {
	if rows < 1 {
		return nil, ErrRowCount
	}
	if issues < 1 {
		return nil, ErrIssueCount
	}

	u := distuv.Uniform{Min: cfg.boxMin, Max: cfg.boxMax, Src: cfg.rng}
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, issues)
		for d := range row {
			row[d] = u.Rand()
		}
		out[i] = row
	}
	return out, nil
}
