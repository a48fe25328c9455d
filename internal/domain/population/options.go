package population

import (
	"math/rand/v2"
)

// Default synthesis constants. The center box bounds where cluster
// centers may land; the cluster standard deviation controls how tight
// each opinion cluster is around its center.
const (
	defaultClusterStd = 1.0
	defaultBoxMin     = -10.0
	defaultBoxMax     = 10.0
	defaultRandomSeed = 42
)

// config collects the synthesis tunables.
type config struct {
	rng        *rand.Rand
	clusterStd float64
	boxMin     float64
	boxMax     float64
}

func newConfig(opts ...Option) config {
	c := config{
		clusterStd: defaultClusterStd,
		boxMin:     defaultBoxMin,
		boxMax:     defaultBoxMax,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rng == nil {
		// Deterministic by default so unseeded synthesis still
		// reproduces across runs.
		c.rng = rand.New(rand.NewPCG(defaultRandomSeed, defaultRandomSeed))
	}
	return c
}

// Option applies a configuration option to a synthesis call.
type Option func(*config)

// WithRand sets the random source driving every draw of the call.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithSeed is shorthand for WithRand over a PCG seeded from seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed<<1|1))
	}
}

// WithClusterStd sets the standard deviation of each opinion cluster.
func WithClusterStd(std float64) Option {
	return func(c *config) {
		if std > 0 {
			c.clusterStd = std
		}
	}
}

// WithCenterBox sets the bounds cluster centers are drawn from.
func WithCenterBox(minimum, maximum float64) Option {
	return func(c *config) {
		if minimum < maximum {
			c.boxMin = minimum
			c.boxMax = maximum
		}
	}
}
