package forecast

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

var (
	ErrEmptyTrainingSet = errors.New("forecast: empty training set")
	ErrEmptyHorizon     = errors.New("forecast: empty prediction horizon")
)

// Config holds the ensemble hyperparameters. The defaults are fixed on
// purpose: 400 trees, minimum leaf of 2 and seed 0 reproduce the same model
// from the same snapshot within a run.
type Config struct {
	Trees   int
	MinLeaf int
	Seed    int64
	Workers int
}

func DefaultConfig() Config {
	return Config{Trees: 400, MinLeaf: 2, Seed: 0, Workers: runtime.GOMAXPROCS(0)}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = d.MinLeaf
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Forest is an ensemble of bootstrap-sampled regression trees; the
// prediction is the mean of the per-tree predictions.
type Forest struct {
	trees []*treeNode
}

// TrainForest fits the ensemble. Each tree gets a seed derived from the
// master seed before any goroutine launches, so the result does not depend
// on scheduling; tree construction itself runs under a weighted semaphore
// across the configured workers.
func TrainForest(ctx context.Context, X [][]float64, y []float64, cfg Config) (*Forest, error) {
	if len(X) == 0 || len(y) != len(X) {
		return nil, ErrEmptyTrainingSet
	}
	cfg = cfg.withDefaults()

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*treeNode, cfg.Trees)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for i := 0; i < cfg.Trees; i++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, seed int64) {
			defer wg.Done()
			defer sem.Release(1)

			rng := rand.New(rand.NewSource(seed))
			idx := make([]int, len(X))
			for j := range idx {
				idx[j] = rng.Intn(len(X))
			}
			trees[i] = buildTree(X, y, idx, cfg.MinLeaf)
		}(i, seeds[i])
	}
	wg.Wait()
	return &Forest{trees: trees}, nil
}

// Predict returns the ensemble mean for one feature vector.
func (f *Forest) Predict(x []float64) float64 {
	s := 0.0
	for _, t := range f.trees {
		s += t.predict(x)
	}
	return s / float64(len(f.trees))
}

// PredictAll predicts every row of a design matrix.
func (f *Forest) PredictAll(m Matrix) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = f.Predict(row)
	}
	return out
}
