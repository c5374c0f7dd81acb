package analyzer

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
)

// assignChunkSize is the number of samples labelled by one pool job
const assignChunkSize = 16384

// Clustering is the best k-means solution found over all attempts
type Clustering struct {
	Centers     []sample
	Labels      []int
	Sizes       []int
	Compactness float64
}

// KMeans clusters color samples with Lloyd's algorithm and random
// (Forgy) initialization
type KMeans struct {
	k    int
	opts ColorOptions
	pool *WorkerPool
}

// NewKMeans creates a clusterer that labels samples on pool. A nil pool
// labels sequentially.
func NewKMeans(k int, opts ColorOptions, pool *WorkerPool) *KMeans {
	return &KMeans{k: k, opts: opts, pool: pool}
}

// Fit runs opts.Attempts independent clusterings and keeps the one with the
// lowest compactness
func (km *KMeans) Fit(ctx context.Context, samples []sample) (Clustering, error) {
	if len(samples) == 0 {
		return Clustering{}, errors.New("no pixel samples to cluster")
	}
	if km.k <= 0 {
		return Clustering{}, errors.New("cluster count must be > 0")
	}

	seed := km.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))

	attempts := max(km.opts.Attempts, 1)
	best := Clustering{Compactness: math.Inf(1)}
	for a := 0; a < attempts; a++ {
		centers := km.initialCenters(rng, samples)
		result, err := km.lloyd(ctx, samples, centers)
		if err != nil {
			return Clustering{}, err
		}
		if result.Compactness < best.Compactness {
			best = result
		}
	}
	return best, nil
}

// initialCenters picks k distinct samples. With fewer than k samples the
// existing ones are repeated.
func (km *KMeans) initialCenters(rng *rand.Rand, samples []sample) []sample {
	n := len(samples)
	centers := make([]sample, km.k)
	if n < km.k {
		for i := range centers {
			centers[i] = samples[i%n]
		}
		return centers
	}

	picked := make(map[int]struct{}, km.k)
	for i := 0; i < km.k; {
		idx := rng.IntN(n)
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
		centers[i] = samples[idx]
		i++
	}
	return centers
}

func (km *KMeans) lloyd(ctx context.Context, samples []sample, centers []sample) (Clustering, error) {
	labels := make([]int, len(samples))
	iterations := max(km.opts.MaxIterations, 1)

	for iter := 0; iter < iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Clustering{}, err
		}
		km.assign(samples, centers, labels)

		next, _ := recompute(samples, labels, centers)
		shift := 0.0
		for i := range centers {
			shift = math.Max(shift, floats.Distance(centers[i][:], next[i][:], 2))
		}
		centers = next
		if shift <= km.opts.Epsilon {
			break
		}
	}

	compactness := km.assign(samples, centers, labels)
	_, sizes := recompute(samples, labels, centers)
	return Clustering{
		Centers:     centers,
		Labels:      labels,
		Sizes:       sizes,
		Compactness: compactness,
	}, nil
}

// assign labels every sample with its nearest center and returns the sum of
// squared distances. Chunks are summed in order so the result does not depend
// on scheduling.
func (km *KMeans) assign(samples []sample, centers []sample, labels []int) float64 {
	chunks := (len(samples) + assignChunkSize - 1) / assignChunkSize
	partials := make([]float64, chunks)

	run := func(c int) {
		start := c * assignChunkSize
		end := min(start+assignChunkSize, len(samples))
		var sum float64
		for i := start; i < end; i++ {
			label, dist := nearest(samples[i], centers)
			labels[i] = label
			sum += dist
		}
		partials[c] = sum
	}

	if km.pool == nil || chunks == 1 {
		for c := 0; c < chunks; c++ {
			run(c)
		}
	} else {
		var wg sync.WaitGroup
		wg.Add(chunks)
		for c := 0; c < chunks; c++ {
			km.pool.Submit(func() {
				defer wg.Done()
				run(c)
			})
		}
		wg.Wait()
	}

	return floats.Sum(partials)
}

func nearest(s sample, centers []sample) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		dr, dg, db := s[0]-c[0], s[1]-c[1], s[2]-c[2]
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// recompute returns the mean of each cluster. An empty cluster keeps its
// previous center.
func recompute(samples []sample, labels []int, prev []sample) ([]sample, []int) {
	sums := make([]sample, len(prev))
	sizes := make([]int, len(prev))
	for i, s := range samples {
		l := labels[i]
		sums[l][0] += s[0]
		sums[l][1] += s[1]
		sums[l][2] += s[2]
		sizes[l]++
	}

	next := make([]sample, len(prev))
	for i := range next {
		if sizes[i] == 0 {
			next[i] = prev[i]
			continue
		}
		n := float64(sizes[i])
		next[i] = sample{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
	}
	return next, sizes
}
