package vpm

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// TreeEvaluator approximates the all-pairs UJ sum with a Barnes-Hut octree.
// Clusters far enough from a target, judged by the opening angle Theta, are
// collapsed to a single equivalent particle carrying the aggregate strength
// at the strength-weighted centroid. Near-field interactions fall through to
// exact pair evaluation, so the result converges to DirectEvaluator as Theta
// shrinks.
//
// A failed build (non-finite particle data, degenerate bounds) surfaces as
// ErrEvaluation; there is no automatic fallback to direct summation.
type TreeEvaluator struct {
	Theta    float64 // opening angle, (0, 1]; smaller is more accurate
	MaxLeaf  int     // particles per leaf before subdividing
	Parallel bool

	nodes []treeNode // reused across evaluations
	perm  []int      // slot permutation, leaves reference ranges of it
}

type treeNode struct {
	center Vec3
	half   float64

	children [8]int32 // node indices, -1 when absent
	leaf     bool
	lo, hi   int // slot range into the evaluator's index permutation

	gamma Vec3    // aggregate strength
	xcg   Vec3    // |Gamma|-weighted centroid
	sigma float64 // weighted mean core size
	wsum  float64
}

const treeMaxDepth = 40

func (t *TreeEvaluator) Evaluate(f *Field) error {
	if t.Theta <= 0 || t.Theta > 1 {
		return fmt.Errorf("%w: opening angle %g outside (0,1]", ErrEvaluation, t.Theta)
	}
	maxLeaf := t.MaxLeaf
	if maxLeaf <= 0 {
		maxLeaf = 16
	}
	if err := checkFinite(f); err != nil {
		return err
	}

	ps := f.Particles()
	n := len(ps)
	if n == 0 {
		return nil
	}

	if cap(t.perm) < n {
		t.perm = make([]int, n)
	}
	t.perm = t.perm[:n]
	for i := range t.perm {
		t.perm[i] = i
	}
	t.nodes = t.nodes[:0]
	root, err := t.build(ps, t.perm, 0, n, 0, maxLeaf)
	if err != nil {
		return err
	}

	eval := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var u Vec3
			var jac Mat3
			t.walk(f, ps, root, ps[i].X, &u, &jac)
			ps[i].U = u
			ps[i].J = jac
		}
	}

	if t.Parallel && n >= 256 {
		workers := runtime.GOMAXPROCS(0)
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			lo, hi := w*chunk, (w+1)*chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				break
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				eval(lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	} else {
		eval(0, n)
	}
	return nil
}

func (t *TreeEvaluator) build(ps []Particle, perm []int, lo, hi, depth, maxLeaf int) (int32, error) {
	min := ps[perm[lo]].X
	max := min
	for _, s := range perm[lo:hi] {
		for c := 0; c < 3; c++ {
			min[c] = math.Min(min[c], ps[s].X[c])
			max[c] = math.Max(max[c], ps[s].X[c])
		}
	}
	half := 0.0
	for c := 0; c < 3; c++ {
		half = math.Max(half, 0.5*(max[c]-min[c]))
	}
	if math.IsInf(half, 0) || math.IsNaN(half) {
		return -1, fmt.Errorf("%w: degenerate octree bounds", ErrEvaluation)
	}

	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{
		center:   min.Add(max).Scale(0.5),
		half:     half,
		children: [8]int32{-1, -1, -1, -1, -1, -1, -1, -1},
	})
	nd := &t.nodes[id]

	// Aggregate moments.
	for _, s := range perm[lo:hi] {
		w := ps[s].Gamma.Norm()
		nd.gamma = nd.gamma.Add(ps[s].Gamma)
		nd.xcg = nd.xcg.Add(ps[s].X.Scale(w))
		nd.sigma += ps[s].Sigma * w
		nd.wsum += w
	}
	if nd.wsum > 0 {
		nd.xcg = nd.xcg.Scale(1 / nd.wsum)
		nd.sigma /= nd.wsum
	} else {
		nd.xcg = nd.center
		nd.sigma = ps[perm[lo]].Sigma
	}

	if hi-lo <= maxLeaf || depth >= treeMaxDepth || half == 0 {
		nd.leaf = true
		nd.lo, nd.hi = lo, hi
		return id, nil
	}

	// Partition slots into octants around the node center in place.
	ctr := nd.center
	bounds := [9]int{lo, 0, 0, 0, 0, 0, 0, 0, hi}
	seg := perm[lo:hi]
	octant := func(x Vec3) int {
		o := 0
		for c := 0; c < 3; c++ {
			if x[c] >= ctr[c] {
				o |= 1 << c
			}
		}
		return o
	}
	// One stable pass per octant keeps the ordering deterministic.
	sorted := make([]int, 0, len(seg))
	for o := 0; o < 8; o++ {
		for _, s := range seg {
			if octant(ps[s].X) == o {
				sorted = append(sorted, s)
			}
		}
		bounds[o+1] = lo + len(sorted)
	}
	copy(seg, sorted)

	for o := 0; o < 8; o++ {
		clo, chi := bounds[o], bounds[o+1]
		if clo >= chi {
			continue
		}
		child, err := t.build(ps, perm, clo, chi, depth+1, maxLeaf)
		if err != nil {
			return -1, err
		}
		t.nodes[id].children[o] = child
	}
	t.nodes[id].lo, t.nodes[id].hi = lo, hi
	return id, nil
}

func (t *TreeEvaluator) walk(f *Field, ps []Particle, id int32, x Vec3, u *Vec3, jac *Mat3) {
	nd := &t.nodes[id]
	dx := x.Sub(nd.xcg)
	dist := dx.Norm()

	if nd.leaf {
		for _, s := range t.perm[nd.lo:nd.hi] {
			pairUJ(&f.Kernel, x.Sub(ps[s].X), ps[s].Gamma, ps[s].Sigma, u, jac)
		}
		return
	}
	if dist > 0 && 2*nd.half/dist < t.Theta {
		pairUJ(&f.Kernel, dx, nd.gamma, nd.sigma, u, jac)
		return
	}
	for _, child := range nd.children {
		if child >= 0 {
			t.walk(f, ps, child, x, u, jac)
		}
	}
}
