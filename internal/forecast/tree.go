package forecast

import "sort"

// treeNode is one node of a regression tree. Leaves have nil children and
// carry the mean target of their samples.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (t *treeNode) predict(x []float64) float64 {
	n := t
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// buildTree grows a CART regression tree over the sample indices in idx.
// Splits minimize the summed squared error of the two children; a node
// becomes a leaf when it cannot produce two children of at least minLeaf
// samples or when no split reduces the error.
func buildTree(X [][]float64, y []float64, idx []int, minLeaf int) *treeNode {
	node := &treeNode{feature: -1, value: mean(y, idx)}
	if len(idx) < 2*minLeaf {
		return node
	}

	parentSSE := sse(y, idx, node.value)
	if parentSSE == 0 {
		return node
	}

	bestSSE := parentSSE
	bestFeature := -1
	var bestThreshold float64
	nFeatures := len(X[idx[0]])

	order := make([]int, len(idx))
	for f := 0; f < nFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		// prefix sums over the sorted order
		sumL, sqL := 0.0, 0.0
		sumT, sqT := 0.0, 0.0
		for _, i := range order {
			sumT += y[i]
			sqT += y[i] * y[i]
		}
		n := len(order)
		for s := 1; s < n; s++ {
			v := y[order[s-1]]
			sumL += v
			sqL += v * v
			if s < minLeaf || n-s < minLeaf {
				continue
			}
			lo, hi := X[order[s-1]][f], X[order[s]][f]
			if lo == hi {
				continue // cannot split between equal values
			}
			left := sqL - sumL*sumL/float64(s)
			sumR := sumT - sumL
			right := (sqT - sqL) - sumR*sumR/float64(n-s)
			if total := left + right; total < bestSSE {
				bestSSE = total
				bestFeature = f
				bestThreshold = (lo + hi) / 2
			}
		}
	}

	if bestFeature < 0 {
		return node
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = buildTree(X, y, leftIdx, minLeaf)
	node.right = buildTree(X, y, rightIdx, minLeaf)
	return node
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	s := 0.0
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func sse(y []float64, idx []int, m float64) float64 {
	s := 0.0
	for _, i := range idx {
		d := y[i] - m
		s += d * d
	}
	return s
}
