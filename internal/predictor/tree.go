package predictor

import "sort"

// node is one node of the fitted tree. Internal nodes route on
// x[feature] <= threshold; leaves keep the class counts observed during
// training, which double as the probability estimate at inference time.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	leaf      bool
	counts    [2]int
}

// decisionTree is a shallow CART-style binary classifier fitted with gini
// impurity splits. Depth is capped at construction; the tree is immutable
// once fitted.
type decisionTree struct {
	root     *node
	maxDepth int
}

func fitTree(features [][]float64, labels []int, maxDepth int) *decisionTree {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	t := &decisionTree{maxDepth: maxDepth}
	t.root = t.build(features, labels, idx, 0)
	return t
}

func (t *decisionTree) build(features [][]float64, labels []int, idx []int, depth int) *node {
	counts := classCounts(labels, idx)

	if depth >= t.maxDepth || counts[0] == 0 || counts[1] == 0 || len(idx) < 2 {
		return &node{leaf: true, counts: counts}
	}

	feature, threshold, ok := bestSplit(features, labels, idx)
	if !ok {
		return &node{leaf: true, counts: counts}
	}

	var left, right []int
	for _, i := range idx {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{leaf: true, counts: counts}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      t.build(features, labels, left, depth+1),
		right:     t.build(features, labels, right, depth+1),
	}
}

// predictProba walks the tree and returns the class probabilities at the
// reached leaf, indexed by class label.
func (t *decisionTree) predictProba(x []float64) [2]float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	total := float64(n.counts[0] + n.counts[1])
	if total == 0 {
		return [2]float64{0.5, 0.5}
	}
	return [2]float64{float64(n.counts[0]) / total, float64(n.counts[1]) / total}
}

func classCounts(labels []int, idx []int) [2]int {
	var counts [2]int
	for _, i := range idx {
		counts[labels[i]]++
	}
	return counts
}

func gini(counts [2]int) float64 {
	total := float64(counts[0] + counts[1])
	if total == 0 {
		return 0
	}
	p0 := float64(counts[0]) / total
	p1 := float64(counts[1]) / total
	return 1 - p0*p0 - p1*p1
}

// bestSplit scans every feature and every midpoint between consecutive
// distinct values, and returns the split with the lowest weighted gini
// impurity. ok is false when no feature separates the samples.
func bestSplit(features [][]float64, labels []int, idx []int) (feature int, threshold float64, ok bool) {
	bestImpurity := gini(classCounts(labels, idx))
	numFeatures := len(features[idx[0]])

	order := make([]int, len(idx))
	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return features[order[a]][f] < features[order[b]][f]
		})

		// Sweep left to right, moving one sample at a time into the left
		// partition and evaluating the midpoint to the next sample.
		var leftCounts [2]int
		rightCounts := classCounts(labels, idx)
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftCounts[labels[i]]++
			rightCounts[labels[i]]--

			cur, next := features[i][f], features[order[k+1]][f]
			if cur == next {
				continue
			}

			leftTotal := float64(k + 1)
			rightTotal := float64(len(order) - k - 1)
			total := leftTotal + rightTotal
			weighted := (leftTotal/total)*gini(leftCounts) + (rightTotal/total)*gini(rightCounts)

			if weighted < bestImpurity {
				bestImpurity = weighted
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
