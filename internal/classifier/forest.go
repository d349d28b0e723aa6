package classifier

// leafMarker marks a node with no children
const leafMarker = -1

// Tree is one fitted decision tree stored as parallel node arrays.
// Node 0 is the root. Value holds per-class sample counts (or weights).
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// RandomForest averages the class distributions of its trees
type RandomForest struct {
	Type     string  `json:"type"`
	Features int     `json:"n_features"`
	Classes  []int   `json:"classes"`
	Trees    []Tree  `json:"trees"`
	Scaler   *Scaler `json:"scaler,omitempty"`
}

func (f *RandomForest) Kind() string     { return KindRandomForest }
func (f *RandomForest) NumFeatures() int { return f.Features }

func (f *RandomForest) validate() error {
	if f.Features <= 0 {
		return invalidf("n_features must be positive")
	}
	classes, err := binaryClasses(f.Classes)
	if err != nil {
		return err
	}
	f.Classes = classes
	if len(f.Trees) == 0 {
		return invalidf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.Features, len(f.Classes)); err != nil {
			return invalidf("tree %d: %v", i, err)
		}
	}
	if f.Scaler != nil {
		return f.Scaler.validate(f.Features)
	}
	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return invalidf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return invalidf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafMarker {
			if len(t.Value[i]) != nClasses {
				return invalidf("leaf %d has %d class values, expected %d", i, len(t.Value[i]), nClasses)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles
		if left <= i || left >= n || right <= i || right >= n {
			return invalidf("node %d has out of range children (%d, %d)", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return invalidf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// leaf walks from the root to the leaf reached by x
func (t *Tree) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leafMarker {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

// Probabilities returns the mean normalised leaf distribution over all trees
func (f *RandomForest) Probabilities(features []float64) ([]float64, error) {
	if err := checkFeatureCount(features, f.Features); err != nil {
		return nil, err
	}
	x := f.Scaler.transform(features)

	proba := make([]float64, len(f.Classes))
	for i := range f.Trees {
		values := f.Trees[i].Value[f.Trees[i].leaf(x)]
		total := 0.0
		for _, v := range values {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range values {
			proba[c] += v / total
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the class with the highest mean probability.
// Ties go to the first class.
func (f *RandomForest) Predict(features []float64) (int, error) {
	proba, err := f.Probabilities(features)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}
