// Package tree implements CART regression trees.
package tree

import (
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/iziml/core/model"
	"github.com/YuminosukeSato/iziml/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const modelName = "DecisionTreeRegressor"

// leaf marks the feature/children of a terminal node.
const leaf = -1

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	impurity  float64
	nSamples  int
}

// DecisionTreeRegressor is a binary regression tree grown greedily until
// nodes are pure or the sample-count limits stop further splits.
// Samples with x[feature] <= threshold go left.
type DecisionTreeRegressor struct {
	state *model.StateManager

	criterion       Criterion
	maxFeatures     MaxFeatures
	minSamplesSplit int
	minSamplesLeaf  int
	maxDepth        int
	randomState     uint64

	nodes        []node
	importances_ []float64 // weighted impurity decrease per feature, unnormalised
	depth_       int
}

// NewDecisionTreeRegressor creates a tree with scikit-learn's defaults.
func NewDecisionTreeRegressor(options ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		state:           model.NewStateManager(),
		criterion:       SquaredError,
		maxFeatures:     MaxFeaturesAll,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Name implements model.Estimator.
func (t *DecisionTreeRegressor) Name() string {
	return modelName
}

func (t *DecisionTreeRegressor) validateParams() error {
	switch {
	case !t.criterion.Valid():
		return errors.NewValueError("DecisionTreeRegressor.Fit", "unknown criterion "+string(t.criterion))
	case t.minSamplesSplit < 2:
		return errors.NewValueError("DecisionTreeRegressor.Fit", "min_samples_split must be >= 2")
	case t.minSamplesLeaf < 1:
		return errors.NewValueError("DecisionTreeRegressor.Fit", "min_samples_leaf must be >= 1")
	case t.maxDepth < 0:
		return errors.NewValueError("DecisionTreeRegressor.Fit", "max_depth must be >= 0")
	}
	return nil
}

// Fit grows the tree on all rows of X.
func (t *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", 1, yCols, 1)
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	return t.FitColumns(NewColumns(X), mat.Col(nil, 0, y), indices)
}

// FitColumns grows the tree on the rows listed in indices. Indices may
// repeat, which is how bootstrap samples are expressed.
func (t *DecisionTreeRegressor) FitColumns(cols *Columns, y []float64, indices []int) error {
	if err := t.validateParams(); err != nil {
		return err
	}
	if len(indices) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != cols.rows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", cols.rows, len(y), 0)
	}

	nFeatures := len(cols.data)
	b := &builder{
		t:           t,
		cols:        cols,
		y:           y,
		rng:         rand.New(rand.NewPCG(t.randomState, t.randomState)),
		maxFeatures: t.maxFeatures.Resolve(nFeatures),
		features:    make([]int, nFeatures),
		raw:         make([]float64, nFeatures),
	}
	t.nodes = t.nodes[:0]
	t.depth_ = 0
	b.grow(append([]int(nil), indices...), 0)

	t.importances_ = b.raw
	t.state.SetFitted(nFeatures, len(indices))
	return nil
}

type builder struct {
	t           *DecisionTreeRegressor
	cols        *Columns
	y           []float64
	rng         *rand.Rand
	maxFeatures int
	features    []int
	raw         []float64
}

func (b *builder) grow(indices []int, depth int) int {
	t := b.t
	c := t.criterion
	n := len(indices)
	imp := c.impurity(b.y, indices)

	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		feature:  leaf,
		left:     leaf,
		right:    leaf,
		value:    c.leafValue(b.y, indices),
		impurity: imp,
		nSamples: n,
	})
	t.depth_ = max(t.depth_, depth)

	if n < t.minSamplesSplit || n < 2*t.minSamplesLeaf || imp <= impurityEpsilon ||
		(t.maxDepth > 0 && depth >= t.maxDepth) {
		return id
	}

	best, ok := b.bestSplit(indices)
	if !ok {
		return id
	}

	col := b.cols.data[best.feature]
	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, i := range indices {
		if col[i] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)

	// t.nodes may have been reallocated by the recursive calls
	nd := &t.nodes[id]
	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.left = l
	nd.right = r

	decrease := float64(n)*imp - float64(len(left))*t.nodes[l].impurity - float64(len(right))*t.nodes[r].impurity
	b.raw[best.feature] += max(decrease, 0)
	return id
}

// bestSplit visits features in random order. Features constant within the
// node are skipped without counting toward maxFeatures, and the search goes on
// past maxFeatures until at least one valid split has been found.
func (b *builder) bestSplit(indices []int) (split, bool) {
	for i := range b.features {
		b.features[i] = i
	}
	if b.maxFeatures < len(b.features) {
		b.rng.Shuffle(len(b.features), func(i, j int) {
			b.features[i], b.features[j] = b.features[j], b.features[i]
		})
	}

	order := make([]int, len(indices))
	var best split
	found := false
	visited := 0
	for _, f := range b.features {
		if visited >= b.maxFeatures && found {
			break
		}
		col := b.cols.data[f]
		copy(order, indices)
		sort.SliceStable(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })
		if col[order[0]] == col[order[len(order)-1]] {
			continue
		}
		visited++

		s, ok := b.t.criterion.scan(col, b.y, order, b.t.minSamplesLeaf)
		if ok && (!found || s.score > best.score) {
			s.feature = f
			best = s
			found = true
		}
	}
	return best, found
}

// Predict returns one prediction per row of X as an n×1 matrix.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := t.state.RequirePredictable(modelName, X); err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, t.predict(func(j int) float64 { return X.At(i, j) }))
	}
	return out, nil
}

// PredictRow predicts row i of cols. The tree must be fitted.
func (t *DecisionTreeRegressor) PredictRow(cols *Columns, i int) float64 {
	return t.predict(func(j int) float64 { return cols.data[j][i] })
}

func (t *DecisionTreeRegressor) predict(at func(j int) float64) float64 {
	id := 0
	for t.nodes[id].feature != leaf {
		nd := t.nodes[id]
		if at(nd.feature) <= nd.threshold {
			id = nd.left
		} else {
			id = nd.right
		}
	}
	return t.nodes[id].value
}

// FeatureImportances returns the normalised total impurity decrease per
// feature. A tree without splits returns all zeros.
func (t *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "FeatureImportances")
	}
	out := make([]float64, len(t.importances_))
	copy(out, t.importances_)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out, nil
}

// NodeCount returns the number of nodes, leaves included.
func (t *DecisionTreeRegressor) NodeCount() int {
	return len(t.nodes)
}

// Depth returns the depth of the deepest leaf; a single-leaf tree has depth 0.
func (t *DecisionTreeRegressor) Depth() int {
	return t.depth_
}

// Columns is a column-major, read-only copy of a feature matrix shared by
// every tree of a forest.
type Columns struct {
	data [][]float64
	rows int
}

// NewColumns copies X column by column.
func NewColumns(X mat.Matrix) *Columns {
	r, c := X.Dims()
	data := make([][]float64, c)
	for j := 0; j < c; j++ {
		data[j] = mat.Col(nil, j, X)
	}
	return &Columns{data: data, rows: r}
}

// Dims returns the number of rows and columns.
func (c *Columns) Dims() (rows, cols int) {
	return c.rows, len(c.data)
}
