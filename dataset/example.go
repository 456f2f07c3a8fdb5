package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/iziml/pkg/errors"
)

// ExampleColumns are the columns of the Example dataset, target last.
var ExampleColumns = []string{"MolLogP", "MolWt", "NumRotatableBonds", "AromaticProportion", "logS"}

// Example generates a synthetic solubility dataset shaped like the Delaney
// descriptor set: four molecular descriptors and logS computed from the ESOL
// equation plus Gaussian noise. The same seed always yields the same rows.
func Example(seed uint64, rows int) (*Dataset, error) {
	if rows < 1 {
		return nil, errors.NewValueError("dataset.Example", "rows must be >= 1")
	}
	r := rand.New(rand.NewPCG(seed, seed))
	cols := make([][]float64, len(ExampleColumns))
	for j := range cols {
		cols[j] = make([]float64, rows)
	}
	for i := 0; i < rows; i++ {
		logP := -2 + 8*r.Float64()
		molWt := 50 + math.Abs(r.NormFloat64())*150 + 20*logP
		if molWt < 16 {
			molWt = 16
		}
		rot := float64(r.IntN(12))
		arom := math.Round(r.Float64()*100) / 100

		// ESOL: logS = 0.16 - 0.63 clogP - 0.0062 MW + 0.066 RB - 0.74 AP
		logS := 0.16 - 0.63*logP - 0.0062*molWt + 0.066*rot - 0.74*arom + 0.3*r.NormFloat64()

		cols[0][i] = round4(logP)
		cols[1][i] = round4(molWt)
		cols[2][i] = rot
		cols[3][i] = arom
		cols[4][i] = round4(logS)
	}
	return FromColumns(ExampleColumns, cols)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
