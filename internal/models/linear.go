package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/manojb/expensecast/internal/utils"
)

// LinearRegression is ordinary least squares with an intercept, solved via
// QR decomposition.
type LinearRegression struct {
	coef      []float64
	intercept float64
	nFeatures int
}

// NewLinearRegression creates an unfitted OLS model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Name returns the model identifier.
func (m *LinearRegression) Name() string {
	return LinearRegressionName
}

// Fit solves min ||Xb - y|| over the design matrix extended with a bias
// column.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	rows := len(X)
	cols := len(X[0])

	design := mat.NewDense(rows, cols+1, nil)
	for i, row := range X {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(rows, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)

	var solution mat.VecDense
	if err := qr.SolveVecTo(&solution, false, target); err != nil {
		return fmt.Errorf("least squares solve failed: %w", err)
	}

	m.intercept = solution.AtVec(0)
	m.coef = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.coef[j] = solution.AtVec(j + 1)
	}
	m.nFeatures = cols
	return nil
}

// Predict evaluates the fitted linear function row by row.
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if m.coef == nil {
		return nil, utils.NewValidationError("linear regression predict called before fit")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != m.nFeatures {
			return nil, utils.NewValidationErrorf(
				"row has %d features, model was fit on %d", len(row), m.nFeatures)
		}
		sum := m.intercept
		for j, v := range row {
			sum += m.coef[j] * v
		}
		out[i] = sum
	}
	return out, nil
}

func validateTrainingData(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return utils.NewValidationError("cannot fit on an empty training set")
	}
	if len(X) != len(y) {
		return utils.NewValidationErrorf("X has %d rows but y has %d values", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return utils.NewValidationError("cannot fit on zero features")
	}
	for i, row := range X {
		if len(row) != width {
			return utils.NewValidationErrorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}
