package formants

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// autocorrelation returns r[0..maxLag] of x
func autocorrelation(x []float64, maxLag int) []float64 {
	r := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := lag; i < len(x); i++ {
			sum += x[i] * x[i-lag]
		}
		r[lag] = sum
	}
	return r
}

// levinson solves the Yule-Walker equations for r and returns the prediction
// polynomial [1, a1, ..., ap]
func levinson(r []float64, order int) ([]float64, error) {
	if len(r) < order+1 {
		return nil, &ExtractionError{Stage: StageLPC, Message: "autocorrelation shorter than model order"}
	}
	if r[0] <= 0 || math.IsNaN(r[0]) || math.IsInf(r[0], 0) {
		return nil, &ExtractionError{Stage: StageLPC, Message: "signal has no energy"}
	}

	a := make([]float64, order+1)
	a[0] = 1
	predErr := r[0]

	tmp := make([]float64, order+1)
	for i := 1; i <= order; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc += a[j] * r[i-j]
		}
		k := -acc / predErr

		copy(tmp, a)
		for j := 1; j < i; j++ {
			a[j] = tmp[j] + k*tmp[i-j]
		}
		a[i] = k

		predErr *= 1 - k*k
		if predErr <= 0 || math.IsNaN(predErr) {
			// Perfectly predictable up to this order; higher terms stay zero
			if predErr == 0 {
				break
			}
			return nil, &ExtractionError{Stage: StageLPC, Message: "prediction error became non-positive"}
		}
	}

	return a, nil
}

// polyRoots returns the roots of c[0]*z^n + c[1]*z^(n-1) + ... + c[n] using
// the eigenvalues of the companion matrix
func polyRoots(c []float64) ([]complex128, error) {
	// Leading zeros lower the degree
	for len(c) > 0 && c[0] == 0 {
		c = c[1:]
	}
	// Trailing zeros are roots at the origin
	zeros := 0
	for len(c) > 0 && c[len(c)-1] == 0 {
		c = c[:len(c)-1]
		zeros++
	}

	roots := make([]complex128, zeros)
	n := len(c) - 1
	if n < 1 {
		return roots, nil
	}

	companion := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		companion.Set(0, j, -c[j+1]/c[0])
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, &ExtractionError{Stage: StageRoots, Message: "eigen decomposition did not converge"}
	}

	return append(roots, eig.Values(nil)...), nil
}

// rootFrequencies converts the upper half-plane roots to frequencies in Hz, ascending
func rootFrequencies(roots []complex128, sampleRate int) []float64 {
	freqs := make([]float64, 0, len(roots))
	for _, r := range roots {
		if imag(r) < 0 {
			continue
		}
		angle := math.Atan2(imag(r), real(r))
		freqs = append(freqs, angle*float64(sampleRate)/(2*math.Pi))
	}
	sort.Float64s(freqs)
	return freqs
}
