package flux

// StepSize is the imaginary perturbation of complex step differentiation
const StepSize = 1.e-30

// ComplexStep differentiates fn at x, returning J[o*len(x)+j] = d out_o / d x_j. fn receives the
// perturbed input and a zeroed output of length nout and must be analytic in its input.
func ComplexStep(x []float64, nout int, fn func(z, out []complex128)) (J []float64) {
	var (
		n   = len(x)
		z   = make([]complex128, n)
		out = make([]complex128, nout)
	)
	J = make([]float64, nout*n)
	for j := 0; j < n; j++ {
		for i, val := range x {
			z[i] = complex(val, 0)
		}
		z[j] += complex(0, StepSize)
		for o := range out {
			out[o] = 0
		}
		fn(z, out)
		for o, val := range out {
			J[o*n+j] = imag(val) / StepSize
		}
	}
	return
}
