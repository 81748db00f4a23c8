package DG2D

import "github.com/notargets/godpg/DG1D"

// Cubature2D returns a collapsed coordinate Gauss rule on the reference triangle that integrates
// polynomials up to order COrder exactly.
func Cubature2D(COrder int) (R, S, W []float64) {
	cubN := (COrder + 2) / 2
	if cubN < 1 {
		cubN = 1
	}
	cuba, cubwa := DG1D.JacobiGQ(0, 0, cubN-1)
	cubb, cubwb := DG1D.JacobiGQ(1, 0, cubN-1)
	for j, b := range cubb {
		for i, a := range cuba {
			R = append(R, 0.5*(1+a)*(1-b)-1)
			S = append(S, b)
			W = append(W, 0.5*cubwa[i]*cubwb[j])
		}
	}
	return
}
