package assembly

import (
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/utils"
)

// tensorOps holds the 1-D factors of a tensor element arranged per direction, direction 0 is
// the fastest index of both the basis and the cubature numbering.
type tensorOps struct {
	interp  []utils.Matrix   // Chi1D in every direction
	deriv   [][]utils.Matrix // per reference direction r, Dr1D in r and Chi1D elsewhere
	interpT []utils.Matrix
	derivT  [][]utils.Matrix
}

func newTensorOps(eo *operators.ElementOps) (to *tensorOps) {
	dim := eo.Dim
	chiT, drT := eo.Chi1D.Transpose(), eo.Dr1D.Transpose()
	to = &tensorOps{
		interp:  make([]utils.Matrix, dim),
		interpT: make([]utils.Matrix, dim),
		deriv:   make([][]utils.Matrix, dim),
		derivT:  make([][]utils.Matrix, dim),
	}
	for d := 0; d < dim; d++ {
		to.interp[d], to.interpT[d] = eo.Chi1D, chiT
	}
	for r := 0; r < dim; r++ {
		to.deriv[r] = make([]utils.Matrix, dim)
		to.derivT[r] = make([]utils.Matrix, dim)
		for d := 0; d < dim; d++ {
			if d == r {
				to.deriv[r][d], to.derivT[r][d] = eo.Dr1D, drT
			} else {
				to.deriv[r][d], to.derivT[r][d] = eo.Chi1D, chiT
			}
		}
	}
	return
}

// tensorApply computes ((x)_d A[d]) x one direction at a time. x holds nvar interleaved
// variables per tensor index, A[d] maps n_in to n_out points along direction d.
func tensorApply[T utils.Scalar](A []utils.Matrix, x []T, nvar int) (y []T) {
	dim := len(A)
	sizes := make([]int, dim)
	for d := range A {
		_, sizes[d] = A[d].Dims()
	}
	y = x
	for d := 0; d < dim; d++ {
		nOut, nIn := A[d].Dims()
		lower, upper := 1, 1
		for k := 0; k < d; k++ {
			lower *= sizes[k]
		}
		for k := d + 1; k < dim; k++ {
			upper *= sizes[k]
		}
		out := make([]T, upper*nOut*lower*nvar)
		for u := 0; u < upper; u++ {
			for i := 0; i < nOut; i++ {
				row := A[d].DataP[i*nIn : (i+1)*nIn]
				dst := out[(u*nOut+i)*lower*nvar : (u*nOut+i+1)*lower*nvar]
				for k, a := range row {
					if a == 0 {
						continue
					}
					at := utils.FromReal[T](a)
					src := y[(u*nIn+k)*lower*nvar : (u*nIn+k+1)*lower*nvar]
					for j := range dst {
						dst[j] += at * src[j]
					}
				}
			}
		}
		sizes[d] = nOut
		y = out
	}
	return
}
