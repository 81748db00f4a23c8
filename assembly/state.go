package assembly

import (
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/utils"
)

// State holds the solution, residual and gradient coefficients of every volume for one scalar
// type. All arrays are Np x NVar with the basis index slowest.
type State[T utils.Scalar] struct {
	W, RHS [][]T
	Grad   [][][]T // per volume, per physical direction

	// Transient BR2 data of the last pass
	gradRaw [][][]T    // per volume, per direction: B[x] W
	lift    [][2][][]T // per face, per side, per direction
}

// NewState allocates separate storage initialized from the mesh solution
func NewState[T utils.Scalar](m *mesh.Mesh) (st *State[T]) {
	st = &State[T]{}
	for _, vol := range m.Volumes {
		np := vol.Ops.Np
		st.W = append(st.W, utils.FromRealSlice[T](vol.W.DataP))
		st.RHS = append(st.RHS, make([]T, np*m.NVar))
		grad := make([][]T, m.Dim)
		for x := range grad {
			grad[x] = make([]T, np*m.NVar)
		}
		st.Grad = append(st.Grad, grad)
	}
	return
}

// MeshState aliases the storage owned by the mesh volumes, results land in Volume.RHS and
// Volume.Grad.
func MeshState(m *mesh.Mesh) (st *State[float64]) {
	st = &State[float64]{}
	for _, vol := range m.Volumes {
		st.W = append(st.W, vol.W.DataP)
		st.RHS = append(st.RHS, vol.RHS.DataP)
		grad := make([][]float64, m.Dim)
		for x := range grad {
			grad[x] = vol.Grad[x].DataP
		}
		st.Grad = append(st.Grad, grad)
	}
	return
}

// RealRHS returns the real part of the residual of volume k
func (st *State[T]) RealRHS(k int) []float64 { return utils.ToReal(st.RHS[k]) }

func zero[T utils.Scalar](s []T) {
	var z T
	for i := range s {
		s[i] = z
	}
}
