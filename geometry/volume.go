package geometry

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/utils"
)

// Curve displaces straight sided node positions to curved ones. It is applied at the basis nodes,
// giving an isoparametric map.
type Curve func(x []float64) []float64

// VolumeGeometry holds the physical geometry of one volume at its basis and cubature nodes
type VolumeGeometry struct {
	Dim    int
	X      utils.Matrix // Np x Dim, physical basis nodes
	Xc     utils.Matrix // Nc x Dim, physical cubature nodes
	DetJ   []float64    // Nc
	Metric []float64    // Nc x Dim x Dim, detJ * dr/dx at index (q*Dim+r)*Dim+x
	Mass   utils.Matrix
	MInv   utils.Matrix
	// MassDiag is set for collocated operators where the mass matrix is diag(w detJ)
	MassDiag bool
	Volume   float64
}

// NewVolumeGeometry maps the reference element onto the volume with the given vertex coordinates
// (Nv x Dim). A nil curve gives the (multi)linear vertex map.
func NewVolumeGeometry(eo *operators.ElementOps, verts [][]float64, curve Curve) (vg *VolumeGeometry,
	err error) {
	var (
		dim = eo.Dim
		nv  = eo.NVertices()
	)
	if len(verts) != nv {
		err = fmt.Errorf("%s needs %d vertices, have %d", eo.Type, nv, len(verts))
		return
	}
	V := utils.NewMatrix(nv, dim)
	for iv, v := range verts {
		if len(v) != dim {
			err = fmt.Errorf("vertex %d has %d coordinates, need %d", iv, len(v), dim)
			return
		}
		copy(V.Row(iv), v)
	}
	vg = &VolumeGeometry{Dim: dim}
	vg.X = eo.VertexShape.Mul(V)
	if curve != nil {
		for i := 0; i < eo.Np; i++ {
			copy(vg.X.Row(i), curve(vg.X.Row(i)))
		}
	}
	vg.Xc = eo.ChiVc.Mul(vg.X)
	vg.DetJ = make([]float64, eo.Nc)
	vg.Metric = make([]float64, eo.Nc*dim*dim)
	jac := make([]utils.Matrix, dim)
	for r := 0; r < dim; r++ {
		jac[r] = eo.DrVc[r].Mul(vg.X) // Nc x Dim, dx/dr
	}
	J := make([]float64, dim*dim)
	for q := 0; q < eo.Nc; q++ {
		for x := 0; x < dim; x++ {
			for r := 0; r < dim; r++ {
				J[x*dim+r] = jac[r].At(q, x)
			}
		}
		det, adj := adjugate(dim, J)
		if det <= 0 {
			err = fmt.Errorf("non-positive Jacobian determinant %g at cubature node %d", det, q)
			return
		}
		vg.DetJ[q] = det
		copy(vg.Metric[q*dim*dim:(q+1)*dim*dim], adj)
		vg.Volume += eo.Wvc[q] * det
	}
	vg.buildMass(eo)
	return
}

// adjugate returns det(J) and adj(J) = det(J) J^-1 for J[x][r] = dx/dr, laid out as [r][x]
func adjugate(dim int, J []float64) (det float64, adj []float64) {
	adj = make([]float64, dim*dim)
	switch dim {
	case 1:
		det = J[0]
		adj[0] = 1
	case 2:
		det = J[0]*J[3] - J[1]*J[2]
		adj[0], adj[1] = J[3], -J[1]
		adj[2], adj[3] = -J[2], J[0]
	case 3:
		c := func(i, j int) float64 { return J[i*3+j] }
		for r := 0; r < 3; r++ {
			for x := 0; x < 3; x++ {
				// cofactor of entry (x,r)
				i1, i2 := (x+1)%3, (x+2)%3
				j1, j2 := (r+1)%3, (r+2)%3
				adj[r*3+x] = c(i1, j1)*c(i2, j2) - c(i1, j2)*c(i2, j1)
			}
		}
		det = c(0, 0)*adj[0] + c(0, 1)*adj[3] + c(0, 2)*adj[6]
	}
	return
}

func (vg *VolumeGeometry) buildMass(eo *operators.ElementOps) {
	wd := make([]float64, eo.Nc)
	for q := range wd {
		wd[q] = eo.Wvc[q] * vg.DetJ[q]
	}
	if eo.Collocated {
		vg.MassDiag = true
		vg.Mass = utils.NewDiagMatrix(wd)
		inv := make([]float64, len(wd))
		for i, val := range wd {
			inv[i] = 1 / val
		}
		vg.MInv = utils.NewDiagMatrix(inv)
		return
	}
	vg.Mass = utils.NewMatrix(eo.Np, eo.Np)
	for q := 0; q < eo.Nc; q++ {
		row := eo.ChiVc.Row(q)
		for i, ci := range row {
			if ci == 0 {
				continue
			}
			for j, cj := range row {
				vg.Mass.DataP[j+eo.Np*i] += ci * cj * wd[q]
			}
		}
	}
	var err error
	if vg.MInv, err = vg.Mass.Inverse(); err != nil {
		panic(err)
	}
}

// PhysicalDerivative returns the physical gradient operators Gx[x] (Nc x Np) at the cubature
// nodes: Gx[x][q][j] = sum_r dr/dx(q) DrVc[r][q][j].
func (vg *VolumeGeometry) PhysicalDerivative(eo *operators.ElementOps) (Gx []utils.Matrix) {
	dim := vg.Dim
	Gx = make([]utils.Matrix, dim)
	for x := range Gx {
		Gx[x] = utils.NewMatrix(eo.Nc, eo.Np)
	}
	for q := 0; q < eo.Nc; q++ {
		for r := 0; r < dim; r++ {
			row := eo.DrVc[r].Row(q)
			for x := 0; x < dim; x++ {
				c := vg.Metric[(q*dim+r)*dim+x] / vg.DetJ[q]
				if c == 0 {
					continue
				}
				gx := Gx[x].Row(q)
				for j, val := range row {
					gx[j] += c * val
				}
			}
		}
	}
	return
}

// MinLength returns a length scale of the volume
func (vg *VolumeGeometry) MinLength() float64 {
	return math.Pow(vg.Volume, 1/float64(vg.Dim))
}
