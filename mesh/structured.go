package mesh

import (
	"fmt"

	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// NewLineMesh divides [x0,x1] into K equal elements
func NewLineMesh(K int, x0, x1 float64) (*Mesh, error) {
	if K < 1 {
		return nil, fmt.Errorf("need at least one element, have %d", K)
	}
	var (
		VX    [][]float64
		EToV  [][]int
		etype = make([]types.ElementType, K)
	)
	for i, x := range utils.Linspace(x0, x1, K+1) {
		VX = append(VX, []float64{x})
		if i < K {
			EToV = append(EToV, []int{i, i + 1})
		}
	}
	for k := range etype {
		etype[k] = types.Line
	}
	return New(VX, etype, EToV)
}

// NewQuadMesh divides the box [x0,x1]x[y0,y1] into nx by ny quadrilaterals
func NewQuadMesh(nx, ny int, box [4]float64) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("need at least one element per direction, have %d x %d", nx, ny)
	}
	VX := grid2D(nx, ny, box)
	var (
		EToV  [][]int
		etype []types.ElementType
		vid   = func(i, j int) int { return i + (nx+1)*j }
	)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			EToV = append(EToV, []int{vid(i, j), vid(i+1, j), vid(i, j+1), vid(i+1, j+1)})
			etype = append(etype, types.Quad)
		}
	}
	return New(VX, etype, EToV)
}

// NewTriMesh divides the box into nx by ny cells, each split into two counterclockwise
// triangles along the diagonal from the lower left corner.
func NewTriMesh(nx, ny int, box [4]float64) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("need at least one cell per direction, have %d x %d", nx, ny)
	}
	VX := grid2D(nx, ny, box)
	var (
		EToV  [][]int
		etype []types.ElementType
		vid   = func(i, j int) int { return i + (nx+1)*j }
	)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			EToV = append(EToV,
				[]int{vid(i, j), vid(i+1, j), vid(i+1, j+1)},
				[]int{vid(i, j), vid(i+1, j+1), vid(i, j+1)})
			etype = append(etype, types.Triangle, types.Triangle)
		}
	}
	return New(VX, etype, EToV)
}

// NewHexMesh divides the box [x0,x1]x[y0,y1]x[z0,z1] into nx by ny by nz hexahedra
func NewHexMesh(nx, ny, nz int, box [6]float64) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("need at least one element per direction, have %d x %d x %d",
			nx, ny, nz)
	}
	var (
		VX    [][]float64
		EToV  [][]int
		etype []types.ElementType
		xs    = utils.Linspace(box[0], box[1], nx+1)
		ys    = utils.Linspace(box[2], box[3], ny+1)
		zs    = utils.Linspace(box[4], box[5], nz+1)
		vid   = func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	)
	for _, z := range zs {
		for _, y := range ys {
			for _, x := range xs {
				VX = append(VX, []float64{x, y, z})
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				var verts []int
				for c := 0; c < 8; c++ {
					verts = append(verts, vid(i+(c&1), j+((c>>1)&1), k+((c>>2)&1)))
				}
				EToV = append(EToV, verts)
				etype = append(etype, types.Hex)
			}
		}
	}
	return New(VX, etype, EToV)
}

// NewTwoTriangleMesh is the unit square split into two triangles along the diagonal (0,0)-(1,1)
func NewTwoTriangleMesh() (*Mesh, error) {
	VX := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	EToV := [][]int{{0, 1, 2}, {0, 2, 3}}
	return New(VX, []types.ElementType{types.Triangle, types.Triangle}, EToV)
}

func grid2D(nx, ny int, box [4]float64) (VX [][]float64) {
	for _, y := range utils.Linspace(box[2], box[3], ny+1) {
		for _, x := range utils.Linspace(box[0], box[1], nx+1) {
			VX = append(VX, []float64{x, y})
		}
	}
	return
}

// NewUnitBoxMesh divides the unit line, square or cube into n elements per direction
func NewUnitBoxMesh(et types.ElementType, n int) (*Mesh, error) {
	switch et {
	case types.Line:
		return NewLineMesh(n, 0, 1)
	case types.Quad:
		return NewQuadMesh(n, n, [4]float64{0, 1, 0, 1})
	case types.Triangle:
		return NewTriMesh(n, n, [4]float64{0, 1, 0, 1})
	case types.Hex:
		return NewHexMesh(n, n, n, [6]float64{0, 1, 0, 1, 0, 1})
	}
	return nil, fmt.Errorf("no structured generator for %s elements", et)
}
