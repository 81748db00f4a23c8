package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/godpg/geometry"
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
)

// Volume is one element with its solution storage. W, RHS and DWdt are Np x NVar with the basis
// index slowest. Grad holds the corrected gradient coefficients per physical direction.
type Volume struct {
	Index    int
	Type     types.ElementType
	P        int
	Curved   bool
	Vertices []int // global vertex ids
	Faces    []int // face index per local face

	Ops  *operators.ElementOps
	Geom *geometry.VolumeGeometry

	W, RHS, DWdt utils.Matrix
	Grad         []utils.Matrix
}

// Face joins a left volume to a right volume, or closes a boundary when Right < 0. Face
// geometry is stored in the left volume node ordering with the left outward normal.
type Face struct {
	Index          int
	Left, Right    int
	LocalL, LocalR int
	Orient         int
	Perm           []int // right face node Perm[q] matches left node q
	BC             types.BCType
	Geom           *geometry.FaceGeometry
}

func (f *Face) Boundary() bool { return f.Right < 0 }

type Mesh struct {
	Dim      int
	VX       [][]float64 // vertex coordinates
	Volumes  []*Volume
	Faces    []*Face
	NVar     int
	isSetup  bool
	elements []types.ElementType
}

// New builds the mesh topology from vertex coordinates and element to vertex connectivity. Faces
// shared by two volumes are found from the sparse product FToV * FToV^T.
func New(VX [][]float64, etypes []types.ElementType, EToV [][]int) (m *Mesh, err error) {
	if len(etypes) != len(EToV) {
		err = fmt.Errorf("have %d element types for %d elements", len(etypes), len(EToV))
		return
	}
	if len(EToV) == 0 {
		err = fmt.Errorf("empty mesh")
		return
	}
	m = &Mesh{
		Dim:      etypes[0].Dim(),
		VX:       VX,
		elements: etypes,
	}
	var (
		faceOffset = make([]int, len(EToV)+1)
		fvMaps     = make([][][]int, len(EToV))
	)
	for k, et := range etypes {
		if et.Dim() != m.Dim {
			err = fmt.Errorf("element %d is %dD in a %dD mesh", k, et.Dim(), m.Dim)
			return
		}
		if len(EToV[k]) != et.NVertices() {
			err = fmt.Errorf("element %d (%s) has %d vertices, need %d", k, et, len(EToV[k]),
				et.NVertices())
			return
		}
		for _, v := range EToV[k] {
			if v < 0 || v >= len(VX) {
				err = fmt.Errorf("element %d references vertex %d, have %d vertices", k, v, len(VX))
				return
			}
		}
		faceOffset[k+1] = faceOffset[k] + et.NFaces()
		fvMaps[k] = operators.FaceVertices(et)
		m.Volumes = append(m.Volumes, &Volume{
			Index:    k,
			Type:     et,
			Vertices: EToV[k],
			Faces:    make([]int, et.NFaces()),
		})
	}
	totalFaces := faceOffset[len(EToV)]
	owner := make([][2]int, totalFaces) // (volume, local face)
	corners := make([][]int, totalFaces)
	SpFToV := sparse.NewDOK(totalFaces, len(VX))
	for k := range EToV {
		for f, fv := range fvMaps[k] {
			sk := faceOffset[k] + f
			owner[sk] = [2]int{k, f}
			corners[sk] = make([]int, len(fv))
			for c, lv := range fv {
				gv := EToV[k][lv]
				corners[sk][c] = gv
				SpFToV.Set(sk, gv, 1)
			}
		}
	}
	FToV := SpFToV.ToCSR()
	SpFToF := sparse.NewCSR(totalFaces, totalFaces, nil, nil, nil)
	SpFToF.Mul(FToV, FToV.T())

	match := make([]int, totalFaces)
	for i := range match {
		match[i] = -1
	}
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if i == j || int(v) != len(corners[i]) || len(corners[i]) != len(corners[j]) {
			return
		}
		if match[i] >= 0 && match[i] != j {
			err = fmt.Errorf("face %d is shared by more than two volumes", i)
			return
		}
		match[i] = j
	})
	if err != nil {
		return
	}

	for i := 0; i < totalFaces; i++ {
		j := match[i]
		if j >= 0 && j < i {
			continue
		}
		kL, fL := owner[i][0], owner[i][1]
		face := &Face{
			Index:  len(m.Faces),
			Left:   kL,
			LocalL: fL,
			Right:  -1,
			LocalR: -1,
		}
		if j >= 0 {
			face.Right, face.LocalR = owner[j][0], owner[j][1]
			if face.Orient, err = operators.FindOrientation(m.Dim, corners[i], corners[j]); err != nil {
				return
			}
			m.Volumes[face.Right].Faces[face.LocalR] = face.Index
		}
		m.Volumes[kL].Faces[fL] = face.Index
		m.Faces = append(m.Faces, face)
	}
	return
}

// BoundaryTagger assigns a boundary condition from the centroid of a boundary face
type BoundaryTagger func(centroid []float64) types.BCType

// TagBoundaries sets the BC of every boundary face
func (m *Mesh) TagBoundaries(tag BoundaryTagger) {
	for _, f := range m.Faces {
		if f.Boundary() {
			f.BC = tag(m.faceCentroid(f))
		}
	}
}

func (m *Mesh) faceCentroid(f *Face) (c []float64) {
	vol := m.Volumes[f.Left]
	fv := operators.FaceVertices(vol.Type)[f.LocalL]
	c = make([]float64, m.Dim)
	for _, lv := range fv {
		for d := range c {
			c[d] += m.VX[vol.Vertices[lv]][d] / float64(len(fv))
		}
	}
	return
}

// Setup attaches reference operators of order P and geometry to every volume and face, and
// allocates the solution storage for nvar variables. Volumes flagged Curved are mapped through
// curve.
func (m *Mesh) Setup(tb *operators.Table, P, nvar int, curve geometry.Curve) (err error) {
	m.NVar = nvar
	for _, vol := range m.Volumes {
		vol.P = P
		if vol.Ops, err = tb.Get(vol.Type, P); err != nil {
			return
		}
		verts := make([][]float64, len(vol.Vertices))
		for i, gv := range vol.Vertices {
			verts[i] = m.VX[gv]
		}
		var c geometry.Curve
		if vol.Curved {
			c = curve
		}
		if vol.Geom, err = geometry.NewVolumeGeometry(vol.Ops, verts, c); err != nil {
			err = fmt.Errorf("volume %d: %w", vol.Index, err)
			return
		}
		np := vol.Ops.Np
		vol.W = utils.NewMatrix(np, nvar)
		vol.RHS = utils.NewMatrix(np, nvar)
		vol.DWdt = utils.NewMatrix(np, nvar)
		vol.Grad = make([]utils.Matrix, m.Dim)
		for d := range vol.Grad {
			vol.Grad[d] = utils.NewMatrix(np, nvar)
		}
	}
	for _, f := range m.Faces {
		volL := m.Volumes[f.Left]
		f.Geom = geometry.NewFaceGeometry(volL.Ops, volL.Geom, f.LocalL)
		if f.Boundary() {
			if f.BC == types.BC_None {
				err = fmt.Errorf("boundary face %d has no boundary condition", f.Index)
				return
			}
			continue
		}
		volR := m.Volumes[f.Right]
		f.Perm = volR.Ops.Perm(f.Orient)
		if err = m.checkPerm(f); err != nil {
			return
		}
	}
	m.isSetup = true
	return
}

// checkPerm verifies that the right face nodes selected by the permutation coincide with the
// left face nodes.
func (m *Mesh) checkPerm(f *Face) error {
	volR := m.Volumes[f.Right]
	XR := volR.Ops.ChiFc[f.LocalR].Mul(volR.Geom.X)
	tol := 1.e-10 * volR.Geom.MinLength()
	for q, qR := range f.Perm {
		var d float64
		for x := 0; x < m.Dim; x++ {
			diff := f.Geom.X.At(q, x) - XR.At(qR, x)
			d += diff * diff
		}
		if d > tol*tol {
			return fmt.Errorf("face %d: right node %d does not match left node %d", f.Index, qR, q)
		}
	}
	return nil
}

// IsSetup reports whether Setup completed
func (m *Mesh) IsSetup() bool { return m.isSetup }

// BlockSizes returns the number of degrees of freedom of each volume
func (m *Mesh) BlockSizes() (sizes []int) {
	sizes = make([]int, len(m.Volumes))
	for k, vol := range m.Volumes {
		sizes[k] = vol.Ops.Np * m.NVar
	}
	return
}

// Neighbors returns the volumes sharing a face with volume k
func (m *Mesh) Neighbors(k int) (nbrs []int) {
	for _, fi := range m.Volumes[k].Faces {
		f := m.Faces[fi]
		switch {
		case f.Boundary():
		case f.Left == k:
			nbrs = append(nbrs, f.Right)
		default:
			nbrs = append(nbrs, f.Left)
		}
	}
	return
}

// SetCurved flags every volume for the curved map
func (m *Mesh) SetCurved() {
	for _, vol := range m.Volumes {
		vol.Curved = true
	}
}

// Project sets W on every volume by evaluating fn at the basis nodes
func (m *Mesh) Project(fn func(x []float64, w []float64)) {
	for _, vol := range m.Volumes {
		for i := 0; i < vol.Ops.Np; i++ {
			fn(vol.Geom.X.Row(i), vol.W.Row(i))
		}
	}
}
