package DG2D

import (
	"fmt"
	"math"

	"github.com/notargets/godpg/DG1D"
	"github.com/notargets/godpg/utils"
)

// Nodes2D returns the warp and blend nodes of order N on the equilateral triangle
func Nodes2D(N int) (x, y []float64) {
	if N < 1 {
		panic(fmt.Errorf("Nodes2D requires N >= 1, have %d", N))
	}
	var (
		alpha      float64
		Np         = (N + 1) * (N + 2) / 2
		l1, l2, l3 = make([]float64, Np), make([]float64, Np), make([]float64, Np)
	)
	x, y = make([]float64, Np), make([]float64, Np)
	alpopt := []float64{
		0.0000, 0.0000, 1.4152, 0.1001, 0.2751,
		0.9800, 1.0999, 1.2832, 1.3648, 1.4773,
		1.4959, 1.5743, 1.5770, 1.6223, 1.6258,
	}
	if N < 16 {
		alpha = alpopt[N-1]
	} else {
		alpha = 5. / 3.
	}
	// Create equidistributed nodes on equilateral triangle
	fn := 1. / float64(N)
	var sk int
	for n := 0; n < N+1; n++ {
		for m := 0; m < (N + 1 - n); m++ {
			l1[sk] = float64(n) * fn
			l3[sk] = float64(m) * fn
			sk++
		}
	}
	d32, d13, d21 := make([]float64, Np), make([]float64, Np), make([]float64, Np)
	for i := range x {
		l2[i] = 1 - l1[i] - l3[i]
		x[i] = l3[i] - l2[i]
		y[i] = (2*l1[i] - l3[i] - l2[i]) / math.Sqrt(3)
		d32[i], d13[i], d21[i] = l3[i]-l2[i], l1[i]-l3[i], l2[i]-l1[i]
	}
	// Amount of warp for each node, for each edge
	warpf1 := Warpfactor(N, d32)
	warpf2 := Warpfactor(N, d13)
	warpf3 := Warpfactor(N, d21)
	for i := range x {
		// Blend & warp per edge
		warp1 := 4 * l2[i] * l3[i] * warpf1[i] * (1 + utils.POW(alpha*l1[i], 2))
		warp2 := 4 * l1[i] * l3[i] * warpf2[i] * (1 + utils.POW(alpha*l2[i], 2))
		warp3 := 4 * l1[i] * l2[i] * warpf3[i] * (1 + utils.POW(alpha*l3[i], 2))
		x[i] += warp1 + math.Cos(2*math.Pi/3)*warp2 + math.Cos(4*math.Pi/3)*warp3
		y[i] += math.Sin(2*math.Pi/3)*warp2 + math.Sin(4*math.Pi/3)*warp3
	}
	return
}

// Warpfactor maps equidistant edge nodes onto Gauss-Lobatto nodes, scaled by the edge blend
func Warpfactor(N int, rout []float64) (warpF []float64) {
	LGLr, _ := DG1D.JacobiGL(0, 0, N)
	req := utils.Linspace(-1, 1, N+1)
	Leq, _ := DG1D.LagrangeInterpolation(req, rout)
	warpF = make([]float64, len(rout))
	for i, r := range rout {
		var warp float64
		for j := range req {
			warp += Leq.At(i, j) * (LGLr[j] - req[j])
		}
		if math.Abs(r) < 1.0-1.e-10 {
			warpF[i] = warp / (1 - r*r)
		}
	}
	return
}

// XYtoRS transfers from the equilateral triangle to the reference triangle (-1,-1),(1,-1),(-1,1)
func XYtoRS(x, y []float64) (r, s []float64) {
	r, s = make([]float64, len(x)), make([]float64, len(x))
	sr3 := math.Sqrt(3)
	for i := range x {
		l1 := (sr3*y[i] + 1) / 3
		l2 := (-3*x[i] - sr3*y[i] + 2) / 6
		l3 := (3*x[i] - sr3*y[i] + 2) / 6
		r[i] = -l2 + l3 - l1
		s[i] = -l2 - l3 + l1
	}
	return
}

func RStoAB(R, S []float64) (a, b []float64) {
	a, b = make([]float64, len(R)), make([]float64, len(R))
	for n, sval := range S {
		if sval != 1 {
			a[n] = 2*(1+R[n])/(1-sval) - 1
		} else {
			a[n] = -1
		}
		b[n] = sval
	}
	return
}

// Simplex2DP evaluates the orthonormal basis function (i,j) on the reference triangle
func Simplex2DP(R, S []float64, i, j int) (P []float64) {
	A, B := RStoAB(R, S)
	h1 := DG1D.JacobiP(A, 0, 0, i)
	h2 := DG1D.JacobiP(B, float64(2*i+1), 0, j)
	P = make([]float64, len(A))
	sq2 := math.Sqrt(2)
	for ii := range h1 {
		P[ii] = sq2 * h1[ii] * h2[ii] * utils.POW(1-B[ii], i)
	}
	return
}

func GradSimplex2DP(R, S []float64, id, jd int) (ddr, dds []float64) {
	A, B := RStoAB(R, S)
	fa := DG1D.JacobiP(A, 0, 0, id)
	dfa := DG1D.GradJacobiP(A, 0, 0, id)
	gb := DG1D.JacobiP(B, 2*float64(id)+1, 0, jd)
	dgb := DG1D.GradJacobiP(B, 2*float64(id)+1, 0, jd)
	norm := math.Pow(2, float64(id)+0.5)
	ddr, dds = make([]float64, len(gb)), make([]float64, len(gb))
	for i := range ddr {
		// d/dr = (2/(1-b)) d/da
		ddr[i] = dfa[i] * gb[i]
		if id > 0 {
			ddr[i] *= utils.POW(0.5*(1-B[i]), id-1)
		}
		ddr[i] *= norm
		// d/ds = ((1+a)/2)/((1-b)/2) d/da + d/db
		dds[i] = 0.5 * dfa[i] * gb[i] * (1 + A[i])
		if id > 0 {
			dds[i] *= utils.POW(0.5*(1-B[i]), id-1)
		}
		tmp := dgb[i] * utils.POW(0.5*(1-B[i]), id)
		if id > 0 {
			tmp -= 0.5 * float64(id) * gb[i] * utils.POW(0.5*(1-B[i]), id-1)
		}
		dds[i] += fa[i] * tmp
		dds[i] *= norm
	}
	return
}

// Vandermonde2D evaluates the orthonormal simplex basis of order N at (R,S)
func Vandermonde2D(N int, R, S []float64) (V2D utils.Matrix) {
	Np := (N + 1) * (N + 2) / 2
	V2D = utils.NewMatrix(len(R), Np)
	var sk int
	for i := 0; i <= N; i++ {
		for j := 0; j <= (N - i); j++ {
			for ii, val := range Simplex2DP(R, S, i, j) {
				V2D.DataP[sk+Np*ii] = val
			}
			sk++
		}
	}
	return
}

func GradVandermonde2D(N int, R, S []float64) (V2Dr, V2Ds utils.Matrix) {
	Np := (N + 1) * (N + 2) / 2
	V2Dr, V2Ds = utils.NewMatrix(len(R), Np), utils.NewMatrix(len(R), Np)
	var sk int
	for i := 0; i <= N; i++ {
		for j := 0; j <= (N - i); j++ {
			ddr, dds := GradSimplex2DP(R, S, i, j)
			for ii := range ddr {
				V2Dr.DataP[sk+Np*ii] = ddr[ii]
				V2Ds.DataP[sk+Np*ii] = dds[ii]
			}
			sk++
		}
	}
	return
}

// LagrangeInterpolation2D returns the nodal basis on (Rn,Sn) and its r,s derivatives evaluated at
// (R,S), Chi[i][j] = l_j(r_i, s_i).
func LagrangeInterpolation2D(N int, Rn, Sn, R, S []float64) (Chi, Dr, Ds utils.Matrix) {
	V := Vandermonde2D(N, Rn, Sn)
	VInv, err := V.Inverse()
	if err != nil {
		panic(err)
	}
	Chi = Vandermonde2D(N, R, S).Mul(VInv)
	Vr, Vs := GradVandermonde2D(N, R, S)
	Dr, Ds = Vr.Mul(VInv), Vs.Mul(VInv)
	return
}
