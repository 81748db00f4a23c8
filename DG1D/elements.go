package DG1D

import (
	"math"

	"github.com/notargets/godpg/utils"
	"gonum.org/v1/gonum/mat"
)

// JacobiGL returns the N+1 Gauss-Lobatto nodes of the Jacobi polynomial P_N^(alpha,beta) and, for
// the Legendre case alpha=beta=0, the matching quadrature weights.
func JacobiGL(alpha, beta float64, N int) (X, W []float64) {
	X = make([]float64, N+1)
	switch N {
	case 0:
		X[0] = 0
		W = []float64{2}
		return
	case 1:
		X[0], X[1] = -1, 1
		W = []float64{1, 1}
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	X[0] = -1
	X[N] = 1
	copy(X[1:N], xint)
	if alpha == 0 && beta == 0 {
		W = LegendreGLWeights(X)
	}
	return
}

// LegendreGLWeights computes w_i = 2/(N(N+1) P_N(x_i)^2) on Legendre-Gauss-Lobatto nodes
func LegendreGLWeights(X []float64) (W []float64) {
	N := len(X) - 1
	fN := float64(N)
	// JacobiP is orthonormal, P_N = PN_normalized / sqrt((2N+1)/2)
	pn := JacobiP(X, 0, 0, N)
	scale := math.Sqrt((2*fN + 1) / 2)
	W = make([]float64, N+1)
	for i, val := range pn {
		p := val / scale
		W[i] = 2 / (fN * (fN + 1) * p * p)
	}
	return
}

// JacobiGQ returns the N+1 Gauss quadrature nodes and weights for the weight (1-x)^alpha (1+x)^beta
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	var (
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{gamma0(alpha, beta)}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: -(alpha^2-beta^2)/(h1+2)/h1, the symmetric part J+J' of the recurrence
	d0 = make([]float64, N+1)
	fac = -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) /
			((val + 1.) * (val + 3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	VVr = mat.NewDense(len(X), len(X), nil)
	eig.VectorsTo(VVr)
	g0 := gamma0(alpha, beta)
	W = make([]float64, len(X))
	for i, val := range VVr.RawRowView(0) {
		W[i] = val * val * g0
	}
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of order N at r
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = len(r)
	)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	p0 := utils.ConstArray(Nc, rg)
	if N == 0 {
		return p0
	}
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	p1 := make([]float64, Nc)
	for i, x := range r {
		p1[i] = rg1 * ((ab+2.0)*x/2.0 + (alpha-beta)/2.0)
	}
	if N == 1 {
		return p1
	}

	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		p2 := make([]float64, Nc)
		for j, x := range r {
			p2[j] = (-aold*p0[j] + (x-bnew)*p1[j]) / anew
		}
		p0, p1 = p1, p2
		aold = anew
	}
	return p1
}

func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		p = make([]float64, len(r))
		return
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i, val := range p {
		p[i] = val * fac
	}
	return
}

// Vandermonde1D evaluates the orthonormal Legendre basis of order N at r, V[i][j] = P_j(r_i)
func Vandermonde1D(N int, r []float64) (V utils.Matrix) {
	V = utils.NewMatrix(len(r), N+1)
	for j := 0; j < N+1; j++ {
		for i, val := range JacobiP(r, 0, 0, j) {
			V.DataP[j+(N+1)*i] = val
		}
	}
	return
}

func GradVandermonde1D(N int, r []float64) (Vr utils.Matrix) {
	Vr = utils.NewMatrix(len(r), N+1)
	for j := 0; j < N+1; j++ {
		for i, val := range GradJacobiP(r, 0, 0, j) {
			Vr.DataP[j+(N+1)*i] = val
		}
	}
	return
}

// LagrangeInterpolation returns the matrices evaluating the Lagrange basis on nodes (and its
// derivative) at the points r: Chi[i][j] = l_j(r_i), Dr[i][j] = l_j'(r_i).
func LagrangeInterpolation(nodes, r []float64) (Chi, Dr utils.Matrix) {
	N := len(nodes) - 1
	V := Vandermonde1D(N, nodes)
	VInv, err := V.Inverse()
	if err != nil {
		panic(err)
	}
	Chi = Vandermonde1D(N, r).Mul(VInv)
	Dr = GradVandermonde1D(N, r).Mul(VInv)
	return
}
