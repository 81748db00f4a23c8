package assembly

import (
	"math"
	"testing"

	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/geometry"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 2.220446049250313e-16

func setup(t *testing.T, m *mesh.Mesh, err error, P int, md *flux.Model, collocated bool,
	tag mesh.BoundaryTagger) *mesh.Mesh {
	return setupCurved(t, m, err, P, md, collocated, tag, nil)
}

// setupCurved maps every volume through curve when it is not nil
func setupCurved(t *testing.T, m *mesh.Mesh, err error, P int, md *flux.Model, collocated bool,
	tag mesh.BoundaryTagger, curve geometry.Curve) *mesh.Mesh {
	require.NoError(t, err)
	m.TagBoundaries(tag)
	if curve != nil {
		m.SetCurved()
	}
	require.NoError(t, m.Setup(operators.NewTable(collocated), P, md.NVar, curve))
	return m
}

// bump bends the interior of the unit square and leaves its sides straight
func bump(x []float64) []float64 {
	b := 0.05 * math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1])
	return []float64{x[0] + b, x[1] + b}
}

func eulerModel(t *testing.T, pde types.PDEType, dim int) *flux.Model {
	mu, pr := 0., 0.
	if pde == types.PDE_NavierStokes {
		mu, pr = 0.05, 0.72
	}
	md, err := flux.NewModel(pde, dim, 1.4, nil, mu, pr)
	require.NoError(t, err)
	return md
}

func eulerParams(md *flux.Model) *bc.Params {
	return &bc.Params{Model: md, Mach: 0.5, Alpha: 0.1, P0: 1.2, T0: 1.1, PBack: 0.65}
}

// smoothFlow is a subsonic state close to the free stream of eulerParams
func smoothFlow(md *flux.Model) func(x, W []float64) {
	return func(x, W []float64) {
		var (
			x0, x1 = x[0], x[len(x)-1]
			rho    = 1 + 0.1*math.Sin(x0+2*x1)
			u      = []float64{0.45 + 0.05*math.Cos(x0), 0.05 * math.Sin(3*x1), -0.03 * x0}
			p      = 0.72 + 0.05*x0*x1
		)
		copy(W, flux.Conservative(md, rho, u[:md.Dim], p))
	}
}

func maxAbs(a []float64) (mx float64) {
	for _, v := range a {
		mx = math.Max(mx, math.Abs(v))
	}
	return
}

// complexStepJacobian differentiates the residual one degree of freedom at a time
func complexStepJacobian(a *Assembler) (J utils.Matrix) {
	var (
		st      = NewState[complex128](a.Mesh)
		sizes   = a.Mesh.BlockSizes()
		offsets = make([]int, len(sizes)+1)
	)
	for k, n := range sizes {
		offsets[k+1] = offsets[k] + n
	}
	n := offsets[len(sizes)]
	J = utils.NewMatrix(n, n)
	for S := range st.W {
		for j := range st.W[S] {
			st.W[S][j] += complex(0, flux.StepSize)
			ResidualT(a, st)
			for K := range st.RHS {
				for i, val := range st.RHS[K] {
					J.DataP[(offsets[K]+i)*n+offsets[S]+j] = imag(val) / flux.StepSize
				}
			}
			st.W[S][j] = complex(real(st.W[S][j]), 0)
		}
	}
	return
}

func TestConfig(t *testing.T) {
	md := eulerModel(t, types.PDE_Euler, 2)
	_, err := NewConfig(md, types.FLUX_Roe, nil, WithForm(types.Form_Strong))
	assert.Error(t, err)
	_, err = NewConfig(nil, types.FLUX_Roe, nil)
	assert.Error(t, err)
	_, err = NewConfig(md, types.FLUX_Roe, nil, WithPenalty(-1))
	assert.Error(t, err)

	cfg, err := NewConfig(md, types.FLUX_Roe, nil)
	require.NoError(t, err)
	m, err := mesh.NewTwoTriangleMesh()
	require.NoError(t, err)
	_, err = NewAssembler(cfg, m)
	assert.Error(t, err, "mesh is not set up")

	pm, _ := flux.NewModel(types.PDE_Poisson, 2, 0, nil, 0, 0)
	m, err = mesh.NewTwoTriangleMesh()
	setup(t, m, err, 1, pm, false, func([]float64) types.BCType { return types.BC_SlipWall })
	pcfg, err := NewConfig(pm, types.FLUX_None, nil)
	require.NoError(t, err)
	_, err = NewAssembler(pcfg, m)
	assert.Error(t, err, "slip walls cannot close Poisson")
	_, err = NewAssembler(cfg, m)
	assert.Error(t, err, "mesh variables do not match the model")
}

func TestTwoTriangleUniformState(t *testing.T) {
	md := eulerModel(t, types.PDE_Euler, 2)
	m, err := mesh.NewTwoTriangleMesh()
	m = setup(t, m, err, 1, md, false, func([]float64) types.BCType { return types.BC_SlipWall })
	m.Project(func(x, W []float64) { copy(W, []float64{1, 0, 0, 2.5}) })
	for _, ft := range []types.FluxType{types.FLUX_LaxFriedrichs, types.FLUX_Roe} {
		cfg, err := NewConfig(md, ft, eulerParams(md))
		require.NoError(t, err)
		a, err := NewAssembler(cfg, m)
		require.NoError(t, err)
		for fi, f := range m.Faces {
			if f.Boundary() {
				continue
			}
			rhsL, rhsR := a.FaceContribution(fi)
			sumL, sumR := make([]float64, 4), make([]float64, 4)
			for i := 0; i < 3; i++ {
				for e := 0; e < 4; e++ {
					sumL[e] += rhsL[i*4+e]
					sumR[e] += rhsR[i*4+e]
				}
			}
			// With p = 1 the face flux is the pressure on the diagonal of length sqrt(2)
			assert.InDelta(t, 0, sumL[0], 1.e-14)
			assert.InDelta(t, 0, sumL[3], 1.e-14)
			assert.InDelta(t, 1, math.Abs(sumL[1]), 1.e-14)
			assert.InDelta(t, -sumL[1], sumL[2], 1.e-14)
			for e := range sumL {
				assert.InDelta(t, -sumL[e], sumR[e], 1.e-14)
			}
		}
		// A uniform state at rest is preserved by slip walls
		a.Residual()
		for _, norm := range a.ResidualNorms() {
			assert.Less(t, norm, 1.e-13)
		}
		a.TimeDerivative()
		for _, vol := range m.Volumes {
			assert.Less(t, vol.DWdt.MaxAbs(), 1.e-12)
		}
	}
}

func TestConservation(t *testing.T) {
	md := eulerModel(t, types.PDE_Euler, 2)
	riemann := func([]float64) types.BCType { return types.BC_Riemann }
	type meshCase struct {
		build func() (*mesh.Mesh, error)
		curve geometry.Curve
	}
	meshes := map[string]meshCase{
		"two triangles": {mesh.NewTwoTriangleMesh, nil},
		"quads":         {func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(3, 2, [4]float64{0, 1, 0, 1}) }, nil},
		"triangles":     {func() (*mesh.Mesh, error) { return mesh.NewTriMesh(2, 2, [4]float64{0, 1, 0, 1}) }, nil},
		"curved quads":  {func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, [4]float64{0, 1, 0, 1}) }, bump},
	}
	for name, mc := range meshes {
		m, err := mc.build()
		m = setupCurved(t, m, err, 2, md, false, riemann, mc.curve)
		m.Project(smoothFlow(md))
		cfg, err := NewConfig(md, types.FLUX_Roe, eulerParams(md))
		require.NoError(t, err)
		a, err := NewAssembler(cfg, m)
		require.NoError(t, err)
		for fi, f := range m.Faces {
			if f.Boundary() {
				continue
			}
			rhsL, rhsR := a.FaceContribution(fi)
			var (
				sumL = make([]float64, 4)
				sumR = make([]float64, 4)
			)
			for i := 0; i < len(rhsL)/4; i++ {
				for e := 0; e < 4; e++ {
					sumL[e] += rhsL[i*4+e]
					sumR[e] += rhsR[i*4+e]
				}
			}
			for e := range sumL {
				assert.InDelta(t, -sumL[e], sumR[e], 1.e2*eps, "%s face %d", name, fi)
			}
		}
	}
}

func TestSumFactorization(t *testing.T) {
	type testCase struct {
		name  string
		build func() (*mesh.Mesh, error)
		dim   int
	}
	cases := []testCase{
		{"lines", func() (*mesh.Mesh, error) { return mesh.NewLineMesh(3, 0, 1) }, 1},
		{"quads", func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, [4]float64{0, 1, 0, 1}) }, 2},
		{"hexes", func() (*mesh.Mesh, error) {
			return mesh.NewHexMesh(2, 1, 1, [6]float64{0, 1, 0, 0.5, 0, 0.5})
		}, 3},
	}
	for _, tc := range cases {
		for _, collocated := range []bool{false, true} {
			for _, pde := range []types.PDEType{types.PDE_Euler, types.PDE_NavierStokes} {
				md := eulerModel(t, pde, tc.dim)
				m, err := tc.build()
				m = setup(t, m, err, 2, md, collocated,
					func([]float64) types.BCType { return types.BC_Riemann })
				m.Project(smoothFlow(md))
				var rhs [2][][]float64
				for i, sf := range []bool{false, true} {
					cfg, err := NewConfig(md, types.FLUX_LaxFriedrichs, eulerParams(md),
						WithSumFactorization(sf))
					require.NoError(t, err)
					a, err := NewAssembler(cfg, m)
					require.NoError(t, err)
					st := NewState[float64](m)
					ResidualT(a, st)
					rhs[i] = st.RHS
				}
				for k := range rhs[0] {
					scale := math.Max(1, maxAbs(rhs[0][k]))
					for i := range rhs[0][k] {
						assert.InDelta(t, rhs[0][k][i], rhs[1][k][i], 1.e2*eps*scale,
							"%s %s collocated %v volume %d", tc.name, pde, collocated, k)
					}
				}
			}
		}
	}
}

type jacobianCase struct {
	name  string
	model *flux.Model
	flux  types.FluxType
	build func() (*mesh.Mesh, error)
	P     int
	tag   mesh.BoundaryTagger
	init  func(x, W []float64)
	opts  []Option
	bcp   *bc.Params
	curve geometry.Curve
}

func jacobianCases(t *testing.T) (cases []jacobianCase) {
	var (
		unit   = [4]float64{0, 1, 0, 1}
		euler  = eulerModel(t, types.PDE_Euler, 2)
		euler3 = eulerModel(t, types.PDE_Euler, 3)
		ns     = eulerModel(t, types.PDE_NavierStokes, 2)
		walls  = func(c []float64) types.BCType {
			switch {
			case c[1] < 1.e-8:
				return types.BC_SlipWall
			case c[0] > 1-1.e-8:
				return types.BC_BackPressure
			}
			return types.BC_Riemann
		}
		nsWalls = func(c []float64) types.BCType {
			if c[1] < 1.e-8 {
				return types.BC_NoSlipAdiabatic
			}
			return types.BC_Riemann
		}
	)
	adv, err := flux.NewModel(types.PDE_Advection, 2, 0, []float64{1, 0.5}, 0, 0)
	require.NoError(t, err)
	poisson, err := flux.NewModel(types.PDE_Poisson, 2, 0, nil, 0, 0)
	require.NoError(t, err)
	exact := func(x, W []float64) { W[0] = math.Sin(x[0]) * math.Cos(2*x[1]) }
	cases = []jacobianCase{
		{"euler llf triangles", euler, types.FLUX_LaxFriedrichs, mesh.NewTwoTriangleMesh, 2, walls,
			smoothFlow(euler), nil, eulerParams(euler), nil},
		{"euler roe quads", euler, types.FLUX_Roe,
			func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, unit) }, 1, walls,
			smoothFlow(euler), []Option{WithSumFactorization(true)}, eulerParams(euler), nil},
		{"euler roe curved quads", euler, types.FLUX_Roe,
			func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, unit) }, 2, walls,
			smoothFlow(euler), nil, eulerParams(euler), bump},
		{"euler llf hexes", euler3, types.FLUX_LaxFriedrichs,
			func() (*mesh.Mesh, error) { return mesh.NewHexMesh(2, 1, 1, [6]float64{0, 1, 0, 0.5, 0, 0.5}) },
			1, func([]float64) types.BCType { return types.BC_Riemann }, smoothFlow(euler3), nil,
			eulerParams(euler3), nil},
		{"advection upwind", adv, types.FLUX_Upwind,
			func() (*mesh.Mesh, error) { return mesh.NewTriMesh(2, 1, unit) }, 2,
			func(c []float64) types.BCType {
				if c[0] < 1.e-8 || c[1] < 1.e-8 {
					return types.BC_Inflow
				}
				return types.BC_Outflow
			},
			exact, nil, &bc.Params{Exact: exact}, nil},
		{"poisson", poisson, types.FLUX_None,
			func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, unit) }, 2,
			func(c []float64) types.BCType {
				if c[0] > 1-1.e-8 {
					return types.BC_Neumann
				}
				return types.BC_Dirichlet
			},
			exact, []Option{WithSource(func(x, s []float64) { s[0] = x[0] * x[1] })},
			&bc.Params{Exact: exact, ExactGrad: func(x, G []float64) {
				G[0] = math.Cos(x[0]) * math.Cos(2*x[1])
				G[1] = -2 * math.Sin(x[0]) * math.Sin(2*x[1])
			}}, nil},
		{"navier stokes", ns, types.FLUX_Roe, mesh.NewTwoTriangleMesh, 2, nsWalls, smoothFlow(ns),
			[]Option{WithPenalty(3)}, eulerParams(ns), nil},
	}
	return
}

func TestJacobianComplexStep(t *testing.T) {
	for _, tc := range jacobianCases(t) {
		m, err := tc.build()
		m = setupCurved(t, m, err, tc.P, tc.model, false, tc.tag, tc.curve)
		m.Project(tc.init)
		cfg, err := NewConfig(tc.model, tc.flux, tc.bcp, tc.opts...)
		require.NoError(t, err)
		a, err := NewAssembler(cfg, m)
		require.NoError(t, err, tc.name)

		J := utils.NewBlockJacobian(m.BlockSizes())
		a.ResidualAndJacobian(J)
		// Only the diagonal and face neighbor blocks exist
		for _, addr := range J.Addresses() {
			if addr[0] != addr[1] {
				assert.Contains(t, m.Neighbors(addr[0]), addr[1], tc.name)
			}
		}
		// The real residual matches the complex instantiation
		st := NewState[complex128](m)
		ResidualT(a, st)
		for k, vol := range m.Volumes {
			for i, val := range vol.RHS.DataP {
				assert.InDelta(t, val, real(st.RHS[k][i]), 1.e-13, tc.name)
			}
		}
		var (
			Jcs   = complexStepJacobian(a)
			Ja    = J.ToDense()
			scale = math.Max(1, Jcs.MaxAbs())
		)
		assert.Less(t, Ja.MaxAbsDiff(Jcs)/scale, 1.e2*eps, tc.name)
	}
}

func TestCurvedFreeStream(t *testing.T) {
	md := eulerModel(t, types.PDE_Euler, 2)
	p := eulerParams(md)
	m, err := mesh.NewQuadMesh(3, 3, [4]float64{0, 1, 0, 1})
	m = setupCurved(t, m, err, 2, md, false, func([]float64) types.BCType { return types.BC_Riemann },
		bump)
	// The center volume is not a parallelogram
	center := m.Volumes[4].Geom
	detMin, detMax := math.Inf(1), 0.
	for _, d := range center.DetJ {
		detMin, detMax = math.Min(detMin, d), math.Max(detMax, d)
	}
	assert.Greater(t, detMax-detMin, 1.e-3)

	wInf := p.FreeStream()
	m.Project(func(x, W []float64) { copy(W, wInf) })
	for _, sf := range []bool{false, true} {
		cfg, err := NewConfig(md, types.FLUX_Roe, p, WithSumFactorization(sf))
		require.NoError(t, err)
		a, err := NewAssembler(cfg, m)
		require.NoError(t, err)
		a.Residual()
		for k, norm := range a.ResidualNorms() {
			assert.Less(t, norm, 1.e-12, "sum factorized %v volume %d", sf, k)
		}
	}
}

func TestPoissonSymmetry(t *testing.T) {
	md, err := flux.NewModel(types.PDE_Poisson, 2, 0, nil, 0, 0)
	require.NoError(t, err)
	exact := func(x, W []float64) { W[0] = x[0] * x[1] }
	builds := []func() (*mesh.Mesh, error){
		func() (*mesh.Mesh, error) { return mesh.NewQuadMesh(2, 2, [4]float64{0, 1, 0, 1}) },
		mesh.NewTwoTriangleMesh,
	}
	for _, build := range builds {
		m, err := build()
		m = setup(t, m, err, 1, md, false, func([]float64) types.BCType { return types.BC_Dirichlet })
		cfg, err := NewConfig(md, types.FLUX_None, &bc.Params{Exact: exact})
		require.NoError(t, err)
		a, err := NewAssembler(cfg, m)
		require.NoError(t, err)
		J := utils.NewBlockJacobian(m.BlockSizes())
		a.ResidualAndJacobian(J)
		var (
			D     = J.ToDense()
			n, _  = D.Dims()
			scale = D.MaxAbs()
		)
		for i := 0; i < n; i++ {
			for j := 0; j < i; j++ {
				assert.InDelta(t, D.At(i, j), D.At(j, i), 1.e3*eps*scale)
			}
			// The discrete Laplacian is negative definite
			assert.Less(t, D.At(i, i), 0.)
		}
	}
}
