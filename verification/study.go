package verification

import (
	"fmt"

	"github.com/notargets/godpg/assembly"
	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/solver"
	"github.com/notargets/godpg/types"
)

// Study is a uniform refinement study of a steady manufactured solution on the unit box, or its
// image under the solution map, with every boundary closed by one condition.
type Study struct {
	Model      *flux.Model
	Flux       types.FluxType
	Element    types.ElementType
	P          int
	Levels     []int // elements per direction
	Solution   *Solution
	BC         types.BCType
	Collocated bool
	Options    []assembly.Option
	// Params carries free stream and boundary data, the solution fills its exact fields
	Params     *bc.Params
	MaxIter    int // Newton iterations per level, 10 when zero
}

type Level struct {
	N          int
	H          float64
	Error      float64
	GradError  float64
	Iterations int
}

// Run solves every level with Newton iterations and measures the errors
func (s *Study) Run() (levels []Level, err error) {
	var (
		tb      = operators.NewTable(s.Collocated)
		maxIter = s.MaxIter
	)
	if maxIter == 0 {
		maxIter = 10
	}
	for _, n := range s.Levels {
		var (
			m   *mesh.Mesh
			cfg *assembly.Config
			a   *assembly.Assembler
			res solver.Result
		)
		if m, err = mesh.NewUnitBoxMesh(s.Element, n); err != nil {
			return
		}
		m.TagBoundaries(func([]float64) types.BCType { return s.BC })
		if s.Solution.Map != nil {
			m.SetCurved()
		}
		if err = m.Setup(tb, s.P, s.Model.NVar, s.Solution.Map); err != nil {
			return
		}
		opts := append([]assembly.Option{
			assembly.WithSource(s.Solution.Source),
			assembly.WithMethod(types.Method_Implicit),
		}, s.Options...)
		if cfg, err = assembly.NewConfig(s.Model, s.Flux, s.params(), opts...); err != nil {
			return
		}
		if a, err = assembly.NewAssembler(cfg, m); err != nil {
			return
		}
		m.Project(s.Solution.Exact)
		if res, err = solver.Newton(a, 1.e-10, maxIter); err != nil {
			err = fmt.Errorf("level %d: %w", n, err)
			return
		}
		lv := Level{
			N:          n,
			H:          1 / float64(n),
			Error:      L2Error(m, s.Solution.Exact),
			Iterations: res.Iterations,
		}
		if s.Model.PDE.HasViscous() {
			lv.GradError = GradientError(m, s.Solution.Grad)
		}
		levels = append(levels, lv)
	}
	return
}

func (s *Study) params() *bc.Params {
	if s.Params == nil {
		return s.Solution.Params()
	}
	p := *s.Params
	p.Exact, p.ExactGrad = s.Solution.Exact, s.Solution.Grad
	return &p
}

// Orders returns the observed solution and gradient orders between successive levels
func Orders(levels []Level) (sol, grad []float64) {
	var h, e, g []float64
	for _, lv := range levels {
		h, e, g = append(h, lv.H), append(e, lv.Error), append(g, lv.GradError)
	}
	sol = ConvergenceOrders(h, e)
	if len(levels) > 0 && levels[0].GradError > 0 {
		grad = ConvergenceOrders(h, g)
	}
	return
}
