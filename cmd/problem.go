package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/notargets/godpg/InputParameters"
	"github.com/notargets/godpg/assembly"
	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/operators"
	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/verification"
	"github.com/spf13/viper"
)

var exampleInput = `
########################################
Title: "Euler channel"
PDE: Euler               # Advection, Poisson, Euler, NavierStokes
Dimension: 2
ElementType: Quad        # Line, Triangle, Quad, Hex
PolynomialOrder: 2
Elements: 4              # per direction on the unit box
Collocated: false
Curved: false
FluxType: Roe            # Upwind, LLF, Roe
Method: implicit         # explicit assembles the residual only
SumFactorize: true
InitType: perturbed      # exact or perturbed
Minf: 0.5
Alpha: 2.0               # degrees
PBack: 0.7
BCs:
  left: Riemann
  right: BackPressure
  default: SlipWall
########################################
`

// readParameters loads the YAML input named by -I, which may also come from the config file or
// GODPG_INPUTCONDITIONSFILE.
func readParameters() (ip *InputParameters.Parameters, r *InputParameters.Resolved, err error) {
	fileName := viper.GetString("inputConditionsFile")
	if fileName == "" {
		err = fmt.Errorf("an input file is required, for example:\n%s", exampleInput)
		return
	}
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters.Parameters{}
	if err = ip.Parse(data); err != nil {
		return
	}
	r, err = ip.Validate()
	return
}

// problem is a validated input bound to a mesh with the initial solution projected
type problem struct {
	ip       *InputParameters.Parameters
	r        *InputParameters.Resolved
	model    *flux.Model
	params   *bc.Params
	solution *verification.Solution
	mesh     *mesh.Mesh
	asm      *assembly.Assembler
}

func newProblem(ip *InputParameters.Parameters, r *InputParameters.Resolved) (pb *problem, err error) {
	pb = &problem{ip: ip, r: r}
	if pb.model, err = ip.Model(r); err != nil {
		return
	}
	params := ip.BCParams(pb.model)
	pb.params = params
	switch r.PDE {
	case types.PDE_Poisson:
		pb.solution = verification.PoissonSine(ip.Dimension)
	case types.PDE_Advection:
		pb.solution = verification.AdvectionSine(pb.model.B)
	default:
		pb.solution = verification.FreeStream(params)
	}
	params.Exact, params.ExactGrad = pb.solution.Exact, pb.solution.Grad
	if pb.mesh, err = mesh.NewUnitBoxMesh(r.Element, ip.Elements); err != nil {
		return
	}
	pb.mesh.TagBoundaries(r.Tagger())
	var curve func(x []float64) []float64
	if ip.Curved {
		pb.mesh.SetCurved()
		curve = boxCurve
	}
	if err = pb.mesh.Setup(operators.NewTable(ip.Collocated), ip.PolynomialOrder, pb.model.NVar,
		curve); err != nil {
		return
	}
	opts := append(ip.Options(r), assembly.WithSource(pb.solution.Source))
	var cfg *assembly.Config
	if cfg, err = assembly.NewConfig(pb.model, r.Flux, params, opts...); err != nil {
		return
	}
	if pb.asm, err = assembly.NewAssembler(cfg, pb.mesh); err != nil {
		return
	}
	pb.initialize()
	return
}

// boxCurve bends the interior of the unit box and leaves its sides in place
func boxCurve(x []float64) []float64 {
	bump := 0.05
	for _, xd := range x {
		bump *= math.Sin(math.Pi * xd)
	}
	y := make([]float64, len(x))
	for d, xd := range x {
		y[d] = xd + bump
	}
	return y
}

func (pb *problem) initialize() {
	exact := pb.solution.Exact
	if pb.ip.InitType != "perturbed" {
		pb.mesh.Project(exact)
		return
	}
	pb.mesh.Project(func(x, W []float64) {
		exact(x, W)
		var arg float64
		for _, xd := range x {
			arg += xd
		}
		scale := 1 + 0.05*math.Sin(2*math.Pi*arg)
		for v := range W {
			W[v] *= scale
		}
	})
}
