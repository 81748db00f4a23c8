package InputParameters

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/godpg/assembly"
	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/mesh"
	"github.com/notargets/godpg/types"
)

// Parameters obtained from the YAML input file. The mesh is the unit line, square or cube with
// Elements volumes per direction.
type Parameters struct {
	Title           string             `json:"Title"`
	PDE             string             `json:"PDE"`
	Dimension       int                `json:"Dimension"`
	ElementType     string             `json:"ElementType"`
	PolynomialOrder int                `json:"PolynomialOrder"`
	Elements        int                `json:"Elements"`
	Collocated      bool               `json:"Collocated"`
	Curved          bool               `json:"Curved"`
	FluxType        string             `json:"FluxType"`
	Form            string             `json:"Form"`
	Method          string             `json:"Method"`
	SumFactorize    bool               `json:"SumFactorize"`
	Eta             float64            `json:"Eta"`
	InitType        string             `json:"InitType"` // Exact or Perturbed
	Gamma           float64            `json:"Gamma"`
	Prandtl         float64            `json:"Prandtl"`
	Reynolds        float64            `json:"Reynolds"`
	Minf            float64            `json:"Minf"`
	Alpha           float64            `json:"Alpha"` // degrees
	Velocity        []float64          `json:"Velocity"`
	P0              float64            `json:"P0"`
	T0              float64            `json:"T0"`
	PBack           float64            `json:"PBack"`
	BCs             map[string]string  `json:"BCs"` // box side (left, right, bottom, top, front, back, default) -> BC
	Extra           map[string]float64 `json:"Extra"`
}

func (ip *Parameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.setDefaults()
	return nil
}

func (ip *Parameters) setDefaults() {
	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.Prandtl == 0 {
		ip.Prandtl = 0.72
	}
	if ip.Elements == 0 {
		ip.Elements = 4
	}
	if ip.Form == "" {
		ip.Form = "weak"
	}
	if ip.Method == "" {
		ip.Method = "explicit"
	}
	if ip.InitType == "" {
		ip.InitType = "exact"
	}
}

// Resolved holds the parsed enumerations of a validated parameter set
type Resolved struct {
	PDE     types.PDEType
	Element types.ElementType
	Flux    types.FluxType
	Form    types.FormType
	Method  types.SolverMethod
	BCs     map[string]types.BCType
}

var boxSides = []string{"left", "right", "bottom", "top", "front", "back", "default"}

// Validate parses every name and checks the combinations that do not need a mesh
func (ip *Parameters) Validate() (r *Resolved, err error) {
	r = &Resolved{BCs: make(map[string]types.BCType)}
	if r.PDE, err = types.ParsePDE(ip.PDE); err != nil {
		return
	}
	if r.Element, err = types.ParseElementType(ip.ElementType); err != nil {
		return
	}
	if r.Element.Dim() != ip.Dimension {
		err = fmt.Errorf("%s elements are %d dimensional, have dimension %d", r.Element,
			r.Element.Dim(), ip.Dimension)
		return
	}
	if r.PDE != types.PDE_Poisson {
		if r.Flux, err = types.ParseFlux(ip.FluxType); err != nil {
			return
		}
	}
	if r.Form, err = types.ParseForm(ip.Form); err != nil {
		return
	}
	if r.Method, err = types.ParseMethod(ip.Method); err != nil {
		return
	}
	if ip.PolynomialOrder < 1 {
		err = fmt.Errorf("polynomial order must be at least 1, have %d", ip.PolynomialOrder)
		return
	}
	for side, label := range ip.BCs {
		side = strings.ToLower(side)
		if !contains(boxSides, side) {
			err = fmt.Errorf("unknown box side \"%s\", choose from %v", side, boxSides)
			return
		}
		var bct types.BCType
		if bct, err = types.ParseBC(label); err != nil {
			return
		}
		if !bct.ValidFor(r.PDE) {
			err = fmt.Errorf("boundary condition %s on side %s cannot close %s", bct, side, r.PDE)
			return
		}
		r.BCs[side] = bct
	}
	if _, ok := r.BCs["default"]; !ok && len(r.BCs) < 2*ip.Dimension {
		err = fmt.Errorf("boundary conditions cover %d sides, need %d or a default", len(r.BCs),
			2*ip.Dimension)
	}
	return
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Model builds the flux model. The viscosity follows from the free stream Reynolds number for a
// unit length.
func (ip *Parameters) Model(r *Resolved) (*flux.Model, error) {
	var mu float64
	if r.PDE == types.PDE_NavierStokes {
		if ip.Reynolds <= 0 {
			return nil, fmt.Errorf("navier stokes needs a positive Reynolds number")
		}
		mu = ip.Minf / ip.Reynolds
	}
	return flux.NewModel(r.PDE, ip.Dimension, ip.Gamma, ip.Velocity, mu, ip.Prandtl)
}

// BCParams returns the boundary parameters, the exact solution fields are left to the caller
func (ip *Parameters) BCParams(m *flux.Model) *bc.Params {
	return &bc.Params{
		Model: m,
		Mach:  ip.Minf,
		Alpha: ip.Alpha * math.Pi / 180,
		P0:    ip.P0,
		T0:    ip.T0,
		PBack: ip.PBack,
	}
}

// Options returns the assembler options of the parameters
func (ip *Parameters) Options(r *Resolved) []assembly.Option {
	return []assembly.Option{
		assembly.WithForm(r.Form),
		assembly.WithMethod(r.Method),
		assembly.WithSumFactorization(ip.SumFactorize),
		assembly.WithPenalty(ip.Eta),
	}
}

// Tagger assigns the BC of the unit box side a face centroid lies on
func (r *Resolved) Tagger() mesh.BoundaryTagger {
	const tol = 1.e-8
	return func(c []float64) types.BCType {
		for d, x := range c {
			for s, at := range []float64{0, 1} {
				if math.Abs(x-at) < tol {
					if bct, ok := r.BCs[boxSides[2*d+s]]; ok {
						return bct
					}
				}
			}
		}
		return r.BCs["default"]
	}
}

func (ip *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= PDE\n", ip.PDE)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("[%s]\t\t\t= Element Type\n", ip.ElementType)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Elements per direction\n", ip.Elements)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t\t\t= Form\n", ip.Form)
	fmt.Printf("[%s]\t\t\t= Method\n", ip.Method)
	fmt.Printf("[%v,%v,%v]\t= Collocated, Curved, SumFactorize\n", ip.Collocated, ip.Curved, ip.SumFactorize)
	fmt.Printf("%8.5f\t\t= Minf\n", ip.Minf)
	fmt.Printf("%8.5f\t\t= Alpha\n", ip.Alpha)
	fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
	keys := make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
