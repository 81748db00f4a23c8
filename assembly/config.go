package assembly

import (
	"fmt"

	"github.com/notargets/godpg/bc"
	"github.com/notargets/godpg/flux"
	"github.com/notargets/godpg/types"
)

// Config holds the discretization choices of one run. It is built once by NewConfig and shared
// read only by every component.
type Config struct {
	Model        *flux.Model
	Form         types.FormType
	Flux         types.FluxType
	Method       types.SolverMethod
	SumFactorize bool
	// Eta is the BR2 lifting penalty, zero selects the number of element faces plus one
	Eta float64
	BC  *bc.Params
	// Source sets S(x) of the volume source term, nil for none
	Source func(x []float64, s []float64)
}

type Option func(*Config)

func WithSumFactorization(on bool) Option { return func(c *Config) { c.SumFactorize = on } }

func WithPenalty(eta float64) Option { return func(c *Config) { c.Eta = eta } }

func WithSource(fn func(x, s []float64)) Option { return func(c *Config) { c.Source = fn } }

func WithMethod(m types.SolverMethod) Option { return func(c *Config) { c.Method = m } }

func WithForm(f types.FormType) Option { return func(c *Config) { c.Form = f } }

// NewConfig validates the choices that do not depend on the mesh. Boundary parameters may be nil
// when the mesh carries no boundary faces.
func NewConfig(m *flux.Model, ft types.FluxType, bcp *bc.Params, opts ...Option) (cfg *Config,
	err error) {
	if m == nil {
		err = fmt.Errorf("config needs a flux model")
		return
	}
	cfg = &Config{Model: m, Flux: ft, BC: bcp}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.BC == nil {
		cfg.BC = &bc.Params{}
	}
	cfg.BC.Model = m
	switch {
	case cfg.Form != types.Form_Weak:
		err = fmt.Errorf("%s form volume terms are not implemented", cfg.Form)
	case cfg.Eta < 0:
		err = fmt.Errorf("lifting penalty must not be negative, have %g", cfg.Eta)
	}
	return
}

func (c *Config) Viscous() bool { return c.Model.PDE.HasViscous() }

func (c *Config) Implicit() bool { return c.Method == types.Method_Implicit }
