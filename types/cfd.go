package types

import (
	"fmt"
	"strings"
)

// PDEType selects the flux family
type PDEType uint8

const (
	PDE_None PDEType = iota
	PDE_Advection
	PDE_Poisson
	PDE_Euler
	PDE_NavierStokes
)

var PDENames = map[PDEType]string{
	PDE_Advection:    "Advection",
	PDE_Poisson:      "Poisson",
	PDE_Euler:        "Euler",
	PDE_NavierStokes: "NavierStokes",
}

var PDENameMap = map[string]PDEType{
	"advection":     PDE_Advection,
	"poisson":       PDE_Poisson,
	"diffusion":     PDE_Poisson,
	"euler":         PDE_Euler,
	"navierstokes":  PDE_NavierStokes,
	"navier_stokes": PDE_NavierStokes,
	"ns":            PDE_NavierStokes,
}

func (p PDEType) String() string { return PDENames[p] }

// NVar returns the number of conserved variables in dim dimensions
func (p PDEType) NVar(dim int) int {
	switch p {
	case PDE_Euler, PDE_NavierStokes:
		return dim + 2
	default:
		return 1
	}
}

// HasInviscid reports whether the PDE carries a first order flux
func (p PDEType) HasInviscid() bool { return p != PDE_Poisson }

// HasViscous reports whether the PDE carries a second order flux
func (p PDEType) HasViscous() bool { return p == PDE_Poisson || p == PDE_NavierStokes }

// FormType is the volume term formulation
type FormType uint8

const (
	Form_Weak FormType = iota
	Form_Strong
)

var FormNameMap = map[string]FormType{
	"weak":   Form_Weak,
	"strong": Form_Strong,
}

func (f FormType) String() string {
	if f == Form_Strong {
		return "Strong"
	}
	return "Weak"
}

// FluxType is the first order numerical flux
type FluxType uint8

const (
	FLUX_None FluxType = iota
	FLUX_Upwind
	FLUX_LaxFriedrichs
	FLUX_Roe
)

var FluxNames = map[FluxType]string{
	FLUX_None:          "None",
	FLUX_Upwind:        "Upwind",
	FLUX_LaxFriedrichs: "Lax Friedrichs",
	FLUX_Roe:           "Roe-Pike",
}

var FluxNameMap = map[string]FluxType{
	"upwind":         FLUX_Upwind,
	"lax":            FLUX_LaxFriedrichs,
	"lf":             FLUX_LaxFriedrichs,
	"llf":            FLUX_LaxFriedrichs,
	"lax friedrichs": FLUX_LaxFriedrichs,
	"roe":            FLUX_Roe,
	"roe-pike":       FLUX_Roe,
}

func (f FluxType) String() string { return FluxNames[f] }

// SolverMethod selects which quantities an assembly pass computes
type SolverMethod uint8

const (
	Method_Explicit SolverMethod = iota
	Method_Implicit
)

var MethodNameMap = map[string]SolverMethod{
	"explicit": Method_Explicit,
	"implicit": Method_Implicit,
}

func (m SolverMethod) String() string {
	if m == Method_Implicit {
		return "Implicit"
	}
	return "Explicit"
}

// BCType tags a boundary face
type BCType uint8

const (
	BC_None BCType = iota
	BC_Riemann
	BC_SlipWall
	BC_NoSlipAdiabatic
	BC_TotalTP
	BC_SupersonicIn
	BC_SupersonicOut
	BC_BackPressure
	BC_Dirichlet
	BC_Neumann
	BC_Inflow
	BC_Outflow
)

var BCNames = map[BCType]string{
	BC_None:            "None",
	BC_Riemann:         "Riemann",
	BC_SlipWall:        "SlipWall",
	BC_NoSlipAdiabatic: "NoSlipAdiabatic",
	BC_TotalTP:         "TotalTP",
	BC_SupersonicIn:    "SupersonicIn",
	BC_SupersonicOut:   "SupersonicOut",
	BC_BackPressure:    "BackPressure",
	BC_Dirichlet:       "Dirichlet",
	BC_Neumann:         "Neumann",
	BC_Inflow:          "Inflow",
	BC_Outflow:         "Outflow",
}

var BCNameMap = map[string]BCType{
	"riemann":         BC_Riemann,
	"far":             BC_Riemann,
	"farfield":        BC_Riemann,
	"slip":            BC_SlipWall,
	"slip_wall":       BC_SlipWall,
	"slipwall":        BC_SlipWall,
	"wall":            BC_NoSlipAdiabatic,
	"no_slip":         BC_NoSlipAdiabatic,
	"noslip":          BC_NoSlipAdiabatic,
	"noslipadiabatic": BC_NoSlipAdiabatic,
	"total_tp":        BC_TotalTP,
	"totaltp":         BC_TotalTP,
	"supersonic_in":   BC_SupersonicIn,
	"supersonicin":    BC_SupersonicIn,
	"supersonic_out":  BC_SupersonicOut,
	"supersonicout":   BC_SupersonicOut,
	"back_pressure":   BC_BackPressure,
	"backpressure":    BC_BackPressure,
	"pressure_outlet": BC_BackPressure,
	"dirichlet":       BC_Dirichlet,
	"neumann":         BC_Neumann,
	"inflow":          BC_Inflow,
	"in":              BC_Inflow,
	"outflow":         BC_Outflow,
	"out":             BC_Outflow,
}

func (bc BCType) String() string {
	if name, ok := BCNames[bc]; ok {
		return name
	}
	return "Unknown"
}

// ValidFor reports whether the BC can close the given PDE
func (bc BCType) ValidFor(pde PDEType) bool {
	switch bc {
	case BC_Riemann, BC_SlipWall, BC_TotalTP, BC_SupersonicIn, BC_SupersonicOut, BC_BackPressure:
		return pde == PDE_Euler || pde == PDE_NavierStokes
	case BC_NoSlipAdiabatic:
		return pde == PDE_NavierStokes
	case BC_Dirichlet, BC_Neumann:
		return pde == PDE_Poisson
	case BC_Inflow, BC_Outflow:
		return pde == PDE_Advection
	}
	return false
}

// lookup resolves a case insensitive label in a name map
func lookup[K comparable](kind, label string, m map[string]K) (k K, err error) {
	var ok bool
	if k, ok = m[strings.ToLower(strings.TrimSpace(label))]; !ok {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		err = fmt.Errorf("unknown %s \"%s\", choose from: %v", kind, label, keys)
	}
	return
}

func ParsePDE(label string) (PDEType, error) { return lookup("PDE", label, PDENameMap) }

func ParseFlux(label string) (FluxType, error) { return lookup("flux", label, FluxNameMap) }

func ParseForm(label string) (FormType, error) { return lookup("form", label, FormNameMap) }

func ParseMethod(label string) (SolverMethod, error) {
	return lookup("solver method", label, MethodNameMap)
}

func ParseBC(label string) (BCType, error) { return lookup("boundary condition", label, BCNameMap) }
