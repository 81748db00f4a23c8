package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/godpg/InputParameters"
	"github.com/notargets/godpg/verification"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) (*InputParameters.Parameters, *InputParameters.Resolved) {
	ip := &InputParameters.Parameters{}
	require.NoError(t, ip.Parse([]byte(input)))
	r, err := ip.Validate()
	require.NoError(t, err)
	return ip, r
}

func TestExampleInput(t *testing.T) {
	ip, r := parse(t, strings.Replace(exampleInput, "FluxType: Roe", "FluxType: LLF", 1))
	ip.Elements = 2
	pb, err := newProblem(ip, r)
	require.NoError(t, err)
	J := runAssembly(pb, 1)
	require.NotNil(t, J)
	nr, nc := J.Dims()
	assert.Equal(t, 4*9*4, nr)
	assert.Equal(t, nr, nc)
	rep := verification.CheckJacobian(pb.asm, 1.e-12)
	assert.True(t, rep.Passed(), rep.String())
}

func TestCurvedPoisson(t *testing.T) {
	ip, r := parse(t, `
PDE: Poisson
Dimension: 2
ElementType: Triangle
PolynomialOrder: 2
Elements: 2
Curved: true
Method: explicit
BCs:
  default: Dirichlet
`)
	pb, err := newProblem(ip, r)
	require.NoError(t, err)
	assert.Nil(t, runAssembly(pb, 2))
	// The sides of the box stay put
	y := boxCurve([]float64{0, 0.3})
	assert.InDeltaSlice(t, []float64{0, 0.3}, y, 1.e-15)
}

func TestReadParameters(t *testing.T) {
	viper.Set("inputConditionsFile", "")
	_, _, err := readParameters()
	assert.Error(t, err)

	fileName := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(exampleInput), 0644))
	viper.Set("inputConditionsFile", fileName)
	defer viper.Set("inputConditionsFile", "")
	ip, r, err := readParameters()
	require.NoError(t, err)
	assert.Equal(t, "Euler channel", ip.Title)
	assert.Len(t, r.BCs, 3)
}
