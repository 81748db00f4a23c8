package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row major dense matrix over gonum with direct access to its storage.
type Matrix struct {
	M        *mat.Dense
	DataP    []float64
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var data []float64
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n",
				nr, nc, len(dataO[0]))
			panic(err)
		}
		data = dataO[0]
	} else {
		data = make([]float64, nr*nc)
	}
	R = Matrix{
		M:     mat.NewDense(nr, nc, data),
		DataP: data,
		name:  "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// NewDiagMatrix returns a square matrix with d on the diagonal
func NewDiagMatrix(d []float64) (R Matrix) {
	N := len(d)
	R = NewMatrix(N, N)
	for i, val := range d {
		R.DataP[i+N*i] = val
	}
	return
}

// NewIdentity returns the N x N identity
func NewIdentity(N int) (R Matrix) {
	return NewDiagMatrix(ConstArray(N, 1))
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) IsEmpty() bool             { return m.M == nil }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	data := make([]float64, len(m.DataP))
	copy(data, m.DataP)
	nr, nc := m.Dims()
	return NewMatrix(nr, nc, data)
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	nr, nc := m.Dims()
	R = NewMatrix(nc, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			R.DataP[i+nr*j] = m.DataP[j+nc*i]
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	nr, _ := m.Dims()
	_, nc := A.Dims()
	R = NewMatrix(nr, nc)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	for i, val := range A.DataP {
		m.DataP[i] += val
	}
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	for i, val := range A.DataP {
		m.DataP[i] -= val
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	for i := range m.DataP {
		m.DataP[i] *= a
	}
	return m
}

func (m Matrix) Zero() Matrix { // Changes receiver
	m.checkWritable()
	for i := range m.DataP {
		m.DataP[i] = 0
	}
	return m
}

func (m Matrix) Inverse() (R Matrix, err error) {
	nr, nc := m.Dims()
	if nr != nc {
		err = fmt.Errorf("unable to invert non-square matrix %d x %d", nr, nc)
		return
	}
	R = NewMatrix(nr, nc)
	if err = R.M.Inverse(m.M); err != nil {
		err = fmt.Errorf("inverse of %s: %w", m.name, err)
	}
	return
}

// Row returns a view of row i
func (m Matrix) Row(i int) []float64 {
	_, nc := m.Dims()
	return m.DataP[i*nc : (i+1)*nc]
}

func (m Matrix) Col(j int) (c []float64) {
	nr, nc := m.Dims()
	c = make([]float64, nr)
	for i := range c {
		c[i] = m.DataP[j+nc*i]
	}
	return
}

// MaxAbs returns the largest magnitude entry
func (m Matrix) MaxAbs() (mx float64) {
	for _, val := range m.DataP {
		mx = math.Max(mx, math.Abs(val))
	}
	return
}

// MaxAbsDiff returns the largest magnitude entry of m - A
func (m Matrix) MaxAbsDiff(A Matrix) (mx float64) {
	for i, val := range m.DataP {
		mx = math.Max(mx, math.Abs(val-A.DataP[i]))
	}
	return
}

func (m Matrix) Print(msgI ...string) string {
	var msg string
	if len(msgI) != 0 {
		msg = msgI[0]
	}
	return fmt.Sprintf("%s = \n%v\n", msg, mat.Formatted(m.M, mat.Squeeze()))
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// Kron returns the Kronecker product A (x) B, row index iA*nrB+iB, col jA*ncB+jB
func Kron(A, B Matrix) (R Matrix) {
	nrA, ncA := A.Dims()
	nrB, ncB := B.Dims()
	R = NewMatrix(nrA*nrB, ncA*ncB)
	nc := ncA * ncB
	for iA := 0; iA < nrA; iA++ {
		for jA := 0; jA < ncA; jA++ {
			a := A.DataP[jA+ncA*iA]
			if a == 0 {
				continue
			}
			for iB := 0; iB < nrB; iB++ {
				for jB := 0; jB < ncB; jB++ {
					R.DataP[(iA*nrB+iB)*nc+jA*ncB+jB] = a * B.DataP[jB+ncB*iB]
				}
			}
		}
	}
	return
}
