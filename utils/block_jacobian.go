package utils

import (
	"fmt"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
)

// BlockJacobian is a block sparse matrix with one block row/column per volume. Blocks are sized
// by the degrees of freedom of the owning volumes and are allocated on first write. Writes follow
// a set-position-then-accumulate protocol: SetRowCol selects the block, AddBlock sums into it.
type BlockJacobian struct {
	blockSizes []int
	offsets    []int // global dof offset of each block row/column
	row, col   int
	data       []float64
	// addresses maps a block coordinate [i,j] to the offset (in floats) within data.
	addresses map[[2]int]int
}

func NewBlockJacobian(blockSizes []int) (bj *BlockJacobian) {
	bj = &BlockJacobian{
		blockSizes: blockSizes,
		offsets:    make([]int, len(blockSizes)+1),
		row:        -1,
		col:        -1,
		addresses:  make(map[[2]int]int),
	}
	for i, n := range blockSizes {
		bj.offsets[i+1] = bj.offsets[i] + n
	}
	return
}

// SetRowCol selects the destination block for subsequent AddBlock calls
func (bj *BlockJacobian) SetRowCol(row, col int) {
	if row < 0 || row >= len(bj.blockSizes) || col < 0 || col >= len(bj.blockSizes) {
		panic(fmt.Sprintf("block address (%d,%d) out of range for %d blocks", row, col,
			len(bj.blockSizes)))
	}
	bj.row, bj.col = row, col
}

// AddBlock accumulates B into the block selected by SetRowCol
func (bj *BlockJacobian) AddBlock(B Matrix) {
	if bj.row < 0 {
		panic("AddBlock called before SetRowCol")
	}
	nr, nc := B.Dims()
	if nr != bj.blockSizes[bj.row] || nc != bj.blockSizes[bj.col] {
		panic(fmt.Sprintf("block (%d,%d) is %d x %d, got %d x %d", bj.row, bj.col,
			bj.blockSizes[bj.row], bj.blockSizes[bj.col], nr, nc))
	}
	blk := bj.block(bj.row, bj.col)
	for i, val := range B.DataP {
		blk[i] += val
	}
}

func (bj *BlockJacobian) block(i, j int) []float64 {
	key := [2]int{i, j}
	size := bj.blockSizes[i] * bj.blockSizes[j]
	offset, ok := bj.addresses[key]
	if !ok {
		offset = len(bj.data)
		bj.data = append(bj.data, make([]float64, size)...)
		bj.addresses[key] = offset
	}
	return bj.data[offset : offset+size]
}

// GetBlockView returns a Matrix view of block (i,j) and whether it has been written
func (bj *BlockJacobian) GetBlockView(i, j int) (B Matrix, ok bool) {
	var offset int
	if offset, ok = bj.addresses[[2]int{i, j}]; !ok {
		return
	}
	size := bj.blockSizes[i] * bj.blockSizes[j]
	B = NewMatrix(bj.blockSizes[i], bj.blockSizes[j], bj.data[offset:offset+size])
	return
}

// Addresses returns the written block coordinates in row major order
func (bj *BlockJacobian) Addresses() (addr [][2]int) {
	addr = make([][2]int, 0, len(bj.addresses))
	for key := range bj.addresses {
		addr = append(addr, key)
	}
	sort.Slice(addr, func(a, b int) bool {
		if addr[a][0] != addr[b][0] {
			return addr[a][0] < addr[b][0]
		}
		return addr[a][1] < addr[b][1]
	})
	return
}

// Reset zeroes all blocks but keeps the allocated pattern
func (bj *BlockJacobian) Reset() {
	for i := range bj.data {
		bj.data[i] = 0
	}
	bj.row, bj.col = -1, -1
}

func (bj *BlockJacobian) NumBlocks() int { return len(bj.addresses) }

// Offset returns the first global dof of block row/column k
func (bj *BlockJacobian) Offset(k int) int { return bj.offsets[k] }

// Dims returns the global dimension
func (bj *BlockJacobian) Dims() (r, c int) {
	n := bj.offsets[len(bj.offsets)-1]
	return n, n
}

// At returns the global entry (i,j)
func (bj *BlockJacobian) At(i, j int) float64 {
	bi := sort.SearchInts(bj.offsets, i+1) - 1
	bjj := sort.SearchInts(bj.offsets, j+1) - 1
	B, ok := bj.GetBlockView(bi, bjj)
	if !ok {
		return 0
	}
	return B.At(i-bj.offsets[bi], j-bj.offsets[bjj])
}

func (bj *BlockJacobian) ToDense() (R Matrix) {
	nr, nc := bj.Dims()
	R = NewMatrix(nr, nc)
	for key := range bj.addresses {
		B, _ := bj.GetBlockView(key[0], key[1])
		r0, c0 := bj.offsets[key[0]], bj.offsets[key[1]]
		bnr, bnc := B.Dims()
		for i := 0; i < bnr; i++ {
			copy(R.DataP[(r0+i)*nc+c0:(r0+i)*nc+c0+bnc], B.Row(i))
		}
	}
	return
}

// ToCSR exports the nonzero entries as a compressed sparse row matrix
func (bj *BlockJacobian) ToCSR() *sparse.CSR {
	nr, nc := bj.Dims()
	dok := sparse.NewDOK(nr, nc)
	for key := range bj.addresses {
		B, _ := bj.GetBlockView(key[0], key[1])
		r0, c0 := bj.offsets[key[0]], bj.offsets[key[1]]
		bnr, bnc := B.Dims()
		for i := 0; i < bnr; i++ {
			for j := 0; j < bnc; j++ {
				if val := B.DataP[j+bnc*i]; val != 0 {
					dok.Set(r0+i, c0+j, val)
				}
			}
		}
	}
	return dok.ToCSR()
}

// MaxAbs returns the largest magnitude entry
func (bj *BlockJacobian) MaxAbs() (mx float64) {
	for _, val := range bj.data {
		mx = math.Max(mx, math.Abs(val))
	}
	return
}

// AsymmetryNorm returns max |J_ij - J_ji| over all entries
func (bj *BlockJacobian) AsymmetryNorm() (mx float64) {
	for key := range bj.addresses {
		B, _ := bj.GetBlockView(key[0], key[1])
		BT, ok := bj.GetBlockView(key[1], key[0])
		bnr, bnc := B.Dims()
		for i := 0; i < bnr; i++ {
			for j := 0; j < bnc; j++ {
				var other float64
				if ok {
					other = BT.DataP[i+bnr*j]
				}
				mx = math.Max(mx, math.Abs(B.DataP[j+bnc*i]-other))
			}
		}
	}
	return
}
