package types

import (
	"fmt"
	"math"
	"sort"
)

// ElementType is the reference shape of a volume
type ElementType uint8

const (
	Line ElementType = iota
	Triangle
	Quad
	Tet
	Hex
	Wedge
	Pyramid
)

var ElementNames = map[ElementType]string{
	Line:     "Line",
	Triangle: "Triangle",
	Quad:     "Quad",
	Tet:      "Tet",
	Hex:      "Hex",
	Wedge:    "Wedge",
	Pyramid:  "Pyramid",
}

var ElementNameMap = map[string]ElementType{
	"line":        Line,
	"triangle":    Triangle,
	"tri":         Triangle,
	"quad":        Quad,
	"quadrangle":  Quad,
	"tet":         Tet,
	"tetrahedron": Tet,
	"hex":         Hex,
	"hexahedron":  Hex,
	"wedge":       Wedge,
	"prism":       Wedge,
	"pyramid":     Pyramid,
}

func (et ElementType) String() string { return ElementNames[et] }

func ParseElementType(label string) (ElementType, error) {
	return lookup("element type", label, ElementNameMap)
}

func (et ElementType) Dim() int {
	switch et {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	default:
		return 3
	}
}

func (et ElementType) NFaces() int {
	switch et {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Wedge, Pyramid:
		return 5
	default:
		return 6
	}
}

func (et ElementType) NVertices() int {
	switch et {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Pyramid:
		return 5
	case Wedge:
		return 6
	default:
		return 8
	}
}

// IsTensor reports whether the element is a tensor product of lines
func (et ElementType) IsTensor() bool { return et == Line || et == Quad || et == Hex }

/*
FaceKey identifies a face by its sorted vertex indices so that the two volumes sharing a face
produce the same key regardless of their local vertex ordering. Unused slots are -1.
*/
type FaceKey [4]int

func NewFaceKey(verts []int) (fk FaceKey) {
	if len(verts) > 4 {
		panic(fmt.Errorf("faces have at most 4 vertices, got %d", len(verts)))
	}
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	for i := range fk {
		fk[i] = -1
	}
	for i, v := range sorted {
		if v < 0 || v > math.MaxInt32 {
			panic(fmt.Errorf("vertex index %d out of range", v))
		}
		fk[i] = v
	}
	return
}

// GetVertices returns the sorted vertex indices
func (fk FaceKey) GetVertices() (verts []int) {
	for _, v := range fk {
		if v >= 0 {
			verts = append(verts, v)
		}
	}
	return
}
