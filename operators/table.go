package operators

import (
	"fmt"
	"sync"

	"github.com/notargets/godpg/types"
)

type opsKey struct {
	et         types.ElementType
	P          int
	collocated bool
}

// Table builds and caches reference operators. Entries are immutable once built and are shared by
// all volumes of the same kind.
type Table struct {
	Collocated bool
	mu         sync.Mutex
	cache      map[opsKey]*ElementOps
}

func NewTable(collocated bool) *Table {
	return &Table{
		Collocated: collocated,
		cache:      make(map[opsKey]*ElementOps),
	}
}

// Get returns the operators for an element type and polynomial order, or an error when the
// combination is not supported.
func (tb *Table) Get(et types.ElementType, P int) (eo *ElementOps, err error) {
	key := opsKey{et, P, tb.Collocated}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	var ok bool
	if eo, ok = tb.cache[key]; ok {
		return
	}
	if P < 0 {
		err = fmt.Errorf("polynomial order must be non-negative, have %d", P)
		return
	}
	switch et {
	case types.Line, types.Quad, types.Hex:
		eo = newTensorOps(et, P, tb.Collocated)
	case types.Triangle:
		if tb.Collocated {
			err = fmt.Errorf("collocated operators are only available on tensor elements, have %s", et)
			return
		}
		if P < 1 {
			err = fmt.Errorf("triangle operators require P >= 1, have %d", P)
			return
		}
		eo = newTriangleOps(P)
	default:
		err = fmt.Errorf("no reference operators for element type %s", et)
		return
	}
	tb.cache[key] = eo
	return
}
