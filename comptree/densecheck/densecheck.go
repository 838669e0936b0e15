/*
=================================================================================
DENSECHECK - BRUTE-FORCE CROSS-CHECK ORACLE FOR THE TREE SOLVER
=================================================================================

This package exists only to check that the Hines-style O(N) tree solve
produces the same voltages as a dense LU solve of the same linear system.
It is never imported by comptree or any other production package; callers
Construct the matrix themselves, hand the resulting rows to DenseSolve, and
compare against the tree's own Step result.

=================================================================================
*/
package densecheck

import (
	"fmt"

	"github.com/SynapticNetworks/compartsim/compartment"
	"gonum.org/v1/gonum/mat"
)

// DenseSolve assembles the dense N-by-N system implied by each compartment's
// already-constructed (GG, HH, FF) row — GG*v_c + HH*v_parent(c) = FF_c — and
// solves it with LU decomposition. comps must already have had
// ConstructMatrixElement called on every one of them for the step being
// checked. It returns each compartment's solved voltage keyed by Index.
//
// The axial coupling term HH is symmetric: a child's row carries HH on its
// parent's column, and by Kirchhoff's current balance the parent's row
// carries that same coefficient on the child's column. Both entries must be
// set or the assembled matrix isn't the system the tree solver is actually
// solving.
func DenseSolve(comps []*compartment.Compartment) (map[int]float64, error) {
	n := len(comps)
	pos := make(map[int]int, n)
	for i, c := range comps {
		pos[c.Index] = i
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewDense(n, 1, nil)
	for i, c := range comps {
		a.Set(i, i, c.GG)
		b.Set(i, 0, c.FF)
		if c.Parent != nil {
			j, ok := pos[c.Parent.Index]
			if !ok {
				return nil, fmt.Errorf("densecheck: parent %d of compartment %d not in comps", c.Parent.Index, c.Index)
			}
			a.Set(i, j, c.HH)
			a.Set(j, i, c.HH)
		}
	}

	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return nil, fmt.Errorf("densecheck: LU solve: %w", err)
	}

	out := make(map[int]float64, n)
	for i, c := range comps {
		out[c.Index] = x.At(i, 0)
	}
	return out, nil
}
