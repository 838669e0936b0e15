package densecheck

import (
	"math"
	"testing"

	"github.com/SynapticNetworks/compartsim/compartment"
)

// TestDenseSolveHonorsSymmetricCoupling exercises a minimal two-compartment
// row pair with a nonzero axial coupling term and checks the result against
// the system solved by hand, catching the asymmetric-matrix regression
// where only the child's row carried HH and the parent's row never did.
func TestDenseSolveHonorsSymmetricCoupling(t *testing.T) {
	root := &compartment.Compartment{Index: 0, ParentIndex: -1, GG: 2, FF: 10}
	child := &compartment.Compartment{Index: 1, ParentIndex: 0, GG: 3, HH: -1, FF: 5, Parent: root}

	got, err := DenseSolve([]*compartment.Compartment{root, child})
	if err != nil {
		t.Fatalf("DenseSolve: %v", err)
	}

	wantRoot, wantChild := 7.0, 4.0
	if math.Abs(got[0]-wantRoot) > 1e-9 {
		t.Fatalf("root = %v, want %v", got[0], wantRoot)
	}
	if math.Abs(got[1]-wantChild) > 1e-9 {
		t.Fatalf("child = %v, want %v", got[1], wantChild)
	}
}
