/*
=================================================================================
COMPTREE - THE HINES-STYLE TREE SOLVER
=================================================================================

Tree owns every compartment in one neuron, wires their parent/child
relations, and drives the two-pass O(N) solve each timestep: a down-sweep
that eliminates children into their parents (leaves toward the root) and an
up-sweep that back-substitutes voltages (root toward leaves). This is the
asymmetric analogue of Thomas' algorithm for the irregular tridiagonal
system induced by a branching tree instead of a line.

ARENA OWNERSHIP:
Compartments are addressed by stable integer id through a map, not stored by
value inside their parent; parent/child relations are pointers resolved from
that map and rebuilt after every structural mutation, which is cheap and
only happens at construction time, never mid-simulation.

LEAF-DRIVEN SWEEP AS A PRECOMPUTED POST-ORDER:
A down-sweep where leaves coordinate through a per-node n_passed counter is
equivalent to a post-order traversal of the tree; this implementation takes
the equivalent and cache-friendlier approach: the post-order sequence is
computed once, whenever the tree's structure changes, and iterated linearly
on every tick instead of being re-discovered from the leaf list each time.

=================================================================================
*/
package comptree

import (
	"fmt"

	"github.com/SynapticNetworks/compartsim/compartment"
	"github.com/SynapticNetworks/compartsim/receptor"
	"github.com/SynapticNetworks/compartsim/ringbuf"
	"github.com/SynapticNetworks/compartsim/simerrors"
)

// Tree owns all compartments of one neuron and performs the per-step
// matrix construction, down-sweep, and up-sweep. It is not safe for
// concurrent use; a tick is atomic, pure CPU work against memory this Tree
// alone owns.
type Tree struct {
	vTh float64

	byIndex map[int]*compartment.Compartment
	order   []int // insertion order of compartment indices

	root *compartment.Compartment

	leaves    []*compartment.Compartment // derived
	postOrder []*compartment.Compartment // derived: children before parent

	nextReceptorID int
}

// New constructs an empty tree with the given root-voltage spike threshold.
func New(vTh float64) *Tree {
	return &Tree{
		vTh:     vTh,
		byIndex: make(map[int]*compartment.Compartment),
	}
}

// VThreshold returns the root-voltage spike threshold this tree was
// constructed with.
func (t *Tree) VThreshold() float64 { return t.vTh }

// Root returns the tree's root compartment, or nil if none has been added
// yet.
func (t *Tree) Root() *compartment.Compartment { return t.root }

// Compartment looks up a compartment by its stable index.
func (t *Tree) Compartment(index int) (*compartment.Compartment, bool) {
	c, ok := t.byIndex[index]
	return c, ok
}

// Leaves returns the tree's leaf compartments, in insertion order.
func (t *Tree) Leaves() []*compartment.Compartment {
	out := make([]*compartment.Compartment, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// Order returns compartment indices in insertion order.
func (t *Tree) Order() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)
	return out
}

// AddCompartment creates a compartment and attaches it to the tree. The
// first call must set the root (parentIndex == -1); every subsequent call
// must name an already-added parent. inputBufCapacity sizes the new
// compartment's input-current RingBuffer to the host's declared maximum
// current-injection delay.
func (t *Tree) AddCompartment(index, parentIndex int, ca, gc, gl, el float64, inputBufCapacity int) error {
	if _, exists := t.byIndex[index]; exists {
		return fmt.Errorf("comptree: %w: duplicate compartment index %d", simerrors.ErrConfiguration, index)
	}
	if len(t.order) == 0 {
		if parentIndex != -1 {
			return fmt.Errorf("comptree: %w: first compartment added must be the root (parent_idx -1), got %d", simerrors.ErrConfiguration, parentIndex)
		}
	} else if parentIndex < 0 {
		return fmt.Errorf("comptree: %w: only the first compartment added may be the root", simerrors.ErrConfiguration)
	} else if _, ok := t.byIndex[parentIndex]; !ok {
		return fmt.Errorf("comptree: %w: parent %d does not exist", simerrors.ErrConfiguration, parentIndex)
	}

	c, err := compartment.New(index, parentIndex, ca, gc, gl, el, inputBufCapacity)
	if err != nil {
		return err
	}

	t.byIndex[index] = c
	t.order = append(t.order, index)
	if parentIndex == -1 {
		t.root = c
	}
	t.rebuild()
	return nil
}

// AddReceptor allocates a fresh RingBuffer, assigns the receptor the next
// available id, and attaches it to the named compartment's Currents.
// rbCapacity sizes the new receptor's spike-delivery RingBuffer to the
// host's declared maximum delivery delay. It returns the assigned receptor
// id, which the host uses as the key for DeliverSpike.
func (t *Tree) AddReceptor(compartmentIndex int, kind receptor.Kind, params receptor.Params, rbCapacity int) (int, *ringbuf.RingBuffer, error) {
	c, ok := t.byIndex[compartmentIndex]
	if !ok {
		return 0, nil, fmt.Errorf("comptree: %w: compartment %d does not exist", simerrors.ErrIndexRange, compartmentIndex)
	}
	rb, err := ringbuf.New(rbCapacity)
	if err != nil {
		return 0, nil, fmt.Errorf("comptree: receptor ring buffer: %w", err)
	}
	id := t.nextReceptorID
	if err := c.Currents.AddSynapse(id, kind, params, rb); err != nil {
		return 0, nil, fmt.Errorf("comptree: %w", err)
	}
	t.nextReceptorID++
	return id, rb, nil
}

// Init resets every compartment's voltage to its leak reversal and clears
// all compartment state and input-current buffers. Receptor spike-delivery
// buffers, which AddReceptor hands to the caller, are not cleared here.
func (t *Tree) Init() {
	for _, index := range t.order {
		t.byIndex[index].Init()
	}
}

// rebuild re-derives parent/child pointers, the leaf list, and the
// precomputed post-order traversal from the current ParentIndex relations.
// It runs after every structural mutation (AddCompartment), never mid-tick.
func (t *Tree) rebuild() {
	for _, index := range t.order {
		c := t.byIndex[index]
		c.Parent = nil
		c.Children = nil
	}
	for _, index := range t.order {
		c := t.byIndex[index]
		if c.ParentIndex < 0 {
			continue
		}
		parent := t.byIndex[c.ParentIndex]
		c.Parent = parent
		parent.Children = append(parent.Children, c)
	}

	t.leaves = t.leaves[:0]
	for _, index := range t.order {
		c := t.byIndex[index]
		if c.IsLeaf() {
			t.leaves = append(t.leaves, c)
		}
	}

	t.postOrder = nil
	if t.root != nil {
		t.postOrder = appendPostOrder(t.postOrder, t.root)
	}
}

func appendPostOrder(out []*compartment.Compartment, c *compartment.Compartment) []*compartment.Compartment {
	for _, child := range c.Children {
		out = appendPostOrder(out, child)
	}
	return append(out, c)
}

// ConstructMatrix assembles every compartment's local tridiagonal row for
// one step of size dt at the given delivery lag. It must run, for every
// compartment, strictly before the down-sweep.
func (t *Tree) ConstructMatrix(dt float64, lag int) {
	for _, index := range t.order {
		t.byIndex[index].ConstructMatrixElement(dt, lag)
	}
}

// downSweep eliminates each compartment's children into it, leaves toward
// the root, using the precomputed post-order traversal (equivalent to
// leaf-driven elimination coordinated by a per-node children-reduced
// counter). It returns ErrNumericalDegeneracy if any pivot is zero.
func (t *Tree) downSweep() error {
	for _, c := range t.postOrder {
		for _, child := range c.Children {
			if child.GG == 0 {
				return fmt.Errorf("comptree: %w: zero pivot at compartment %d", simerrors.ErrNumericalDegeneracy, child.Index)
			}
			c.GG -= child.HH * child.HH / child.GG
			c.FF -= child.HH * child.FF / child.GG
		}
	}
	if t.root.GG == 0 {
		return fmt.Errorf("comptree: %w: zero pivot at root compartment %d", simerrors.ErrNumericalDegeneracy, t.root.Index)
	}
	return nil
}

// upSweep solves v_root = FF/GG at the root and then back-substitutes
// v_child = (FF_child - HH_child*v_parent) / GG_child down to every leaf,
// by walking the post-order traversal in reverse — a valid order in which
// every compartment's parent has already been solved, since reversing a
// tree's post-order always yields a topological (parent-before-child)
// order.
func (t *Tree) upSweep() {
	t.root.V = t.root.FF / t.root.GG
	for i := len(t.postOrder) - 2; i >= 0; i-- {
		c := t.postOrder[i]
		c.V = (c.FF - c.HH*c.Parent.V) / c.GG
	}
}

// Step runs one full timestep: matrix construction, down-sweep, up-sweep,
// and threshold detection against the root voltage as it stood before this
// step. It returns the new root voltage and whether a spike fired.
func (t *Tree) Step(dt float64, lag int) (vRoot float64, spiked bool, err error) {
	if t.root == nil {
		return 0, false, fmt.Errorf("comptree: %w: tree has no compartments", simerrors.ErrConfiguration)
	}
	vPrev := t.root.V

	t.ConstructMatrix(dt, lag)
	if err := t.downSweep(); err != nil {
		return 0, false, err
	}
	t.upSweep()

	vRoot = t.root.V
	spiked = vPrev < t.vTh && vRoot >= t.vTh
	return vRoot, spiked, nil
}

// Recordables returns every compartment's voltage and active-current state
// scalar as a named, live handle, plus each compartment's own voltage under
// "v_comp<idx>".
func (t *Tree) Recordables() map[string]*float64 {
	out := map[string]*float64{}
	for _, index := range t.order {
		c := t.byIndex[index]
		out[fmt.Sprintf("v_comp%d", index)] = &c.V
		for name, ptr := range c.Currents.Recordables(index) {
			out[name] = ptr
		}
	}
	return out
}
