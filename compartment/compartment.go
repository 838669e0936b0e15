/*
=================================================================================
COMPARTMENT - ONE ISOPOTENTIAL PATCH OF MEMBRANE
=================================================================================

A Compartment is a single RC element in the neuron's tree: capacitance,
leak conductance and reversal, axial coupling to a parent, an input-current
RingBuffer, and an owned Currents bundle of active channels and receptors.
Structural relations (parent/children) are stored as pointers owned and
wired exclusively by comptree.Tree, which is also the only thing allowed to
mutate them — Compartment itself never adds or removes children.

MATRIX ASSEMBLY:
ConstructMatrixElement implements the Crank-Nicolson row assembly: the local
equation gg*v_new + hh*v_parent = ff, folding in the passive leak, the
coupling to the parent and to every child, and the aggregated
active-current (g, i) pair from Currents.NumStep. comptree.Tree's down-sweep
then eliminates each child's hh/gg into its parent's row.

=================================================================================
*/
package compartment

import (
	"fmt"

	"github.com/SynapticNetworks/compartsim/ringbuf"
	"github.com/SynapticNetworks/compartsim/simerrors"
)

// Compartment is one membrane patch. Index and ParentIndex are stable,
// assigned at creation by the owning Tree; ParentIndex == -1 denotes the
// root. Parent/Children are back-pointers the Tree wires after every
// structural change.
type Compartment struct {
	Index       int
	ParentIndex int

	// Passive parameters.
	Ca float64 // capacitance
	Gc float64 // axial coupling conductance to parent
	Gl float64 // leak conductance
	El float64 // leak reversal (also initial voltage)

	// State.
	V float64

	// Per-step scratch fields, valid only during an in-progress sweep.
	FF float64 // right-hand side
	GG float64 // diagonal
	HH float64 // off-diagonal (coupling to parent)

	InputCurrent *ringbuf.RingBuffer
	Currents     *Currents

	Parent   *Compartment
	Children []*Compartment
}

// New constructs a compartment. inputBufCapacity sizes its input-current
// RingBuffer to the host's declared maximum current-injection delay.
// Every compartment must have Ca > 0 and Gl >= 0; Gc must be nonnegative
// for non-root compartments and is not checked for the root.
func New(index, parentIndex int, ca, gc, gl, el float64, inputBufCapacity int) (*Compartment, error) {
	if ca <= 0 {
		return nil, fmt.Errorf("compartment %d: %w: C_m must be positive, got %v", index, simerrors.ErrConfiguration, ca)
	}
	if gl < 0 {
		return nil, fmt.Errorf("compartment %d: %w: g_L must be nonnegative, got %v", index, simerrors.ErrConfiguration, gl)
	}
	if parentIndex >= 0 && gc < 0 {
		return nil, fmt.Errorf("compartment %d: %w: g_c must be nonnegative, got %v", index, simerrors.ErrConfiguration, gc)
	}
	rb, err := ringbuf.New(inputBufCapacity)
	if err != nil {
		return nil, fmt.Errorf("compartment %d: input buffer: %w", index, err)
	}
	return &Compartment{
		Index:        index,
		ParentIndex:  parentIndex,
		Ca:           ca,
		Gc:           gc,
		Gl:           gl,
		El:           el,
		V:            el,
		InputCurrent: rb,
		Currents:     NewCurrents(),
	}, nil
}

// IsRoot reports whether this compartment has no parent.
func (c *Compartment) IsRoot() bool {
	return c.ParentIndex < 0
}

// IsLeaf reports whether this compartment has no children.
func (c *Compartment) IsLeaf() bool {
	return len(c.Children) == 0
}

// Init resets voltage to the leak reversal and clears all per-step scratch
// state, the input buffer, and the owned Currents bundle.
func (c *Compartment) Init() {
	c.V = c.El
	c.FF, c.GG, c.HH = 0, 0, 0
	c.InputCurrent.Clear()
	c.Currents.Init()
}

// Steady calibrates this compartment's channels to their steady-state
// gating values at its own leak reversal El, instead of the cold zero
// state Init leaves them in. A host calls this explicitly after Init
// when it wants channels to start already settled at rest.
func (c *Compartment) Steady() {
	c.Currents.Steady(c.El)
}

// ConstructMatrixElement assembles this compartment's local tridiagonal row
// for one step of size dt, consuming exactly one delivery at lag from every
// ring buffer this compartment or its currents own. It must be called for
// every compartment in the tree before the down-sweep begins.
func (c *Compartment) ConstructMatrixElement(dt float64, lag int) {
	c.GG = c.Ca/dt + c.Gl/2
	c.FF = c.Ca/dt*c.V - c.Gl*(c.V/2-c.El)
	c.HH = 0

	if c.Parent != nil {
		c.GG += c.Gc / 2
		c.HH = -c.Gc / 2
		c.FF -= c.Gc * (c.V - c.Parent.V) / 2
	}
	for _, child := range c.Children {
		c.GG += child.Gc / 2
		c.FF -= child.Gc * (c.V - child.V) / 2
	}

	gCur, iCur := c.Currents.NumStep(c.V, dt, lag)
	c.GG += gCur
	c.FF += iCur

	c.FF += c.InputCurrent.GetValue(lag)
}
