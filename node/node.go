/*
=================================================================================
NODE - THE HOST-FACING FACADE OVER ONE NEURON'S COMPARTMENT TREE
=================================================================================

Node is what a host program actually holds: it receives three event kinds
(spike, current, tick), routes spikes and currents into the right
RingBuffer, and drives comptree.Tree one step at a time on tick. It owns the
lookup table from the host's stable receptor ids to the RingBuffers
comptree.Tree allocated for them, since the tree itself only tracks
compartments, not receptor ids; compartment ids are resolved through the
tree.

Not goroutine-safe: a tick is atomic, single-threaded, cooperative work
against memory this Node alone owns. A host simulating many neurons runs one
Node per goroutine rather than sharing one Node across goroutines.

=================================================================================
*/
package node

import (
	"fmt"
	"log"

	"github.com/SynapticNetworks/compartsim/comptree"
	"github.com/SynapticNetworks/compartsim/ringbuf"
	"github.com/SynapticNetworks/compartsim/simerrors"
)

// Spike is one outgoing threshold-crossing event, timestamped with one-step
// latency on the outgoing side relative to the lag it was detected at.
type Spike struct {
	Step int
}

// Node drives one neuron's Tree in response to host events.
type Node struct {
	Tree *comptree.Tree
	Dt   float64

	// Logger receives one line for every tick aborted by a numerical error,
	// before that error is returned. Defaults to log.Default() if nil when
	// first used.
	Logger *log.Logger

	receptorBufs map[int]*ringbuf.RingBuffer

	vRoot float64
}

// New wraps an already-populated Tree into a host-facing Node. dt is the
// integration step size, in the same time units as the tree's receptor and
// channel time constants (milliseconds, by convention). receptorBufs maps
// every receptor id the tree was built with to the RingBuffer
// comptree.Tree.AddReceptor returned for it.
func New(tree *comptree.Tree, dt float64, receptorBufs map[int]*ringbuf.RingBuffer) (*Node, error) {
	if tree == nil {
		return nil, fmt.Errorf("node: %w: tree is nil", simerrors.ErrConfiguration)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("node: %w: dt must be positive, got %v", simerrors.ErrConfiguration, dt)
	}
	root := tree.Root()
	if root == nil {
		return nil, fmt.Errorf("node: %w: tree has no compartments", simerrors.ErrConfiguration)
	}
	return &Node{
		Tree:         tree,
		Dt:           dt,
		receptorBufs: receptorBufs,
		vRoot:        root.V,
	}, nil
}

func (n *Node) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.Default()
}

// DeliverSpike routes a weighted spike into the named receptor's delivery
// buffer at lag, scaled by multiplicity (e.g. a burst of identical synaptic
// events arriving on the same step). weight must be nonnegative.
func (n *Node) DeliverSpike(receptorID, lag int, weight float64, multiplicity int) error {
	if weight < 0 {
		return fmt.Errorf("node: %w: spike weight must be nonnegative, got %v", simerrors.ErrConfiguration, weight)
	}
	rb, ok := n.receptorBufs[receptorID]
	if !ok {
		return fmt.Errorf("node: %w: unknown receptor id %d", simerrors.ErrIndexRange, receptorID)
	}
	rb.AddValue(lag, weight*float64(multiplicity))
	return nil
}

// DeliverCurrent adds w*current to the named compartment's input-current
// buffer at lag.
func (n *Node) DeliverCurrent(compartmentID, lag int, weight, current float64) error {
	c, ok := n.Tree.Compartment(compartmentID)
	if !ok {
		return fmt.Errorf("node: %w: unknown compartment id %d", simerrors.ErrIndexRange, compartmentID)
	}
	c.InputCurrent.AddValue(lag, weight*current)
	return nil
}

// Tick drives `to - from` integration steps, one per lag in [from, to),
// timestamped against originSteps. It returns every spike emitted during
// the run; a numerical error aborts the tick immediately and leaves the
// tree's state undefined — the caller must re-Init before continuing.
func (n *Node) Tick(originSteps, from, to int) ([]Spike, error) {
	if to < from {
		return nil, fmt.Errorf("node: %w: tick range [%d, %d) is inverted", simerrors.ErrConfiguration, from, to)
	}
	var spikes []Spike
	for lag := from; lag < to; lag++ {
		vRoot, spiked, err := n.Tree.Step(n.Dt, lag)
		if err != nil {
			n.logger().Printf("node: tick aborted at lag %d: %v", lag, err)
			return spikes, fmt.Errorf("node: tick: %w", err)
		}
		n.vRoot = vRoot
		if spiked {
			step := originSteps + lag + 1
			spikes = append(spikes, Spike{Step: step})
		}
	}
	return spikes, nil
}

// VRoot returns the root compartment's voltage as of the last completed
// tick step.
func (n *Node) VRoot() float64 { return n.vRoot }

// Recordables returns every named, live scalar handle the tree exposes —
// compartment voltages and active-current state — for host sampling.
func (n *Node) Recordables() map[string]*float64 {
	return n.Tree.Recordables()
}

// Init resets the tree to its initial state and clears every receptor's
// spike-delivery buffer; compartment input-current buffers are cleared as
// part of each compartment's own Init.
func (n *Node) Init() {
	n.Tree.Init()
	for _, rb := range n.receptorBufs {
		rb.Clear()
	}
	if root := n.Tree.Root(); root != nil {
		n.vRoot = root.V
	}
}
