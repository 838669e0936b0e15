/*
=================================================================================
COMPARTMENT CURRENTS - AGGREGATE OF CHANNELS AND RECEPTORS FOR ONE PATCH
=================================================================================

Currents owns the active-current contributors of a single compartment: at
most one sodium channel, at most one potassium channel, and four independent
vectors of receptors, one per synapse kind. It is the thing Compartment asks
for a single (g, i) pair each step; Currents itself never touches the
tridiagonal matrix — that remains Compartment's job.

=================================================================================
*/
package compartment

import (
	"fmt"

	"github.com/SynapticNetworks/compartsim/ionchan"
	"github.com/SynapticNetworks/compartsim/receptor"
	"github.com/SynapticNetworks/compartsim/ringbuf"
)

// Currents aggregates one compartment's active current contributors.
type Currents struct {
	na *ionchan.Na
	k  *ionchan.K

	ampa     []*receptor.Receptor
	gaba     []*receptor.Receptor
	nmda     []*receptor.Receptor
	ampaNmda []*receptor.Receptor
}

// NewCurrents returns an empty Currents bundle; channels and receptors are
// attached afterward with SetNa/SetK/AddSynapse.
func NewCurrents() *Currents {
	return &Currents{}
}

// SetNa attaches (or replaces) this compartment's sodium channel.
func (c *Currents) SetNa(na *ionchan.Na) { c.na = na }

// SetK attaches (or replaces) this compartment's potassium channel.
func (c *Currents) SetK(k *ionchan.K) { c.k = k }

// AddSynapse constructs a receptor of the named kind bound to rb and
// appends it to the matching kind vector.
func (c *Currents) AddSynapse(id int, kind receptor.Kind, params receptor.Params, rb *ringbuf.RingBuffer) error {
	r, err := receptor.New(id, kind, params, rb)
	if err != nil {
		return fmt.Errorf("currents: add synapse: %w", err)
	}
	switch kind {
	case receptor.AMPA:
		c.ampa = append(c.ampa, r)
	case receptor.GABA:
		c.gaba = append(c.gaba, r)
	case receptor.NMDA:
		c.nmda = append(c.nmda, r)
	case receptor.AMPANMDA:
		c.ampaNmda = append(c.ampaNmda, r)
	}
	return nil
}

// NumStep sums the (g, i) contribution of every channel and receptor this
// compartment owns, evaluated at voltage v for a step of size dt, reading
// exactly one delivery per receptor ring buffer at the given lag.
func (c *Currents) NumStep(v, dt float64, lag int) (g, i float64) {
	if c.na != nil {
		dg, di := c.na.NumStep(v, dt)
		g += dg
		i += di
	}
	if c.k != nil {
		dg, di := c.k.NumStep(v, dt)
		g += dg
		i += di
	}
	for _, group := range [][]*receptor.Receptor{c.ampa, c.gaba, c.nmda, c.ampaNmda} {
		for _, r := range group {
			dg, di := r.NumStep(v, dt, lag)
			g += dg
			i += di
		}
	}
	return g, i
}

// Steady calibrates any attached channel's gating variables to their
// steady-state values at v, instead of the cold zero state Init leaves
// them in. It is never called automatically; a host opts in explicitly,
// typically right after Init, passing the compartment's own El.
func (c *Currents) Steady(v float64) {
	if c.na != nil {
		c.na.Steady(v)
	}
	if c.k != nil {
		c.k.Steady(v)
	}
}

// Init propagates initialization to every channel and receptor this
// compartment owns, resetting gating state and synaptic kernels.
func (c *Currents) Init() {
	if c.na != nil {
		c.na.Init()
	}
	if c.k != nil {
		c.k.Init()
	}
	for _, group := range [][]*receptor.Receptor{c.ampa, c.gaba, c.nmda, c.ampaNmda} {
		for _, r := range group {
			r.Init()
		}
	}
}

// Recordables returns named state-scalar handles for every channel and
// receptor: "m_Na<cidx>", "h_Na<cidx>", "n_K<cidx>", and each receptor's own
// "g_<Kind><id>".
func (c *Currents) Recordables(compartmentIndex int) map[string]*float64 {
	out := map[string]*float64{}
	if c.na != nil {
		for name, ptr := range c.na.Recordables() {
			out[fmt.Sprintf("%s_Na%d", name, compartmentIndex)] = ptr
		}
	}
	if c.k != nil {
		for name, ptr := range c.k.Recordables() {
			out[fmt.Sprintf("%s_K%d", name, compartmentIndex)] = ptr
		}
	}
	for _, group := range [][]*receptor.Receptor{c.ampa, c.gaba, c.nmda, c.ampaNmda} {
		for _, r := range group {
			for name, ptr := range r.Recordables() {
				out[name] = ptr
			}
		}
	}
	return out
}
