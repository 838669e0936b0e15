/*
=================================================================================
SYNAPTIC RECEPTORS - DOUBLE-EXPONENTIAL CONDUCTANCE KERNELS
=================================================================================

A receptor turns a stream of weighted spike deliveries, arriving through a
RingBuffer, into a synaptic conductance acting on its compartment. All four
kinds supported here (AMPA, GABA, NMDA, AMPA+NMDA) share the same rise/decay
double-exponential kernel; NMDA and AMPA+NMDA additionally gate that
conductance through a magnesium-block voltage sigmoid.

BIOLOGICAL CONTEXT:
AMPA and GABA-A receptors are fast, voltage-independent ionotropic receptors;
their conductance follows spike arrival with a rise and decay time constant.
NMDA receptors are blocked by extracellular magnesium at hyperpolarized
potentials and unblock as the membrane depolarizes, giving them a
voltage-dependent gain that makes them act as coincidence detectors between
presynaptic release and postsynaptic depolarization. AMPA+NMDA models a
single synapse with both receptor types colocated, as occurs at most
excitatory cortical synapses.

NUMERICAL METHOD:
Conductance is tracked as the difference of two exponentially decaying
components g_r (rise) and g_d (decay); each spike injects a normalized unit
into both components with opposite sign so that g_r + g_d traces the
classic alpha-like double-exponential PSC shape, peaking at unit height for
a unit-weight spike. NMDA's voltage block is linearized around the current
voltage the same way CompartmentCurrents' other nonlinear contributors are:
a first-order Taylor expansion whose (g_contrib, i_contrib) pair slots into
the compartment's half-step Crank-Nicolson matrix row exactly like a linear
channel's would.

=================================================================================
*/
package receptor

import (
	"fmt"
	"math"

	"github.com/SynapticNetworks/compartsim/ringbuf"
)

// Kind identifies which of the four supported receptor types a Receptor
// implements. The set is closed, so a tagged variant dispatches inline
// rather than through an interface satisfied by four near-identical types.
type Kind int

const (
	AMPA Kind = iota
	GABA
	NMDA
	AMPANMDA
)

func (k Kind) String() string {
	switch k {
	case AMPA:
		return "AMPA"
	case GABA:
		return "GABA"
	case NMDA:
		return "NMDA"
	case AMPANMDA:
		return "AMPA_NMDA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Params bundles the per-kind parameters, all with documented defaults.
// ERev/TauR/TauD describe the receptor's primary
// kernel (the only one for AMPA/GABA/NMDA, and the NMDA component for
// AMPA+NMDA). TauRAMPA/TauDAMPA and NMDARatio are only consulted for the
// AMPA+NMDA kind, describing its colocated AMPA component and the relative
// scale of the NMDA component.
type Params struct {
	ERev      float64
	TauR      float64
	TauD      float64
	NMDARatio float64
	TauRAMPA  float64
	TauDAMPA  float64
}

// DefaultParams returns the documented defaults for kind. The AMPA component
// of AMPA+NMDA is given its own biologically plausible decay constant
// (~3 ms) rather than reusing NMDA's slow 43 ms decay.
func DefaultParams(kind Kind) Params {
	switch kind {
	case AMPA:
		return Params{ERev: 0.0, TauR: 0.2, TauD: 3.0}
	case GABA:
		return Params{ERev: -70.0, TauR: 0.5, TauD: 10.0}
	case NMDA:
		return Params{ERev: 0.0, TauR: 0.2, TauD: 43.0}
	case AMPANMDA:
		return Params{
			ERev:      0.0,
			TauR:      0.2,
			TauD:      43.0,
			NMDARatio: 1.0,
			TauRAMPA:  0.2,
			TauDAMPA:  3.0,
		}
	default:
		return Params{}
	}
}

// kernelNorm computes g_norm so that a unit-weight spike through this
// kernel peaks at conductance 1.0:
//
//	tp      = tr*td/(td-tr) * ln(td/tr)
//	g_norm  = 1 / (-exp(-tp/tr) + exp(-tp/td))
func kernelNorm(tr, td float64) float64 {
	if tr <= 0 || td <= 0 || td == tr {
		return 0
	}
	tp := tr * td / (td - tr) * math.Log(td/tr)
	return 1.0 / (-math.Exp(-tp/tr) + math.Exp(-tp/td))
}

// kernel is one double-exponential rise/decay conductance component, shared
// by the AMPA/GABA/NMDA kernel and, for AMPA+NMDA, instantiated twice.
type kernel struct {
	tauR, tauD, norm float64
	gr, gd           float64
}

func newKernel(tauR, tauD float64) kernel {
	return kernel{tauR: tauR, tauD: tauD, norm: kernelNorm(tauR, tauD)}
}

// step decays the kernel by dt, injects a spike of weight w, and returns
// the resulting conductance g_r + g_d.
func (k *kernel) step(dt, w float64) float64 {
	k.gr *= math.Exp(-dt / k.tauR)
	k.gd *= math.Exp(-dt / k.tauD)
	k.gr -= w * k.norm
	k.gd += w * k.norm
	return k.gd + k.gr
}

func (k *kernel) reset() {
	k.gr, k.gd = 0, 0
}

// Receptor is a single synaptic contact: a kind, its parameters, its
// spike-delivery RingBuffer, and the kernel state(s) it integrates.
type Receptor struct {
	ID     int
	Kind   Kind
	Params Params
	rb     *ringbuf.RingBuffer

	main kernel // AMPA, GABA, NMDA; or the NMDA component of AMPA+NMDA
	ampa kernel // only populated/used for AMPANMDA

	gLevel float64 // combined synaptic conductance as of the last NumStep, for Recordables
}

// New constructs a receptor of the given kind, bound to rb for spike
// delivery. id is the receptor's stable identifier within its neuron.
func New(id int, kind Kind, params Params, rb *ringbuf.RingBuffer) (*Receptor, error) {
	if rb == nil {
		return nil, fmt.Errorf("receptor: nil ring buffer for receptor %d", id)
	}
	r := &Receptor{ID: id, Kind: kind, Params: params, rb: rb}
	switch kind {
	case AMPA, GABA, NMDA:
		r.main = newKernel(params.TauR, params.TauD)
	case AMPANMDA:
		r.main = newKernel(params.TauR, params.TauD)
		r.ampa = newKernel(params.TauRAMPA, params.TauDAMPA)
	default:
		return nil, fmt.Errorf("receptor: unknown receptor kind %v", kind)
	}
	return r, nil
}

// Init clears all kernel state; the ring buffer itself is cleared by
// node.Node.Init, not by the receptor.
func (r *Receptor) Init() {
	r.main.reset()
	r.ampa.reset()
}

// mgBlock evaluates the NMDA magnesium-block sigmoid and its derivative
// with respect to voltage: sigma(v) = 1 / (1 + 0.3*exp(-0.1*v)).
func mgBlock(v float64) (sigma, dSigma float64) {
	const c, a = 0.3, 0.1
	e := math.Exp(-a * v)
	denom := 1.0 + c*e
	sigma = 1.0 / denom
	dSigma = a * c * e * sigma * sigma
	return
}

// linearize converts a current I(v) evaluated at v0 together with its
// derivative dIdV into the (g_contrib, i_contrib) pair that the compartment
// expects, matching the same half-step Crank-Nicolson convention used for
// linear channels and receptors: g_contrib = g/2, i_contrib = g*(e - v/2)
// is the special case of this formula when I(v) = g*(e - v).
func linearize(v0, i0, dIdV float64) (gContrib, iContrib float64) {
	gContrib = -dIdV / 2.0
	iContrib = i0 - dIdV*v0/2.0
	return
}

// NumStep advances the receptor one timestep of size dt at membrane voltage
// v, reading exactly one delivery (possibly zero) from its ring buffer at
// the given lag, and returns the linearized (g_contrib, i_contrib) pair for
// the compartment's matrix row.
func (r *Receptor) NumStep(v, dt float64, lag int) (gContrib, iContrib float64) {
	w := r.rb.GetValue(lag)

	switch r.Kind {
	case AMPA, GABA:
		g := r.main.step(dt, w)
		r.gLevel = g
		return g / 2.0, g * (r.Params.ERev - v/2.0)

	case NMDA:
		g := r.main.step(dt, w)
		r.gLevel = g
		sigma, dSigma := mgBlock(v)
		i0 := g * sigma * (r.Params.ERev - v)
		dIdV := g * (dSigma*(r.Params.ERev-v) - sigma)
		return linearize(v, i0, dIdV)

	case AMPANMDA:
		gAMPA := r.ampa.step(dt, w)
		gAMPAContrib := gAMPA / 2.0
		iAMPAContrib := gAMPA * (r.Params.ERev - v/2.0)

		gNMDA := r.Params.NMDARatio * r.main.step(dt, w)
		sigma, dSigma := mgBlock(v)
		i0 := gNMDA * sigma * (r.Params.ERev - v)
		dIdV := gNMDA * (dSigma*(r.Params.ERev-v) - sigma)
		gNMDAContrib, iNMDAContrib := linearize(v, i0, dIdV)

		r.gLevel = gAMPA + gNMDA
		return gAMPAContrib + gNMDAContrib, iAMPAContrib + iNMDAContrib

	default:
		return 0, 0
	}
}

// Recordables exposes the receptor's conductance as a live handle for host
// sampling, named e.g. "g_AMPA3". The pointer is updated in place on every
// NumStep call.
func (r *Receptor) Recordables() map[string]*float64 {
	name := fmt.Sprintf("g_%s%d", r.Kind, r.ID)
	return map[string]*float64{name: &r.gLevel}
}

// Conductance returns the combined synaptic conductance as of the last
// NumStep call — used by tests checking the double-exponential kernel's
// peak shape without running the full matrix-assembly path.
func (r *Receptor) Conductance() float64 {
	return r.gLevel
}
