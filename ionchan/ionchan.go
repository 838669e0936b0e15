/*
=================================================================================
VOLTAGE-GATED ION CHANNELS - HODGKIN-HUXLEY STYLE ACTIVE CURRENTS
=================================================================================

This file implements the voltage-gated sodium and potassium channels that
give a compartment its active, spike-generating behavior. Each channel holds
its own gating state and exposes the same linearized numerical-step contract
a receptor does, so CompartmentCurrents can sum channels and receptors
without caring which kind it is holding.

BIOLOGICAL CONTEXT:
Nav and Kv channels are the molecular basis of the action potential. Nav
channels activate rapidly on depolarization and then inactivate; Kv channels
activate more slowly and repolarize the membrane after a spike. This package
implements the textbook Hodgkin-Huxley kinetic scheme directly: alpha/beta
rate functions, m^3*h for sodium, n^4 for potassium.

NUMERICAL METHOD:
Gating variables are integrated with exponential Euler, the closed-form
solution of the linear ODE dx/dt = (x_inf(v) - x) / tau(v) over one step at
fixed v:

	x <- x_inf(v) + (x - x_inf(v)) * exp(-dt / tau(v))

This is unconditionally stable for any dt, unlike forward Euler, and matches
NEURON's hh.mod integration scheme.

=================================================================================
*/
package ionchan

import "math"

// Channel is the contract every ion channel contributor satisfies. A single
// call to NumStep folds one simulation step of gating-variable integration
// and returns the half-step Crank-Nicolson linearization CompartmentCurrents
// needs to assemble its local matrix row.
type Channel interface {
	// NumStep integrates gating variables for one step of size dt at the
	// given membrane voltage (mV) and returns the linearized conductance
	// and current contribution: the compartment's matrix row receives
	// +g on the diagonal and +i on the right-hand side.
	NumStep(v, dt float64) (g, i float64)

	// Init resets every gating variable to zero.
	Init()

	// Steady calibrates gating variables to their steady-state values at
	// the given voltage, used when a host wants the channel to start
	// already settled rather than from a cold, arbitrary initial state.
	Steady(v float64)

	// Recordables exposes named state scalars for host sampling.
	Recordables() map[string]*float64
}

// linoidRate safely evaluates a*(v-v0) / (1 - exp(-(v-v0)/k)), the "linoid"
// form that appears in the classic HH alpha_m and alpha_n rate equations.
// It has a removable singularity at v == v0 (limit value a*k, by
// L'Hopital); without this guard the rate functions produce NaN exactly at
// the gating midpoint voltage.
func linoidRate(a, v, v0, k float64) float64 {
	x := v - v0
	if math.Abs(x) < 1e-6 {
		return a * k
	}
	return a * x / (1.0 - math.Exp(-x/k))
}

// expStep advances a single gating variable one step of size dt using
// exponential Euler given its steady-state value and time constant.
func expStep(x, xInf, tau, dt float64) float64 {
	if tau <= 0 {
		return xInf
	}
	return xInf + (x-xInf)*math.Exp(-dt/tau)
}

// Na implements the Hodgkin-Huxley voltage-gated sodium channel: fast
// activation (m, power 3) and slower inactivation (h, power 1).
type Na struct {
	Gbar float64 // maximal conductance (uS or equivalent host unit)
	E    float64 // sodium reversal potential (mV)

	m, h float64
}

// NewNa constructs a sodium channel. Gbar defaults to zero (inert) unless
// the host supplies one — per spec, an unconfigured channel is silently
// inert, not an error.
func NewNa(gbar, e float64) *Na {
	n := &Na{Gbar: gbar, E: e}
	n.Init()
	return n
}

// Init resets gating to zero. Use Steady to calibrate to a voltage's
// steady-state gating values instead, if a settled rather than cold start
// is wanted.
func (n *Na) Init() {
	n.m, n.h = 0, 0
}

func naRates(v float64) (alphaM, betaM, alphaH, betaH float64) {
	alphaM = linoidRate(0.1, v, -40.0, 10.0)
	betaM = 4.0 * math.Exp(-(v + 65.0) / 18.0)

	alphaH = 0.07 * math.Exp(-(v+65.0)/20.0)
	betaH = 1.0 / (1.0 + math.Exp(-(v+35.0)/10.0))
	return
}

func (n *Na) Steady(v float64) {
	alphaM, betaM, alphaH, betaH := naRates(v)
	n.m = alphaM / (alphaM + betaM)
	n.h = alphaH / (alphaH + betaH)
}

// NumStep integrates m and h one step and returns the linearized (g, i)
// pair: g = Gbar*m^3*h, g_contrib = g/2, i_contrib = g*(E - v/2).
func (n *Na) NumStep(v, dt float64) (g, i float64) {
	alphaM, betaM, alphaH, betaH := naRates(v)

	mInf := alphaM / (alphaM + betaM)
	tauM := 1.0 / (alphaM + betaM)
	hInf := alphaH / (alphaH + betaH)
	tauH := 1.0 / (alphaH + betaH)

	n.m = expStep(n.m, mInf, tauM, dt)
	n.h = expStep(n.h, hInf, tauH, dt)

	gCur := n.Gbar * n.m * n.m * n.m * n.h
	return gCur / 2.0, gCur * (n.E - v/2.0)
}

func (n *Na) Recordables() map[string]*float64 {
	return map[string]*float64{"m": &n.m, "h": &n.h}
}

// K implements the Hodgkin-Huxley delayed-rectifier potassium channel:
// a single activation gate n, power 4.
type K struct {
	Gbar float64
	E    float64

	n float64
}

// NewK constructs a potassium channel with the given maximal conductance
// and reversal potential.
func NewK(gbar, e float64) *K {
	k := &K{Gbar: gbar, E: e}
	k.Init()
	return k
}

// Init resets gating to zero. Use Steady to calibrate to a voltage's
// steady-state gating value instead, if a settled rather than cold start
// is wanted.
func (k *K) Init() {
	k.n = 0
}

func kRates(v float64) (alphaN, betaN float64) {
	alphaN = linoidRate(0.01, v, -55.0, 10.0)
	betaN = 0.125 * math.Exp(-(v + 65.0) / 80.0)
	return
}

func (k *K) Steady(v float64) {
	alphaN, betaN := kRates(v)
	k.n = alphaN / (alphaN + betaN)
}

// NumStep integrates n one step and returns the linearized (g, i) pair:
// g = Gbar*n^4, g_contrib = g/2, i_contrib = g*(E - v/2).
func (k *K) NumStep(v, dt float64) (g, i float64) {
	alphaN, betaN := kRates(v)
	nInf := alphaN / (alphaN + betaN)
	tauN := 1.0 / (alphaN + betaN)

	k.n = expStep(k.n, nInf, tauN, dt)

	nn := k.n * k.n
	gCur := k.Gbar * nn * nn
	return gCur / 2.0, gCur * (k.E - v/2.0)
}

func (k *K) Recordables() map[string]*float64 {
	return map[string]*float64{"n": &k.n}
}
