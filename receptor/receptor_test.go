package receptor

import (
	"math"
	"testing"

	"github.com/SynapticNetworks/compartsim/ringbuf"
)

func TestKernelNormPeaksAtUnity(t *testing.T) {
	tr, td := 0.2, 3.0
	rb, _ := ringbuf.New(4)
	r, err := New(0, AMPA, Params{ERev: 0, TauR: tr, TauD: td}, rb)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rb.AddValue(0, 1.0)

	dt := 0.001 // 1 microsecond-scale steps for fine peak resolution
	tp := tr * td / (td - tr) * math.Log(td/tr)
	steps := int(tp/dt) + 1

	peak := 0.0
	for i := 0; i < steps*3; i++ {
		// clamp v so the (g_contrib, i_contrib) path doesn't matter; we
		// only inspect Conductance().
		r.NumStep(-70.0, dt, 0)
		if g := r.Conductance(); g > peak {
			peak = g
		}
	}
	if math.Abs(peak-1.0) > 1e-3 {
		t.Fatalf("peak conductance = %v, want ~1.0", peak)
	}
}

func TestDefaultParamsAvoidCopyPasteBug(t *testing.T) {
	p := DefaultParams(AMPANMDA)
	if p.TauDAMPA == p.TauD {
		t.Fatalf("AMPA component of AMPA+NMDA reused the NMDA decay constant: %v", p.TauDAMPA)
	}
	if p.TauDAMPA <= 0 || p.TauDAMPA > 10 {
		t.Fatalf("AMPA decay default %v is not biologically plausible", p.TauDAMPA)
	}
}

func TestNMDAVoltageBlock(t *testing.T) {
	mkReceptor := func() *Receptor {
		rb, _ := ringbuf.New(4)
		r, _ := New(0, NMDA, DefaultParams(NMDA), rb)
		rb.AddValue(0, 1.0)
		return r
	}

	// With the default e_rev of 0 mV the driving force at a 0 mV clamp is
	// zero, so the block is compared through the blocked conductance
	// g*sigma(v) rather than through the current.
	peakBlockedConductanceAt := func(v float64) float64 {
		r := mkReceptor()
		sigma, _ := mgBlock(v)
		peak := 0.0
		dt := 0.05
		for i := 0; i < 2000; i++ {
			r.NumStep(v, dt, 0)
			if g := r.Conductance() * sigma; g > peak {
				peak = g
			}
		}
		return peak
	}

	peakDepolarized := peakBlockedConductanceAt(0.0)
	peakHyperpolarized := peakBlockedConductanceAt(-70.0)

	if peakDepolarized <= 10*peakHyperpolarized {
		t.Fatalf("NMDA block not exhibited: peak@0mV=%v peak@-70mV=%v", peakDepolarized, peakHyperpolarized)
	}
}

func TestDestructiveReadMeansNoDoubleInjection(t *testing.T) {
	rb, _ := ringbuf.New(4)
	r, _ := New(0, AMPA, DefaultParams(AMPA), rb)

	rb.AddValue(0, 1.0)
	r.NumStep(-70, 0.01, 0)
	g1 := r.main.gd

	// No new delivery at lag 0; a second step should only decay the decay
	// component g_d, not re-inject into it, since the ring buffer read was
	// destructive. The combined g_r + g_d is zero on the injection step and
	// rises on the next one, so it cannot show the difference.
	r.NumStep(-70, 0.01, 0)
	g2 := r.main.gd

	if g2 >= g1 {
		t.Fatalf("expected decay without re-injection: g1=%v g2=%v", g1, g2)
	}
}

func TestUnknownKindRejected(t *testing.T) {
	rb, _ := ringbuf.New(4)
	if _, err := New(0, Kind(99), Params{}, rb); err == nil {
		t.Fatal("expected error for unknown receptor kind")
	}
}
