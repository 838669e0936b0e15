package compartment

import (
	"testing"

	"github.com/SynapticNetworks/compartsim/ionchan"
	"github.com/SynapticNetworks/compartsim/receptor"
	"github.com/SynapticNetworks/compartsim/ringbuf"
)

func TestEmptyCurrentsAreZero(t *testing.T) {
	c := NewCurrents()
	g, i := c.NumStep(-70, 0.1, 0)
	if g != 0 || i != 0 {
		t.Fatalf("empty Currents should contribute nothing, got g=%v i=%v", g, i)
	}
}

func TestAddSynapseAndRecordables(t *testing.T) {
	c := NewCurrents()
	rb, _ := ringbuf.New(4)
	if err := c.AddSynapse(5, receptor.AMPA, receptor.DefaultParams(receptor.AMPA), rb); err != nil {
		t.Fatalf("AddSynapse: %v", err)
	}
	rec := c.Recordables(2)
	if _, ok := rec["g_AMPA5"]; !ok {
		t.Fatalf("expected g_AMPA5 recordable, got keys %v", keys(rec))
	}
}

func TestNaAndKRecordablesNamedByCompartmentIndex(t *testing.T) {
	c := NewCurrents()
	c.SetNa(ionchan.NewNa(0.12, 50))
	c.SetK(ionchan.NewK(0.036, -77))
	rec := c.Recordables(3)
	for _, want := range []string{"m_Na3", "h_Na3", "n_K3"} {
		if _, ok := rec[want]; !ok {
			t.Fatalf("missing recordable %q, got keys %v", want, keys(rec))
		}
	}
}

func TestInitPropagatesToChannelsAndReceptors(t *testing.T) {
	c := NewCurrents()
	c.SetNa(ionchan.NewNa(0.12, 50))
	rb, _ := ringbuf.New(4)
	_ = c.AddSynapse(0, receptor.AMPA, receptor.DefaultParams(receptor.AMPA), rb)

	rb.AddValue(0, 1.0)
	c.NumStep(-70, 0.01, 0)

	c.Init()
	g, _ := c.NumStep(-65, 0.01, 1)
	// After Init, Na gating is zeroed and the receptor kernel is empty, so
	// the first post-Init step contributes exactly what the first step of a
	// freshly built bundle does: NumStep moves m and h one step away from
	// zero before forming m^3*h, and no stale receptor state is left over
	// from before Init.
	fresh := NewCurrents()
	fresh.SetNa(ionchan.NewNa(0.12, 50))
	freshRB, _ := ringbuf.New(4)
	_ = fresh.AddSynapse(0, receptor.AMPA, receptor.DefaultParams(receptor.AMPA), freshRB)
	want, _ := fresh.NumStep(-65, 0.01, 1)
	if g != want {
		t.Fatalf("expected post-Init conductance %v (same as a fresh bundle), got %v", want, g)
	}
}

func keys(m map[string]*float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
