/*
=================================================================================
CONFIG - JSON CONFIGURATION BUNDLE AND LIVE-NODE BUILDER
=================================================================================

Bundle is the over-the-wire representation of a neuron's configuration: a
threshold, a list of compartments naming their parent by stable id, and a
list of receptors naming their target compartment. Load parses it from any
io.Reader with encoding/json; Build turns a validated Bundle into a live
*node.Node.

=================================================================================
*/
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/SynapticNetworks/compartsim/comptree"
	"github.com/SynapticNetworks/compartsim/ionchan"
	"github.com/SynapticNetworks/compartsim/node"
	"github.com/SynapticNetworks/compartsim/receptor"
	"github.com/SynapticNetworks/compartsim/ringbuf"
	"github.com/SynapticNetworks/compartsim/simerrors"
)

// CompartmentConfig describes one compartment.
type CompartmentConfig struct {
	CompIdx   int     `json:"comp_idx"`
	ParentIdx int     `json:"parent_idx"`
	Cm        float64 `json:"c_m"`
	Gc        float64 `json:"g_c"`
	GL        float64 `json:"g_l"`
	EL        float64 `json:"e_l"`

	// NaGbar/NaE and KGbar/KE are zero by default, which leaves the
	// channel absent rather than present-but-inert.
	NaGbar float64 `json:"na_gbar,omitempty"`
	NaE    float64 `json:"na_e,omitempty"`
	KGbar  float64 `json:"k_gbar,omitempty"`
	KE     float64 `json:"k_e,omitempty"`
}

// ReceptorConfig describes one receptor. Params fields left absent (nil)
// fall back to receptor.DefaultParams(Type); a present field overrides the
// default even when its value is the zero value.
type ReceptorConfig struct {
	CompIdx      int      `json:"comp_idx"`
	ReceptorType string   `json:"receptor_type"`
	ERev         *float64 `json:"e_rev,omitempty"`
	TauR         *float64 `json:"tau_r,omitempty"`
	TauD         *float64 `json:"tau_d,omitempty"`
	NMDARatio    *float64 `json:"nmda_ratio,omitempty"`
	TauRAMPA     *float64 `json:"tau_r_ampa,omitempty"`
	TauDAMPA     *float64 `json:"tau_d_ampa,omitempty"`
}

// Bundle is the full configuration for one neuron.
type Bundle struct {
	VTh            float64             `json:"v_th"`
	DtMs           float64             `json:"dt_ms"`
	BufferCapacity int                 `json:"buffer_capacity"`
	Compartments   []CompartmentConfig `json:"compartments"`
	Receptors      []ReceptorConfig    `json:"receptors"`
}

// Load parses a Bundle from JSON.
func Load(r io.Reader) (*Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &b, nil
}

func parseKind(s string) (receptor.Kind, error) {
	switch s {
	case "AMPA":
		return receptor.AMPA, nil
	case "GABA":
		return receptor.GABA, nil
	case "NMDA":
		return receptor.NMDA, nil
	case "AMPA_NMDA":
		return receptor.AMPANMDA, nil
	default:
		return 0, fmt.Errorf("%w: unknown receptor_type %q", simerrors.ErrConfiguration, s)
	}
}

// resolveParams starts from kind's documented defaults and overrides each
// field whose ReceptorConfig pointer is present, even when it points at the
// zero value — nil, not zero, means "use the default".
func resolveParams(kind receptor.Kind, rc ReceptorConfig) receptor.Params {
	params := receptor.DefaultParams(kind)
	if rc.ERev != nil {
		params.ERev = *rc.ERev
	}
	if rc.TauR != nil {
		params.TauR = *rc.TauR
	}
	if rc.TauD != nil {
		params.TauD = *rc.TauD
	}
	if rc.NMDARatio != nil {
		params.NMDARatio = *rc.NMDARatio
	}
	if rc.TauRAMPA != nil {
		params.TauRAMPA = *rc.TauRAMPA
	}
	if rc.TauDAMPA != nil {
		params.TauDAMPA = *rc.TauDAMPA
	}
	return params
}

// Build validates the bundle and constructs a live, initialized *node.Node.
// Compartments are added in the order they appear in b.Compartments; the
// first entry must be the root (parent_idx -1), matching comptree.Tree's
// own construction contract.
func (b *Bundle) Build() (*node.Node, error) {
	if b.DtMs <= 0 {
		return nil, fmt.Errorf("config: %w: dt_ms must be positive, got %v", simerrors.ErrConfiguration, b.DtMs)
	}
	bufCap := b.BufferCapacity
	if bufCap <= 0 {
		bufCap = 1
	}

	tree := comptree.New(b.VTh)
	for _, cc := range b.Compartments {
		if err := tree.AddCompartment(cc.CompIdx, cc.ParentIdx, cc.Cm, cc.Gc, cc.GL, cc.EL, bufCap); err != nil {
			return nil, fmt.Errorf("config: compartment %d: %w", cc.CompIdx, err)
		}
		c, _ := tree.Compartment(cc.CompIdx)
		if cc.NaGbar > 0 {
			c.Currents.SetNa(ionchan.NewNa(cc.NaGbar, cc.NaE))
		}
		if cc.KGbar > 0 {
			c.Currents.SetK(ionchan.NewK(cc.KGbar, cc.KE))
		}
	}

	receptorBufs := make(map[int]*ringbuf.RingBuffer, len(b.Receptors))
	for _, rc := range b.Receptors {
		kind, err := parseKind(rc.ReceptorType)
		if err != nil {
			return nil, fmt.Errorf("config: receptor on compartment %d: %w", rc.CompIdx, err)
		}
		params := resolveParams(kind, rc)

		id, rb, err := tree.AddReceptor(rc.CompIdx, kind, params, bufCap)
		if err != nil {
			return nil, fmt.Errorf("config: receptor on compartment %d: %w", rc.CompIdx, err)
		}
		receptorBufs[id] = rb
	}

	n, err := node.New(tree, b.DtMs, receptorBufs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	n.Init()
	return n, nil
}
