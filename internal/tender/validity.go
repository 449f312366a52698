package tender

import (
	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
)

// Validator decides which remote summaries may be stored
type Validator struct {
	normalizer *Normalizer
	clock      clock.PassiveClock
}

// NewValidator creates a Validator. A nil clock means the real one.
func NewValidator(normalizer *Normalizer, clk clock.PassiveClock) *Validator {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Validator{normalizer: normalizer, clock: clk}
}

// IsValid reports whether t is published and closes strictly after now.
// A missing or unparsable close date disqualifies the record.
func (v *Validator) IsValid(t *mercadopublico.Tender) bool {
	status, ok := t.Status()
	if !ok || status != StatusPublished {
		return false
	}
	closeDate, ok := v.normalizer.CloseDate(t)
	if !ok {
		return false
	}
	return closeDate.After(v.clock.Now())
}

// FilterEligible returns the valid records of all, in order
func (v *Validator) FilterEligible(all []mercadopublico.Tender) []mercadopublico.Tender {
	eligible := make([]mercadopublico.Tender, 0, len(all))
	for i := range all {
		if v.IsValid(&all[i]) {
			eligible = append(eligible, all[i])
		}
	}
	return eligible
}
