package core

// MinMaximumHealth is the smallest maximum a Health can be given.
const MinMaximumHealth = 0.01

// Health is a damage/death primitive. Invariant: 0 <= current <= maximum.
type Health struct {
	current float64
	maximum float64

	// Damaged fires after a hit that leaves the owner alive.
	Damaged Signal[*Health]
	// Died fires once when current reaches 0.
	Died Signal[*Health]
}

// NewHealth returns a full Health with the given maximum, clamped to
// MinMaximumHealth.
func NewHealth(max float64) *Health {
	h := &Health{}
	h.SetMaximum(max, true)
	return h
}

// Current returns the current value.
func (h *Health) Current() float64 {
	return h.current
}

// Maximum returns the maximum value.
func (h *Health) Maximum() float64 {
	return h.maximum
}

// Fraction returns current/maximum in [0, 1].
func (h *Health) Fraction() float64 {
	if h.maximum <= 0 {
		return 0
	}
	return h.current / h.maximum
}

// Dead reports whether current has reached 0.
func (h *Health) Dead() bool {
	return h.current <= 0
}

// SetMaximum sets the maximum (clamped to MinMaximumHealth). With fill the
// current value is reset to the new maximum, which starts a fresh life;
// otherwise current is clamped into the new range.
func (h *Health) SetMaximum(value float64, fill bool) {
	if value < MinMaximumHealth {
		value = MinMaximumHealth
	}
	h.maximum = value

	if fill {
		h.current = h.maximum
		return
	}
	if h.current > h.maximum {
		h.current = h.maximum
	}
}

// ApplyDamage subtracts amount. It is a no-op once dead and for
// non-positive amounts. Crossing to 0 fires Died exactly once, any other
// hit fires Damaged.
func (h *Health) ApplyDamage(amount float64) {
	if h.current <= 0 || amount <= 0 {
		return
	}

	h.current -= amount
	if h.current <= 0 {
		h.current = 0
		h.Died.Emit(h)
		return
	}
	h.Damaged.Emit(h)
}
