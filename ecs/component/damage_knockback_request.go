package component

// DamageKnockback is a transient component requesting the DamageKnockback
// system apply damage and an impulse to the entity. The system removes it
// once handled.
type DamageKnockback struct {
	SourceX  float64
	SourceY  float64
	Damage   float64
	Duration float64
	Strong   bool
}

var DamageKnockbackRequestComponent = NewComponent[DamageKnockback]()
