// Package unit defines the canonical measurement units a product variant's
// quantities are expressed in, grouped into families with fixed scale factors
// to a per-family base unit. This is the only place family membership and
// base-scale constants live.
package unit

// Unit is a canonical measurement unit, stored by its code.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Count      Unit = "count"
)

// Family groups units that can be converted between each other.
type Family string

const (
	FamilyMass   Family = "mass"
	FamilyVolume Family = "volume"
	FamilyCount  Family = "count"
)

// All lists every supported unit in display order.
func All() []Unit {
	return []Unit{Gram, Kilogram, Milliliter, Liter, Count}
}

// Parse returns the Unit for a stored code. The second return is false for
// unknown codes.
func Parse(code string) (Unit, bool) {
	switch Unit(code) {
	case Gram, Kilogram, Milliliter, Liter, Count:
		return Unit(code), true
	}
	return "", false
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	_, ok := Parse(string(u))
	return ok
}

// Family returns the unit's family.
func (u Unit) Family() Family {
	switch u {
	case Gram, Kilogram:
		return FamilyMass
	case Milliliter, Liter:
		return FamilyVolume
	default:
		return FamilyCount
	}
}

// Symbol returns the short label shown next to quantities.
func (u Unit) Symbol() string {
	if u == Count {
		return "pcs"
	}
	return string(u)
}

// toFamilyBase is the scale factor to the family's base unit
// (grams, milliliters, pieces).
func (u Unit) toFamilyBase() float64 {
	switch u {
	case Kilogram, Liter:
		return 1000
	default:
		return 1
	}
}

// ConversionFactor returns the factor f such that a quantity in `from` times f
// equals the same quantity in `to`. Conversion is defined only within a
// family; for cross-family pairs the second return is false. This is a missing
// result, not an error.
func ConversionFactor(from, to Unit) (float64, bool) {
	if from.Family() != to.Family() {
		return 0, false
	}
	return from.toFamilyBase() / to.toFamilyBase(), true
}
