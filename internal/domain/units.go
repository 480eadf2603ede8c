package domain

import (
	"errors"
	"fmt"
)

// Unit is the closed set of quantity units vendors and customers may use.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pcs"
)

// UnitFamily groups mutually convertible units. Cross-family conversion is
// never possible; it fails with ErrIncompatibleUnitFamily.
type UnitFamily int

const (
	FamilyUnknown UnitFamily = iota
	FamilyMass
	FamilyVolume
	FamilyCount
)

// ErrIncompatibleUnitFamily reports a conversion across unit families.
// It is an expected, recoverable outcome: the offending offer line simply
// cannot fulfill the item. It never indicates a bug.
var ErrIncompatibleUnitFamily = errors.New("incompatible unit family")

// ParseUnit validates a wire-format unit string.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece:
		return Unit(s), nil
	}
	return "", fmt.Errorf("parse unit: unknown unit %q", s)
}

func (u Unit) Family() UnitFamily {
	switch u {
	case UnitGram, UnitKilogram:
		return FamilyMass
	case UnitMilliliter, UnitLiter:
		return FamilyVolume
	case UnitPiece:
		return FamilyCount
	}
	return FamilyUnknown
}

// baseFactor is the exact multiplier into the family's base unit
// (grams, milliliters, pieces).
func (u Unit) baseFactor() float64 {
	switch u {
	case UnitKilogram, UnitLiter:
		return 1000
	default:
		return 1
	}
}

// Convert converts a quantity between units of the same family.
// The factors are exact rationals (1000 g/kg, 1000 ml/l), so round-trips are
// stable well within floating-point tolerance.
func Convert(quantity float64, from, to Unit) (float64, error) {
	if from == to {
		return quantity, nil
	}

	ff, tf := from.Family(), to.Family()
	if ff == FamilyUnknown || tf == FamilyUnknown || ff != tf {
		return 0, fmt.Errorf("convert %v to %v: %w", from, to, ErrIncompatibleUnitFamily)
	}

	return quantity * from.baseFactor() / to.baseFactor(), nil
}
