package domain

import (
	"errors"
	"fmt"
)

// ErrUnrecognisedLiteral is returned when a token is not part of a closed enumeration.
var ErrUnrecognisedLiteral = errors.New("unrecognised literal")

// EnergyUnit is the unit a meter read is measured in.
type EnergyUnit string

const (
	EnergyUnitKWH EnergyUnit = "KWH"
)

// ParseEnergyUnit maps a literal to an EnergyUnit. Matching is exact.
func ParseEnergyUnit(s string) (EnergyUnit, error) {
	switch EnergyUnit(s) {
	case EnergyUnitKWH:
		return EnergyUnit(s), nil
	default:
		return "", fmt.Errorf("%w: energy unit %q", ErrUnrecognisedLiteral, s)
	}
}

func (u EnergyUnit) String() string { return string(u) }

// Quality flags whether an interval volume was measured or estimated.
type Quality string

const (
	QualityActual    Quality = "A"
	QualityEstimated Quality = "E"
)

// ParseQuality maps a literal to a Quality. Matching is exact.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityActual, QualityEstimated:
		return Quality(s), nil
	default:
		return "", fmt.Errorf("%w: quality %q", ErrUnrecognisedLiteral, s)
	}
}

func (q Quality) String() string { return string(q) }
