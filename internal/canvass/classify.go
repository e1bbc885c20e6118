// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canvass reconstructs typed election-canvass rows from the
// loosely-grouped text runs a PDF layout engine emits.
package canvass

import (
	"errors"
	"fmt"
)

// ErrInvalidPrecinct reports a precinct identifier whose classification
// digit is outside the recognized set.
var ErrInvalidPrecinct = errors.New("invalid precinct identifier")

// ErrInvalidDistrict reports a precinct whose district digit is outside 1-5.
var ErrInvalidDistrict = errors.New("invalid supervisorial district")

// cityByDigit maps the leading precinct digit to the incorporated city.
// Digit '0' is the unincorporated county area and is handled separately.
var cityByDigit = map[byte]string{
	'1': "Cloverdale",
	'2': "Healdsburg",
	'3': "Sebastopol",
	'4': "Sonoma",
}

const unincorporated = "Unincorporated"

// ClassifyPrecinct derives the geographic unit encoded in a precinct
// identifier. The first digit selects the city; for unincorporated
// precincts the second digit selects the supervisorial district, falling
// back to "Unknown" when it is out of range.
func ClassifyPrecinct(precinct string) (city, district string, err error) {
	if precinct == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidPrecinct)
	}

	switch d := precinct[0]; d {
	case '0':
		district = "Unknown"
		if len(precinct) > 1 && precinct[1] >= '1' && precinct[1] <= '5' {
			district = fmt.Sprintf("District %c", precinct[1])
		}
		return unincorporated, district, nil
	default:
		city, ok := cityByDigit[d]
		if !ok {
			return "", "", fmt.Errorf("%w: %q has classification digit %q", ErrInvalidPrecinct, precinct, d)
		}
		return city, "", nil
	}
}

// DistrictOf derives the supervisorial district strictly from the second
// precinct digit. Unlike ClassifyPrecinct it does not tolerate
// out-of-range digits.
func DistrictOf(precinct string) (string, error) {
	if len(precinct) < 2 || precinct[1] < '1' || precinct[1] > '5' {
		return "", fmt.Errorf("%w: %q", ErrInvalidDistrict, precinct)
	}
	return fmt.Sprintf("District %c", precinct[1]), nil
}
