// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"errors"
	"fmt"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// resultFieldCount is the arity of a fully-reported canvass row:
// precinct, method, registered, cast, turnout, and the four measure counts.
const resultFieldCount = 9

// ErrFieldCount reports a candidate group that reached the assembler with
// the wrong number of fields.
var ErrFieldCount = errors.New("wrong field count")

// AssembleResult converts an ordered list of raw string fields into a
// typed canvass row. Count fields parse permissively: unparseable content
// becomes a null Count, mirroring downstream tolerance for unreported
// columns. Classification failures propagate.
func AssembleResult(fields []string) (types.Result, error) {
	if len(fields) != resultFieldCount {
		return types.Result{}, fmt.Errorf("%w: got %d fields, want %d", ErrFieldCount, len(fields), resultFieldCount)
	}

	city, district, err := ClassifyPrecinct(fields[0])
	if err != nil {
		return types.Result{}, err
	}

	return types.Result{
		Precinct:    fields[0],
		City:        city,
		District:    district,
		Method:      types.Method(fields[1]),
		Registered:  types.ParseCount(fields[2]),
		Cast:        types.ParseCount(fields[3]),
		TurnoutPct:  fields[4],
		MeasureCYes: types.ParseCount(fields[5]),
		MeasureCNo:  types.ParseCount(fields[6]),
		MeasureDYes: types.ParseCount(fields[7]),
		MeasureDNo:  types.ParseCount(fields[8]),
	}, nil
}
