// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arrowio serializes measure frames as Arrow IPC files.
package arrowio

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/mtorrado/canvass-etl/internal/canvass"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

// frameSchema is the column layout of a measure frame file. Count columns
// are nullable int64: a null cell means the precinct had not reported,
// which is distinct from an explicit zero. The percentage columns are
// plain float64 and carry NaN for undefined ratios.
var frameSchema = arrow.NewSchema([]arrow.Field{
	{Name: "precinct", Type: arrow.BinaryTypes.String},
	{Name: "city", Type: arrow.BinaryTypes.String},
	{Name: "district", Type: arrow.BinaryTypes.String},
	{Name: "registered_voters", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "ballots_cast", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "election_day_yes", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "election_day_no", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "vote_by_mail_yes", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "vote_by_mail_no", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "total_yes", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "total_no", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "pct_yes", Type: arrow.PrimitiveTypes.Float64},
	{Name: "pct_no", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteFrame writes one measure frame to path as an Arrow IPC file.
// Rows are emitted in precinct order so repeated runs produce identical
// files.
func WriteFrame(path string, frame canvass.Frame) error {
	b := array.NewRecordBuilder(memory.DefaultAllocator, frameSchema)
	defer b.Release()

	for _, row := range frame.Rows() {
		b.Field(0).(*array.StringBuilder).Append(row.Precinct)
		b.Field(1).(*array.StringBuilder).Append(row.City)
		b.Field(2).(*array.StringBuilder).Append(row.District)
		appendCount(b.Field(3).(*array.Int64Builder), row.Registered)
		appendCount(b.Field(4).(*array.Int64Builder), row.Cast)
		appendCount(b.Field(5).(*array.Int64Builder), row.ElectionDayYes)
		appendCount(b.Field(6).(*array.Int64Builder), row.ElectionDayNo)
		appendCount(b.Field(7).(*array.Int64Builder), row.VoteByMailYes)
		appendCount(b.Field(8).(*array.Int64Builder), row.VoteByMailNo)
		appendCount(b.Field(9).(*array.Int64Builder), row.TotalYes)
		appendCount(b.Field(10).(*array.Int64Builder), row.TotalNo)
		b.Field(11).(*array.Float64Builder).Append(row.PctYes)
		b.Field(12).(*array.Float64Builder).Append(row.PctNo)
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(frameSchema))
	if err != nil {
		return fmt.Errorf("opening arrow writer for %s: %w", path, err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("writing frame to %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

func appendCount(b *array.Int64Builder, c types.Count) {
	if !c.Valid {
		b.AppendNull()
		return
	}
	b.Append(c.Value)
}
