package netio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oisee/shiftaddc/pkg/csd"
	"github.com/oisee/shiftaddc/pkg/matrix"
)

// ReadMatrixCSV loads a target matrix from a CSV file of numeric rows,
// the input-side counterpart of the original's numpy savetxt/loadtxt
// matrix dumps.
func ReadMatrixCSV(path string) (*matrix.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("netio: reading %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("netio: %q has no rows", path)
	}
	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, row := range records {
		if len(row) != cols {
			return nil, fmt.Errorf("netio: row %d has %d columns, want %d", i, len(row), cols)
		}
		for _, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("netio: row %d: %w", i, err)
			}
			data = append(data, v)
		}
	}
	return matrix.New(len(records), cols, data), nil
}

// ShiftDumpRow is one line of the shift-decomposition debug dump: which
// slice and factor a coefficient belongs to, and its decoded CSD shifts.
type ShiftDumpRow struct {
	SliceIdx  int
	FactorIdx int
	Shifts    []csd.Shift
}

// WriteShiftDumpCSV writes the per-coefficient CSD shift breakdown,
// matching the original's combined_data.csv layout
// (slice_idx, factor_idx, shifts) exactly, one shift list rendered as a
// semicolon-joined string per cell, each term written as its sign followed
// by its position (e.g. "+3;-1").
func WriteShiftDumpCSV(path string, rows []ShiftDumpRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"slice_idx", "factor_idx", "shifts"}); err != nil {
		return err
	}
	for _, r := range rows {
		terms := make([]string, len(r.Shifts))
		for i, sh := range r.Shifts {
			sign := "+"
			if !sh.Positive {
				sign = "-"
			}
			terms[i] = fmt.Sprintf("%s%d", sign, sh.Position)
		}
		record := []string{
			strconv.Itoa(r.SliceIdx),
			strconv.Itoa(r.FactorIdx),
			strings.Join(terms, ";"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
