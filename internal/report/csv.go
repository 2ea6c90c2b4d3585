package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// WriteCurveCSV writes a light curve as one row per time sample:
// time, then one relative-flux column per body.
func WriteCurveCSV(path string, times []float64, curve mat.Matrix, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeCurveCSV(f, times, curve, names)
}

func EncodeCurveCSV(out io.Writer, times []float64, curve mat.Matrix, names []string) error {
	rows, cols := curve.Dims()
	if cols != len(times) {
		return fmt.Errorf("curve has %d samples, time grid has %d", cols, len(times))
	}

	w := csv.NewWriter(out)
	header := make([]string, 0, rows+1)
	header = append(header, "time")
	for n := 0; n < rows; n++ {
		header = append(header, columnName(names, n))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rec := make([]string, rows+1)
	for i, t := range times {
		rec[0] = fmtFloat(t)
		for n := 0; n < rows; n++ {
			rec[n+1] = fmtFloat(curve.At(n, i))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func columnName(names []string, n int) string {
	if n < len(names) && names[n] != "" {
		return names[n]
	}
	return "body_" + strconv.Itoa(n)
}

// Full precision so the CSV round-trips exactly.
func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
