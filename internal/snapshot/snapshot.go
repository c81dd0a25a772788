// Package snapshot reads and writes light curves as plain text matrices:
// three rows (time, flux, flux error) of space separated values, one column
// per observation, each value printed with %.18e.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// ErrMalformed is returned when a snapshot does not hold three equal rows.
var ErrMalformed = errors.New("malformed light curve snapshot")

const maxLineBytes = 64 << 20

// Write encodes lc as a 3xN text matrix.
func Write(w io.Writer, lc *models.LightCurve) error {
	bw := bufio.NewWriter(w)
	for _, row := range lc.Rows() {
		for i, v := range row {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(formatValue(v)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read decodes a 3xN text matrix. Lines starting with '#' are ignored.
func Read(r io.Reader) (*models.LightCurve, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var rows [][]float64
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(text, "#") {
			continue
		}
		if len(rows) == 3 {
			if text == "" {
				continue
			}
			return nil, fmt.Errorf("%w: more than 3 rows (line %d)", ErrMalformed, line)
		}

		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrMalformed, line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(rows) != 3 {
		return nil, fmt.Errorf("%w: got %d rows, want 3", ErrMalformed, len(rows))
	}

	lc, err := models.NewLightCurve(rows[0], rows[1], rows[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return lc, nil
}

// formatValue matches numpy's savetxt output for non-finite values so the
// files stay loadable by numpy.loadtxt.
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'e', 18, 64)
}
