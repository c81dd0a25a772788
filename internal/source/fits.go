package source

import (
	"fmt"
	"io"
	"math"

	"github.com/astrogo/fitsio"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// ReadFITS extracts the three channels from the first binary table that
// carries the time column.
func ReadFITS(r io.Reader, cols Columns) (*models.LightCurve, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open FITS stream: %w", err)
	}
	defer f.Close()

	table, err := findTable(f, cols)
	if err != nil {
		return nil, err
	}

	n := table.NumRows()
	rows, err := table.Read(0, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", table.Name(), err)
	}
	defer rows.Close()

	time := make([]float64, 0, n)
	flux := make([]float64, 0, n)
	fluxErr := make([]float64, 0, n)
	for rows.Next() {
		row := map[string]interface{}{cols.Time: nil, cols.Flux: nil, cols.FluxErr: nil}
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(time), err)
		}

		t, err := toFloat(row[cols.Time])
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", len(time), cols.Time, err)
		}
		y, err := toFloat(row[cols.Flux])
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", len(time), cols.Flux, err)
		}
		e, err := toFloat(row[cols.FluxErr])
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", len(time), cols.FluxErr, err)
		}

		time = append(time, t)
		flux = append(flux, y)
		fluxErr = append(fluxErr, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate table %q: %w", table.Name(), err)
	}

	return models.NewLightCurve(time, flux, fluxErr)
}

func findTable(f *fitsio.File, cols Columns) (*fitsio.Table, error) {
	for _, hdu := range f.HDUs() {
		table, ok := hdu.(*fitsio.Table)
		if !ok || table.Index(cols.Time) < 0 {
			continue
		}
		for _, name := range []string{cols.Flux, cols.FluxErr} {
			if table.Index(name) < 0 {
				return nil, fmt.Errorf("%w: %s in table %q", ErrMissingColumn, name, table.Name())
			}
		}
		return table, nil
	}
	return nil, fmt.Errorf("%w with column %s", ErrNoTable, cols.Time)
}

// toFloat converts a scanned FITS cell to float64. TESS tables store TIME as
// double and the flux channels as single precision.
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case nil:
		return math.NaN(), nil
	}
	return 0, fmt.Errorf("unsupported cell type %T", v)
}
