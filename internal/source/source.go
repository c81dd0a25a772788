// Package source loads the time, flux and flux error channels of a light
// curve from a table file. The file is closed as soon as the channels have
// been extracted.
package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RMahshie/lightcurve/internal/snapshot"
	"github.com/RMahshie/lightcurve/pkg/models"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("required column missing")
	// ErrNoTable is returned when a FITS file holds no binary table.
	ErrNoTable = errors.New("no table HDU found")
	// ErrUnsupportedFormat is returned for files that are neither FITS nor text matrices.
	ErrUnsupportedFormat = errors.New("unsupported light curve format")
)

// Format identifies a table file format.
type Format string

const (
	FormatFITS Format = "fits"
	FormatText Format = "text"
)

// Columns names the table columns holding each channel.
type Columns struct {
	Time    string
	Flux    string
	FluxErr string
}

// DefaultColumns returns the TESS light curve column names.
func DefaultColumns() Columns {
	return Columns{Time: "TIME", Flux: "SAP_FLUX", FluxErr: "SAP_FLUX_ERR"}
}

// fitsMagic is the start of every FITS primary header.
var fitsMagic = []byte("SIMPLE  =")

// LoadFile reads the light curve stored at path.
func LoadFile(path string, cols Columns) (*models.LightCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open light curve: %w", err)
	}
	defer f.Close()

	lc, err := Read(f, filepath.Base(path), cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lc, nil
}

// Read decodes a light curve from r. name is used to detect compression and
// format; when the extension is not recognized the content is sniffed.
func Read(r io.Reader, name string, cols Columns) (*models.LightCurve, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
		lower = strings.TrimSuffix(lower, ".gz")
	}

	br := bufio.NewReader(r)
	format, err := detect(br, lower)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatFITS:
		return ReadFITS(br, cols)
	default:
		return snapshot.Read(br)
	}
}

func detect(br *bufio.Reader, name string) (Format, error) {
	switch filepath.Ext(name) {
	case ".fits", ".fit", ".fts":
		return FormatFITS, nil
	case ".dat", ".txt":
		return FormatText, nil
	}

	head, err := br.Peek(len(fitsMagic))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("failed to read light curve header: %w", err)
	}
	if bytes.Equal(head, fitsMagic) {
		return FormatFITS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}
