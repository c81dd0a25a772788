package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// DefaultNames maps cleaning stages to their snapshot file names.
func DefaultNames() map[string]string {
	return map[string]string{
		"raw":        "light_curve.dat",
		"filtered":   "light_curve_filtered.dat",
		"no_outlier": "light_curve_no_outlier.dat",
		"normalized": "normalized_data.dat",
	}
}

// Dir writes one snapshot file per stage into a directory, overwriting the
// previous run's files.
type Dir struct {
	Path  string
	Names map[string]string
}

// NewDir creates a directory snapshot writer. Nil names selects DefaultNames.
func NewDir(path string, names map[string]string) *Dir {
	if names == nil {
		names = DefaultNames()
	}
	return &Dir{Path: path, Names: names}
}

// FilePath returns the file a stage is written to.
func (d *Dir) FilePath(stage string) string {
	name, ok := d.Names[stage]
	if !ok {
		name = stage + ".dat"
	}
	return filepath.Join(d.Path, name)
}

// WriteSnapshot implements cleaning.SnapshotWriter.
func (d *Dir) WriteSnapshot(stage string, lc *models.LightCurve) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	f, err := os.Create(d.FilePath(stage))
	if err != nil {
		return err
	}
	if err := Write(f, lc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
