package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/lightcurve/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "lightcurve", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"analyze", "serve", "migrate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)

	envFlag := cmd.PersistentFlags().Lookup("env")
	require.NotNil(t, envFlag)
	assert.Equal(t, "dev", envFlag.DefValue)
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	analyzeCmd, _, err := cmd.Find([]string{"analyze"})
	require.NoError(t, err)

	for _, name := range []string{"dataset", "target", "threshold", "peaks", "exclusion-width", "format", "db", "full"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), name)
	}
	outputFlag := analyzeCmd.Flags().Lookup("output-dir")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{
			Target: "TIC355151781", Threshold: 60000, Peaks: 2, ExclusionWidth: 0.2,
			SamplesPerPeak: 10, NyquistFactor: 2, ZoomHalfWidth: 100,
		},
		Output: config.OutputConfig{
			SnapshotDir: "snap", OutputDir: "figs",
			RawPlot: "a.eps", CleanPlot: "b.eps", PeriodogramPlot: "c.eps", FoldPlot: "d.eps",
			Format: "png",
		},
	}

	opts := analyzerOptions(cfg)

	assert.Equal(t, "TIC355151781", opts.Target)
	assert.Equal(t, 60000.0, opts.Threshold)
	assert.Equal(t, 2, opts.Selection.Count)
	assert.Equal(t, 0.2, opts.Selection.ExclusionWidth)
	assert.Equal(t, 10.0, opts.Grid.SamplesPerPeak)
	assert.Equal(t, 2.0, opts.Grid.NyquistFactor)
	assert.Equal(t, 100, opts.ZoomHalfWidth)
	assert.Equal(t, "snap", opts.SnapshotDir)
	assert.Equal(t, "figs", opts.OutputDir)
	assert.Equal(t, "a.png", opts.Plots.Raw)
	assert.Equal(t, "d.png", opts.Plots.Folds)
}

func TestPrintPeriods(t *testing.T) {
	var buf bytes.Buffer
	printPeriods(&buf, []float64{1.5753, 0.787, 3.15})
	assert.Equal(t, "Periods found: [1.5753 0.787 3.15]\n", buf.String())
}

func TestPrintPairs(t *testing.T) {
	t.Run("short fold prints every row", func(t *testing.T) {
		var buf bytes.Buffer
		printPairs(&buf, []float64{0.1, 0.2}, []float64{0.99, 1}, false)
		assert.Equal(t, "[[0.1 0.99]\n [0.2 1]]\n", buf.String())
	})

	t.Run("long fold is summarized", func(t *testing.T) {
		n := summaryThreshold + 1
		phase := make([]float64, n)
		flux := make([]float64, n)
		for i := range phase {
			phase[i] = float64(i)
			flux[i] = 1
		}

		var buf bytes.Buffer
		printPairs(&buf, phase, flux, false)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

		require.Len(t, lines, 2*edgeItems+1)
		assert.Equal(t, "[[0 1]", lines[0])
		assert.Equal(t, " ...", lines[edgeItems])
		assert.Equal(t, " [1000 1]]", lines[len(lines)-1])
	})

	t.Run("full flag disables the summary", func(t *testing.T) {
		n := summaryThreshold + 1
		phase := make([]float64, n)
		flux := make([]float64, n)

		var buf bytes.Buffer
		printPairs(&buf, phase, flux, true)
		assert.Equal(t, n, strings.Count(buf.String(), "\n"))
	})

	t.Run("empty fold", func(t *testing.T) {
		var buf bytes.Buffer
		printPairs(&buf, nil, nil, false)
		assert.Equal(t, "[]\n", buf.String())
	})
}

func TestAnalyzeCommand_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", filepath.Join(dir, "missing.fits"), "--output-dir", dir, "--snapshot-dir", dir})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnalyzeCommand_TextDataset(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "curve.dat")

	// three rows of the snapshot matrix: time, flux, flux error
	var tm, flux, ferr []string
	for i := 0; i < 400; i++ {
		x := float64(i) * 0.05
		tm = append(tm, strconv.FormatFloat(x, 'g', -1, 64))
		flux = append(flux, strconv.FormatFloat(63000+500*math.Sin(x), 'g', -1, 64))
		ferr = append(ferr, "10")
	}
	content := strings.Join(tm, " ") + "\n" + strings.Join(flux, " ") + "\n" + strings.Join(ferr, " ") + "\n"
	require.NoError(t, os.WriteFile(dataset, []byte(content), 0644))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"analyze", dataset, "-o", dir, "--snapshot-dir", dir, "--format", "svg", "--db", "sqlite://" + filepath.Join(dir, "runs.db")})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Periods found: [")
	assert.Contains(t, out.String(), "Folded at ")
	for _, name := range []string{"exit_0.svg", "exit_1.svg", "exit_2.svg", "exit_3.svg", "normalized_data.dat"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(dir, "runs.db"))
}
