package simulation

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
	"github.com/picogrid/interceptor-simulations/pkg/simulation"
)

func smallScenario(t *testing.T) map[string]interface{} {
	t.Helper()
	return map[string]interface{}{
		"num_carriers":    2,
		"num_missiles":    1,
		"max_steps":       30,
		"seed":            7,
		"output_dir":      t.TempDir(),
		"report_format":   "json",
		"log_level":       "error",
		"verbose_logging": false,
	}
}

func countCSVRows(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return len(rows) - 1
}

func TestRegistered(t *testing.T) {
	sim, err := simulation.DefaultRegistry.Get(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, sim.Name())
	assert.NotEmpty(t, sim.Description())
}

func TestRunBeforeConfigure(t *testing.T) {
	sim := newInterceptSimulation(io.Discard)
	assert.ErrorIs(t, sim.Run(context.Background()), ErrNotConfigured)
}

func TestRunWritesExportsAndReport(t *testing.T) {
	sim := newInterceptSimulation(io.Discard)
	require.NoError(t, sim.Configure(smallScenario(t)))
	require.NoError(t, sim.Run(context.Background()))

	res := sim.Result()
	require.NotNil(t, res)
	assert.Equal(t, int64(7), res.Seed)
	assert.Equal(t, 30, res.Ticks)
	assert.Equal(t, controllers.TerminationMaxSteps, res.Reason)
	assert.Len(t, res.MissDistances, 1)

	assert.Equal(t, res.Ticks*core.NumSensors, countCSVRows(t, res.MeasurementsPath))
	assert.Equal(t, res.Ticks, countCSVRows(t, res.CarriersPath))

	require.NotNil(t, res.Report)
	assert.Equal(t, res.RunID, res.Report.Metadata.RunID)
	assert.Equal(t, res.Ticks*core.NumSensors, res.Report.Detections.Records)
	assert.FileExists(t, res.ReportPath)
}

func TestSameSeedSameMeasurements(t *testing.T) {
	read := func() []byte {
		sim := newInterceptSimulation(io.Discard)
		require.NoError(t, sim.Configure(smallScenario(t)))
		require.NoError(t, sim.Run(context.Background()))
		data, err := os.ReadFile(sim.Result().MeasurementsPath)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, read(), read())
}

func TestStopBeforeRun(t *testing.T) {
	sim := newInterceptSimulation(io.Discard)
	require.NoError(t, sim.Configure(smallScenario(t)))
	require.NoError(t, sim.Stop())
	require.NoError(t, sim.Stop())

	require.NoError(t, sim.Run(context.Background()))
	res := sim.Result()
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Ticks)
	assert.Equal(t, controllers.TerminationNone, res.Reason)
}

func TestCancelledContext(t *testing.T) {
	sim := newInterceptSimulation(io.Discard)
	require.NoError(t, sim.Configure(smallScenario(t)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sim.Run(ctx), context.Canceled)
	require.NotNil(t, sim.Result())
	assert.FileExists(t, sim.Result().MeasurementsPath)
}

func TestConfigureIgnoresInvalidOverrides(t *testing.T) {
	sim := newInterceptSimulation(io.Discard)
	err := sim.Configure(map[string]interface{}{"config_file": "does-not-exist.yaml"})
	// a missing file falls back to defaults
	require.NoError(t, err)

	params := smallScenario(t)
	params["report_format"] = "pdf"
	require.NoError(t, sim.Configure(params))
	assert.Equal(t, "markdown", sim.config.Recording.ReportFormat)
	assert.Equal(t, 2, sim.config.Fleet.CarrierCount)
}
