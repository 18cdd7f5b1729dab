package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulationStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusRunning.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, SimulationStatus("archived").Valid())
	assert.False(t, SimulationStatus("").Valid())
}

func TestSimulationStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestSimulationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    SimulationStatus
		to      SimulationStatus
		allowed bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusRunning, StatusRunning, true},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusPending, false},
		{StatusCompleted, StatusRunning, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusRunning, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestValidEnsemble(t *testing.T) {
	assert.True(t, ValidEnsemble(EnsembleNPT))
	assert.True(t, ValidEnsemble(EnsembleNVT))
	assert.True(t, ValidEnsemble(EnsembleNVE))
	assert.False(t, ValidEnsemble("npt"))
	assert.False(t, ValidEnsemble("NPH"))
	assert.False(t, ValidEnsemble(""))
}

func TestEquilibration_ValueAndScan(t *testing.T) {
	t.Run("nil pointer stores NULL", func(t *testing.T) {
		var e *Equilibration
		v, err := e.Value()
		assert.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("round trip", func(t *testing.T) {
		duration := 5.0
		e := &Equilibration{Enabled: true, Time: &duration}
		v, err := e.Value()
		assert.NoError(t, err)

		var decoded Equilibration
		assert.NoError(t, decoded.Scan(v))
		assert.True(t, decoded.Enabled)
		assert.NotNil(t, decoded.Time)
		assert.Equal(t, 5.0, *decoded.Time)
	})

	t.Run("scan nil is a no-op", func(t *testing.T) {
		var decoded Equilibration
		assert.NoError(t, decoded.Scan(nil))
		assert.False(t, decoded.Enabled)
	})
}

func TestSimulationResults_ValueAndScan(t *testing.T) {
	t.Run("nil pointer stores NULL", func(t *testing.T) {
		var r *SimulationResults
		v, err := r.Value()
		assert.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan from string source", func(t *testing.T) {
		var decoded SimulationResults
		assert.NoError(t, decoded.Scan(`{"energyData":[-1043.2,-1044.8],"trajectoryUrl":"s3://runs/sim1.dcd"}`))
		assert.Equal(t, []float64{-1043.2, -1044.8}, decoded.EnergyData)
		assert.Equal(t, "s3://runs/sim1.dcd", decoded.TrajectoryURL)
	})

	t.Run("unsupported source type", func(t *testing.T) {
		var decoded SimulationResults
		assert.Error(t, decoded.Scan(42))
	})
}
