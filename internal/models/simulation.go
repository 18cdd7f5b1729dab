package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SimulationStatus string

const (
	StatusPending   SimulationStatus = "pending"
	StatusRunning   SimulationStatus = "running"
	StatusCompleted SimulationStatus = "completed"
	StatusFailed    SimulationStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s SimulationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an end state.
func (s SimulationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// statusTransitions is the legal forward lifecycle. running -> running is
// allowed so workers can report progress without a state change.
var statusTransitions = map[SimulationStatus][]SimulationStatus{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusRunning, StatusCompleted, StatusFailed},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s SimulationStatus) CanTransitionTo(next SimulationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Ensemble identifiers accepted for simulation parameters.
const (
	EnsembleNPT = "NPT"
	EnsembleNVT = "NVT"
	EnsembleNVE = "NVE"
)

// ValidEnsemble reports whether e is a supported thermodynamic ensemble.
func ValidEnsemble(e string) bool {
	return e == EnsembleNPT || e == EnsembleNVT || e == EnsembleNVE
}

// SimulationParameters are the core molecular-dynamics run settings.
type SimulationParameters struct {
	Temperature float64 `json:"temperature"` // Kelvin, 0-10000
	Duration    float64 `json:"duration"`    // nanoseconds, 1-1000000
	Timestep    float64 `json:"timestep"`    // femtoseconds, (0, 10]
	Ensemble    string  `json:"ensemble"`    // NPT, NVT or NVE
}

// Equilibration is an optional pre-production phase. Stored as JSONB.
type Equilibration struct {
	Enabled     bool     `json:"enabled"`
	Time        *float64 `json:"time,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	Timestep    *float64 `json:"timestep,omitempty"`
}

func (e *Equilibration) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

func (e *Equilibration) Scan(src any) error {
	return scanJSON(src, e)
}

// SimulationResults is the output payload written by the worker. Stored as JSONB.
type SimulationResults struct {
	EnergyData    []float64 `json:"energyData"`
	TrajectoryURL string    `json:"trajectoryUrl,omitempty"`
}

func (r *SimulationResults) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *SimulationResults) Scan(src any) error {
	return scanJSON(src, r)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
}

// Simulation represents one requested unit of externally-executed work.
type Simulation struct {
	ID            string               `json:"id" db:"id"`
	AccountID     string               `json:"accountId" db:"account_id"`
	Name          string               `json:"name" db:"name"`
	Status        SimulationStatus     `json:"status" db:"status"`
	Progress      int                  `json:"progress" db:"progress"` // 0-100, meaningful while running
	Parameters    SimulationParameters `json:"parameters"`
	Equilibration *Equilibration       `json:"equilibration,omitempty" db:"equilibration"`
	PDBFile       string               `json:"pdbFile,omitempty" db:"pdb_file"`
	SDFFile       string               `json:"sdfFile,omitempty" db:"sdf_file"`
	CreditsUsed   int64                `json:"creditsUsed" db:"credits_used"` // fixed at creation
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
	CompletedAt   *time.Time           `json:"completedAt,omitempty" db:"completed_at"`
	Results       *SimulationResults   `json:"results,omitempty" db:"results"`
}
