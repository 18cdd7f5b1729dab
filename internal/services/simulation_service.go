package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/molsimcloud/backend/internal/models"
)

const maxStructureFileBytes = 5 * 1024 * 1024 // encoded string length

// SimulationService is the job registry. Creation debits the owning account
// and inserts the job as one transaction; every mutation appends an audit
// entry in the same transaction as its primary effect.
type SimulationService struct {
	db     *sql.DB
	ledger *CreditLedgerService
	audit  *AuditService
}

func NewSimulationService(db *sql.DB) *SimulationService {
	return &SimulationService{
		db:     db,
		ledger: NewCreditLedgerService(db),
		audit:  NewAuditService(),
	}
}

// CreateSimulationRequest carries the user-supplied job definition.
type CreateSimulationRequest struct {
	Name          string                      `json:"name"`
	Parameters    models.SimulationParameters `json:"parameters"`
	Equilibration *models.Equilibration       `json:"equilibration,omitempty"`
	PDBFile       string                      `json:"pdbFile,omitempty"`
	SDFFile       string                      `json:"sdfFile,omitempty"`
	CreditsUsed   int64                       `json:"creditsUsed"`
}

// validateCreate applies the creation preconditions in a fixed order; the
// first violation wins and nothing is written before all checks pass.
func validateCreate(req *CreateSimulationRequest) error {
	if req.Name == "" || len(req.Name) > 255 {
		return invalidField("name", "Invalid simulation name")
	}
	if req.CreditsUsed <= 0 {
		return invalidField("creditsUsed", "Invalid credits amount")
	}
	p := req.Parameters
	if p.Temperature < 0 || p.Temperature > 10_000 {
		return invalidField("parameters.temperature", "Temperature out of valid range (0-10000)")
	}
	if p.Duration < 1 || p.Duration > 1_000_000 {
		return invalidField("parameters.duration", "Duration out of valid range (1-1000000)")
	}
	if p.Timestep <= 0 || p.Timestep > 10 {
		return invalidField("parameters.timestep", "Timestep out of valid range (0-10)")
	}
	if !models.ValidEnsemble(p.Ensemble) {
		return invalidField("parameters.ensemble", "Invalid ensemble type")
	}
	if len(req.PDBFile) > maxStructureFileBytes {
		return invalidField("pdbFile", "PDB file too large (max 5MB)")
	}
	if len(req.SDFFile) > maxStructureFileBytes {
		return invalidField("sdfFile", "SDF file too large (max 5MB)")
	}
	return nil
}

// CreateSimulation validates the request, debits the account and inserts the
// job with status pending. The debit, the job row and the audit entry commit
// as a single unit; any failure leaves no trace of the attempt.
func (s *SimulationService) CreateSimulation(ctx context.Context, accountID string, req *CreateSimulationRequest) (string, error) {
	if accountID == "" {
		return "", ErrUnauthenticated
	}
	if err := validateCreate(req); err != nil {
		return "", err
	}

	simulationID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := s.ledger.DebitTx(tx, accountID, simulationID, req.CreditsUsed); err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO simulations (id, account_id, name, status, progress,
			temperature, duration, timestep, ensemble,
			equilibration, pdb_file, sdf_file, credits_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		simulationID, accountID, req.Name, models.StatusPending, 0,
		req.Parameters.Temperature, req.Parameters.Duration, req.Parameters.Timestep, req.Parameters.Ensemble,
		req.Equilibration, nullIfEmpty(req.PDBFile), nullIfEmpty(req.SDFFile), req.CreditsUsed, time.Now())
	if err != nil {
		return "", err
	}

	err = s.audit.RecordTx(tx, &models.AuditEntry{
		AccountID:  accountID,
		Action:     "createSimulation",
		Resource:   "simulations",
		ResourceID: simulationID,
		Status:     models.AuditSuccess,
		Details:    map[string]any{"creditsUsed": req.CreditsUsed, "simulationName": req.Name},
	})
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Printf("[SIMULATION] Created %s for account %s (%d credits)", simulationID, accountID, req.CreditsUsed)
	return simulationID, nil
}

// GetSimulation returns the job if it exists and the caller owns it.
// Ownership mismatch is reported as forbidden, not as extra detail.
func (s *SimulationService) GetSimulation(ctx context.Context, accountID, simulationID string) (*models.Simulation, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}

	sim, err := s.fetchSimulation(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	if sim.AccountID != accountID {
		return nil, ErrForbidden
	}
	return sim, nil
}

// ListSimulations returns the caller's jobs, most recently created first.
func (s *SimulationService) ListSimulations(ctx context.Context, accountID string) ([]models.Simulation, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, name, status, progress,
			temperature, duration, timestep, ensemble,
			equilibration, COALESCE(pdb_file, ''), COALESCE(sdf_file, ''),
			credits_used, created_at, completed_at, results
		FROM simulations
		WHERE account_id = $1
		ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	simulations := []models.Simulation{}
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		simulations = append(simulations, *sim)
	}

	return simulations, rows.Err()
}

// UpdateStatusRequest is the worker-facing status report.
type UpdateStatusRequest struct {
	Status   models.SimulationStatus   `json:"status"`
	Progress *int                      `json:"progress,omitempty"`
	Results  *models.SimulationResults `json:"results,omitempty"`
}

// UpdateStatus applies a worker status report. Transitions follow the job
// lifecycle (pending -> running -> completed/failed); terminal transitions
// stamp the completion time. Charged credits are not refunded on failure.
func (s *SimulationService) UpdateStatus(ctx context.Context, simulationID string, req *UpdateStatusRequest) error {
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return invalidField("progress", "Progress must be between 0 and 100")
	}
	if !req.Status.Valid() {
		return invalidField("status", "Invalid status value")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accountID string
	var current models.SimulationStatus
	err = tx.QueryRowContext(ctx, `
		SELECT account_id, status FROM simulations WHERE id = $1 FOR UPDATE`,
		simulationID).Scan(&accountID, &current)
	if err == sql.ErrNoRows {
		return ErrSimulationNotFound
	}
	if err != nil {
		return err
	}

	if !current.CanTransitionTo(req.Status) {
		return ErrInvalidTransition
	}

	var progress any
	if req.Progress != nil {
		progress = *req.Progress
	}
	var completedAt any
	if req.Status.Terminal() {
		completedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE simulations
		SET status = $1,
			progress = COALESCE($2, progress),
			results = COALESCE($3, results),
			completed_at = COALESCE($4, completed_at)
		WHERE id = $5`,
		req.Status, progress, req.Results, completedAt, simulationID)
	if err != nil {
		return err
	}

	err = s.audit.RecordTx(tx, &models.AuditEntry{
		AccountID:  accountID,
		Action:     "updateSimulationStatus",
		Resource:   "simulations",
		ResourceID: simulationID,
		Status:     models.AuditSuccess,
		Details:    map[string]any{"newStatus": req.Status, "progress": req.Progress},
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSimulation removes a job the caller owns. The charged credits stay
// spent; deletion is not a refund path.
func (s *SimulationService) DeleteSimulation(ctx context.Context, accountID, simulationID string) error {
	if accountID == "" {
		return ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx, `
		SELECT account_id FROM simulations WHERE id = $1 FOR UPDATE`,
		simulationID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return ErrSimulationNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != accountID {
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM simulations WHERE id = $1`, simulationID); err != nil {
		return err
	}

	err = s.audit.RecordTx(tx, &models.AuditEntry{
		AccountID:  accountID,
		Action:     "deleteSimulation",
		Resource:   "simulations",
		ResourceID: simulationID,
		Status:     models.AuditSuccess,
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SimulationService) fetchSimulation(ctx context.Context, simulationID string) (*models.Simulation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, status, progress,
			temperature, duration, timestep, ensemble,
			equilibration, COALESCE(pdb_file, ''), COALESCE(sdf_file, ''),
			credits_used, created_at, completed_at, results
		FROM simulations
		WHERE id = $1`, simulationID)

	sim, err := scanSimulation(row)
	if err == sql.ErrNoRows {
		return nil, ErrSimulationNotFound
	}
	if err != nil {
		return nil, err
	}
	return sim, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSimulation(row rowScanner) (*models.Simulation, error) {
	var sim models.Simulation
	var equilJSON, resultsJSON []byte
	var completedAt sql.NullTime

	err := row.Scan(&sim.ID, &sim.AccountID, &sim.Name, &sim.Status, &sim.Progress,
		&sim.Parameters.Temperature, &sim.Parameters.Duration, &sim.Parameters.Timestep, &sim.Parameters.Ensemble,
		&equilJSON, &sim.PDBFile, &sim.SDFFile,
		&sim.CreditsUsed, &sim.CreatedAt, &completedAt, &resultsJSON)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		sim.CompletedAt = &completedAt.Time
	}
	if len(equilJSON) > 0 {
		equil := &models.Equilibration{}
		if err := json.Unmarshal(equilJSON, equil); err != nil {
			return nil, err
		}
		sim.Equilibration = equil
	}
	if len(resultsJSON) > 0 {
		results := &models.SimulationResults{}
		if err := json.Unmarshal(resultsJSON, results); err != nil {
			return nil, err
		}
		sim.Results = results
	}

	return &sim, nil
}
