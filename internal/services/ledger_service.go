package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/molsimcloud/backend/internal/models"
)

// CreditLedgerService owns the account credit balance. Every balance change
// goes through a row lock plus a versioned update and leaves a credit_entries
// row, so a debit can never be observed without its ledger trail.
type CreditLedgerService struct {
	db *sql.DB
}

func NewCreditLedgerService(db *sql.DB) *CreditLedgerService {
	return &CreditLedgerService{db: db}
}

// DebitTx atomically charges amount credits against the account within the
// caller's transaction. The row lock serializes concurrent debits on the same
// account so two callers cannot both spend the last credits.
func (s *CreditLedgerService) DebitTx(tx *sql.Tx, accountID, simulationID string, amount int64) error {
	account, err := s.lockAccount(tx, accountID)
	if err == sql.ErrNoRows {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	if account.Credits < amount {
		return ErrInsufficientCredits
	}

	newBalance := account.Credits - amount
	if err := s.createEntry(tx, accountID, simulationID, -amount, "DEBIT", newBalance); err != nil {
		return err
	}

	return s.updateAccountCredits(tx, accountID, newBalance, account.Version)
}

func (s *CreditLedgerService) lockAccount(tx *sql.Tx, accountID string) (*models.Account, error) {
	var account models.Account
	err := tx.QueryRow(`
		SELECT id, credits, version, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID).Scan(&account.ID, &account.Credits, &account.Version, &account.UpdatedAt)

	return &account, err
}

func (s *CreditLedgerService) createEntry(tx *sql.Tx, accountID, simulationID string, amount int64, entryType string, balance int64) error {
	_, err := tx.Exec(`
		INSERT INTO credit_entries (account_id, simulation_id, amount, entry_type, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		accountID, simulationID, amount, entryType, balance, time.Now())
	return err
}

func (s *CreditLedgerService) updateAccountCredits(tx *sql.Tx, accountID string, newBalance int64, version int) error {
	result, err := tx.Exec(`
		UPDATE accounts
		SET credits = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now(), accountID, version)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %s", accountID)
	}

	return nil
}
