package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// PostgresLedgerRepository commits allocations using a single transaction per
// call. The investor debit is guarded by the version counter: if another
// allocation for the same investor landed between the ledger's read and this
// write, zero rows match and the whole transaction rolls back with
// domain.ErrVersionConflict.
type PostgresLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLedgerRepository creates a new PostgresLedgerRepository
func NewPostgresLedgerRepository(pool *pgxpool.Pool) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{pool: pool}
}

// ApplyAllocation commits the investor debit, the investment upsert and the
// history append atomically.
func (r *PostgresLedgerRepository) ApplyAllocation(ctx context.Context, params AllocationParams) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ledger.apply_allocation")
	defer span.End()

	span.SetAttributes(
		attribute.String("investor_id", params.Investor.ID),
		attribute.String("investment_id", params.Investment.ID),
		attribute.Bool("is_new", params.IsNew),
		attribute.Float64("amount", params.Investment.Amount),
		attribute.Int64("expected_version", params.Investor.Version),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The debit goes first: if the investor row moved, we bail before
	// touching the investment or its history.
	debit := `
		UPDATE investors SET
			remaining_budget = $2,
			version = version + 1,
			updated_at = $3
		WHERE id = $1 AND version = $4
	`

	result, err := tx.Exec(ctx, debit,
		params.Investor.ID,
		params.Investor.RemainingBudget,
		params.Timestamp,
		params.Investor.Version,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to debit investor budget: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM investors WHERE id = $1)`, params.Investor.ID).Scan(&exists); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check investor existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrInvestorNotFound
		}
		span.SetStatus(codes.Error, "version conflict")
		return domain.ErrVersionConflict
	}

	if params.IsNew {
		insert := `
			INSERT INTO investments (id, investor_id, startup_id, event_id, amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.Exec(ctx, insert,
			params.Investment.ID,
			params.Investment.InvestorID,
			params.Investment.StartupID,
			params.Investment.EventID,
			params.Investment.Amount,
			params.Timestamp,
			params.Timestamp,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to create investment: %w", err)
		}
	} else {
		update := `UPDATE investments SET amount = $2, updated_at = $3 WHERE id = $1`
		result, err := tx.Exec(ctx, update, params.Investment.ID, params.Investment.Amount, params.Timestamp)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to update investment: %w", err)
		}
		if result.RowsAffected() == 0 {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrInvestmentNotFound
		}

		appendHistory := `
			INSERT INTO investment_history (investment_id, amount, recorded_at)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.Exec(ctx, appendHistory, params.Investment.ID, params.PriorAmount, params.Timestamp); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to append investment history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return fmt.Errorf("allocation transaction closed: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit allocation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresLedgerRepository implements LedgerRepository
var _ LedgerRepository = (*PostgresLedgerRepository)(nil)
