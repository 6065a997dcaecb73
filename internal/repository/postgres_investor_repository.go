package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// PostgresInvestorRepository implements InvestorRepository using PostgreSQL
type PostgresInvestorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInvestorRepository creates a new PostgresInvestorRepository
func NewPostgresInvestorRepository(pool *pgxpool.Pool) *PostgresInvestorRepository {
	return &PostgresInvestorRepository{pool: pool}
}

const investorColumns = `id, event_id, name, remaining_budget, version, created_at, updated_at`

// Create inserts a new investor record
func (r *PostgresInvestorRepository) Create(ctx context.Context, investor *domain.Investor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investor.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("investor_id", investor.ID),
		attribute.String("event_id", investor.EventID),
	)

	query := `
		INSERT INTO investors (id, event_id, name, remaining_budget, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		investor.ID,
		investor.EventID,
		investor.Name,
		investor.RemainingBudget,
		investor.Version,
		investor.CreatedAt,
		investor.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create investor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an investor by its ID, including the version counter the
// ledger compares against on write.
func (r *PostgresInvestorRepository) GetByID(ctx context.Context, id string) (*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investor.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("investor_id", id))

	query := `SELECT ` + investorColumns + ` FROM investors WHERE id = $1`

	investor := &domain.Investor{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&investor.ID,
		&investor.EventID,
		&investor.Name,
		&investor.RemainingBudget,
		&investor.Version,
		&investor.CreatedAt,
		&investor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrInvestorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get investor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return investor, nil
}

// ListByEvent retrieves all investors for an event
func (r *PostgresInvestorRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investor.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT ` + investorColumns + ` FROM investors WHERE event_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	defer rows.Close()

	var investors []*domain.Investor
	for rows.Next() {
		investor := &domain.Investor{}
		if err := rows.Scan(
			&investor.ID,
			&investor.EventID,
			&investor.Name,
			&investor.RemainingBudget,
			&investor.Version,
			&investor.CreatedAt,
			&investor.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, investor)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating investors: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(investors)))
	span.SetStatus(codes.Ok, "")
	return investors, nil
}

// UpdateName renames an investor. The budget is deliberately untouched here;
// only the ledger writes remaining_budget.
func (r *PostgresInvestorRepository) UpdateName(ctx context.Context, id, name string) (*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investor.update_name")
	defer span.End()

	span.SetAttributes(attribute.String("investor_id", id))

	query := `
		UPDATE investors SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + investorColumns

	investor := &domain.Investor{}
	err := r.pool.QueryRow(ctx, query, id, name, time.Now()).Scan(
		&investor.ID,
		&investor.EventID,
		&investor.Name,
		&investor.RemainingBudget,
		&investor.Version,
		&investor.CreatedAt,
		&investor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrInvestorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update investor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return investor, nil
}

// Delete removes an investor by its ID
func (r *PostgresInvestorRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investor.delete")
	defer span.End()

	span.SetAttributes(attribute.String("investor_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM investors WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete investor: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrInvestorNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresInvestorRepository implements InvestorRepository
var _ InvestorRepository = (*PostgresInvestorRepository)(nil)
