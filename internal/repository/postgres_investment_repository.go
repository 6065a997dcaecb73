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

// PostgresInvestmentRepository implements InvestmentRepository using PostgreSQL
type PostgresInvestmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInvestmentRepository creates a new PostgresInvestmentRepository
func NewPostgresInvestmentRepository(pool *pgxpool.Pool) *PostgresInvestmentRepository {
	return &PostgresInvestmentRepository{pool: pool}
}

const investmentColumns = `id, investor_id, startup_id, event_id, amount, created_at, updated_at`

// GetByID retrieves an investment with its full history trail
func (r *PostgresInvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investment.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("investment_id", id))

	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	investment, err := scanInvestmentRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrInvestmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	if err := r.attachHistory(ctx, []*domain.Investment{investment}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return investment, nil
}

// GetByPair retrieves the investment for an (investor, startup) pair, or
// (nil, nil) when the pair has no allocation yet.
func (r *PostgresInvestmentRepository) GetByPair(ctx context.Context, investorID, startupID string) (*domain.Investment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investment.get_by_pair")
	defer span.End()

	span.SetAttributes(
		attribute.String("investor_id", investorID),
		attribute.String("startup_id", startupID),
	)

	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investor_id = $1 AND startup_id = $2`

	investment, err := scanInvestmentRow(r.pool.QueryRow(ctx, query, investorID, startupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get investment by pair: %w", err)
	}

	if err := r.attachHistory(ctx, []*domain.Investment{investment}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return investment, nil
}

// ListByInvestor retrieves all investments for an investor
func (r *PostgresInvestmentRepository) ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investment.list_by_investor")
	defer span.End()

	span.SetAttributes(attribute.String("investor_id", investorID))

	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investor_id = $1 ORDER BY created_at`

	investments, err := r.list(ctx, query, investorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(investments)))
	span.SetStatus(codes.Ok, "")
	return investments, nil
}

// ListByEvent retrieves all investments for an event
func (r *PostgresInvestmentRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Investment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.investment.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT ` + investmentColumns + ` FROM investments WHERE event_id = $1 ORDER BY created_at`

	investments, err := r.list(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(investments)))
	span.SetStatus(codes.Ok, "")
	return investments, nil
}

func (r *PostgresInvestmentRepository) list(ctx context.Context, query, arg string) ([]*domain.Investment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []*domain.Investment
	for rows.Next() {
		investment, err := scanInvestmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, investment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}

	if err := r.attachHistory(ctx, investments); err != nil {
		return nil, err
	}

	return investments, nil
}

func scanInvestmentRow(row pgx.Row) (*domain.Investment, error) {
	investment := &domain.Investment{}
	err := row.Scan(
		&investment.ID,
		&investment.InvestorID,
		&investment.StartupID,
		&investment.EventID,
		&investment.Amount,
		&investment.CreatedAt,
		&investment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return investment, nil
}

// attachHistory loads the history trail for the given investments in one
// query, oldest entry first.
func (r *PostgresInvestmentRepository) attachHistory(ctx context.Context, investments []*domain.Investment) error {
	if len(investments) == 0 {
		return nil
	}

	ids := make([]string, len(investments))
	byID := make(map[string]*domain.Investment, len(investments))
	for i, inv := range investments {
		ids[i] = inv.ID
		byID[inv.ID] = inv
		inv.History = []domain.HistoryEntry{}
	}

	query := `
		SELECT investment_id, amount, recorded_at
		FROM investment_history
		WHERE investment_id = ANY($1)
		ORDER BY recorded_at, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load investment history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var investmentID string
		var entry domain.HistoryEntry
		if err := rows.Scan(&investmentID, &entry.Amount, &entry.Timestamp); err != nil {
			return fmt.Errorf("failed to scan history entry: %w", err)
		}
		if inv, ok := byID[investmentID]; ok {
			inv.History = append(inv.History, entry)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating history entries: %w", err)
	}

	return nil
}

// Ensure PostgresInvestmentRepository implements InvestmentRepository
var _ InvestmentRepository = (*PostgresInvestmentRepository)(nil)
