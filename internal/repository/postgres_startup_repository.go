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

// PostgresStartupRepository implements StartupRepository using PostgreSQL
type PostgresStartupRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStartupRepository creates a new PostgresStartupRepository
func NewPostgresStartupRepository(pool *pgxpool.Pool) *PostgresStartupRepository {
	return &PostgresStartupRepository{pool: pool}
}

// Create inserts a new startup record
func (r *PostgresStartupRepository) Create(ctx context.Context, startup *domain.Startup) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.startup.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("startup_id", startup.ID),
		attribute.String("event_id", startup.EventID),
	)

	query := `
		INSERT INTO startups (id, event_id, name, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		startup.ID,
		startup.EventID,
		startup.Name,
		nullString(startup.LogoURL),
		startup.CreatedAt,
		startup.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create startup: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a startup by its ID
func (r *PostgresStartupRepository) GetByID(ctx context.Context, id string) (*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.startup.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("startup_id", id))

	query := `
		SELECT id, event_id, name, logo_url, created_at, updated_at
		FROM startups
		WHERE id = $1
	`

	startup, err := scanStartupRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrStartupNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get startup: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return startup, nil
}

// ListByEvent retrieves all startups for an event
func (r *PostgresStartupRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.startup.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT id, event_id, name, logo_url, created_at, updated_at
		FROM startups
		WHERE event_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	defer rows.Close()

	var startups []*domain.Startup
	for rows.Next() {
		startup, err := scanStartupRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan startup: %w", err)
		}
		startups = append(startups, startup)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating startups: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(startups)))
	span.SetStatus(codes.Ok, "")
	return startups, nil
}

// Update updates an existing startup
func (r *PostgresStartupRepository) Update(ctx context.Context, startup *domain.Startup) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.startup.update")
	defer span.End()

	span.SetAttributes(attribute.String("startup_id", startup.ID))

	query := `
		UPDATE startups SET name = $2, logo_url = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		startup.ID,
		startup.Name,
		nullString(startup.LogoURL),
		startup.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update startup: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrStartupNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a startup by its ID
func (r *PostgresStartupRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.startup.delete")
	defer span.End()

	span.SetAttributes(attribute.String("startup_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM startups WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete startup: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrStartupNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// scanStartupRow scans a single startup row
func scanStartupRow(row pgx.Row) (*domain.Startup, error) {
	startup := &domain.Startup{}
	var logoURL *string

	err := row.Scan(
		&startup.ID,
		&startup.EventID,
		&startup.Name,
		&logoURL,
		&startup.CreatedAt,
		&startup.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if logoURL != nil {
		startup.LogoURL = *logoURL
	}
	return startup, nil
}

// nullString converts an empty string to a nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresStartupRepository implements StartupRepository
var _ StartupRepository = (*PostgresStartupRepository)(nil)
