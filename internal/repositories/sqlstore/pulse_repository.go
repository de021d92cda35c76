package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const pulsesTable = "pulses"

// PulseColumns lists the columns of the pulses table in storage order
var PulseColumns = []string{
	"pulse_id",
	"delays",
	"signal",
	"signal_error",
	"integration_time_ms",
	"creation_time",
	"device_id",
}

// PulseRepository implements repositories.PulseRepository
type PulseRepository struct {
	store *database.Store
}

var _ repositories.PulseRepository = (*PulseRepository)(nil)

// NewPulseRepository creates a new pulse repository
func NewPulseRepository(store *database.Store) *PulseRepository {
	return &PulseRepository{store: store}
}

// BatchCreate inserts pulses in batches of maxBatchRows.
// A reference to a missing device returns *entities.DeviceNotFoundError.
func (r *PulseRepository) BatchCreate(ctx context.Context, q repositories.Querier, pulses []*entities.Pulse) error {
	for batch := range slices.Chunk(pulses, maxBatchRows) {
		builder := r.store.Builder().Insert(pulsesTable).Columns(PulseColumns...)
		for _, p := range batch {
			builder = builder.Values(
				p.PulseID.String(),
				p.Delays,
				p.Signal,
				p.SignalError,
				p.IntegrationTimeMS,
				p.CreationTime.UTC(),
				p.DeviceID.String(),
			)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build pulse insert query: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("failed to create pulses: %w", &entities.DeviceNotFoundError{})
			}
			return fmt.Errorf("failed to create pulses: %w", err)
		}
	}

	return nil
}

// Get retrieves a pulse by id
func (r *PulseRepository) Get(ctx context.Context, q repositories.Querier, id uuid.UUID) (*entities.Pulse, error) {
	query, args, err := r.store.Builder().
		Select(PulseColumns...).
		From(pulsesTable).
		Where(sq.Eq{"pulse_id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pulse query: %w", err)
	}

	var pulse entities.Pulse
	err = sqlx.GetContext(ctx, q, &pulse, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entities.PulseNotFoundError{IDs: []uuid.UUID{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pulse: %w", err)
	}

	pulse.CreationTime = pulse.CreationTime.UTC()
	return &pulse, nil
}

// GetMany retrieves the existing pulses among ids, ordered by creation time
func (r *PulseRepository) GetMany(ctx context.Context, q repositories.Querier, ids []uuid.UUID) ([]*entities.Pulse, error) {
	pulses := []*entities.Pulse{}
	for batch := range slices.Chunk(ids, maxBatchRows) {
		query, args, err := r.store.Builder().
			Select(PulseColumns...).
			From(pulsesTable).
			Where(sq.Eq{"pulse_id": idStrings(batch)}).
			OrderBy("creation_time", "pulse_id").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build pulse query: %w", err)
		}

		var found []*entities.Pulse
		if err := sqlx.SelectContext(ctx, q, &found, query, args...); err != nil {
			return nil, fmt.Errorf("failed to get pulses: %w", err)
		}
		pulses = append(pulses, found...)
	}

	for _, p := range pulses {
		p.CreationTime = p.CreationTime.UTC()
	}
	return pulses, nil
}

// List retrieves a page of pulses ordered by creation time
func (r *PulseRepository) List(ctx context.Context, q repositories.Querier, offset, limit int) ([]*entities.Pulse, error) {
	if offset < 0 || limit < 0 {
		return nil, entities.NewValidationError("offset", "offset and limit must not be negative")
	}

	query, args, err := r.store.Builder().
		Select(PulseColumns...).
		From(pulsesTable).
		OrderBy("creation_time", "pulse_id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pulse list query: %w", err)
	}

	pulses := []*entities.Pulse{}
	if err := sqlx.SelectContext(ctx, q, &pulses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list pulses: %w", err)
	}

	for _, p := range pulses {
		p.CreationTime = p.CreationTime.UTC()
	}
	return pulses, nil
}

// Exists checks if a pulse exists
func (r *PulseRepository) Exists(ctx context.Context, q repositories.Querier, id uuid.UUID) (bool, error) {
	missingIDs, err := r.MissingIDs(ctx, q, []uuid.UUID{id})
	if err != nil {
		return false, err
	}
	return len(missingIDs) == 0, nil
}

// MissingIDs returns the ids without a pulse
func (r *PulseRepository) MissingIDs(ctx context.Context, q repositories.Querier, ids []uuid.UUID) ([]uuid.UUID, error) {
	found, err := existingIDs(ctx, q, r.store, pulsesTable, "pulse_id", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check pulses: %w", err)
	}
	return missing(ids, found), nil
}

// DeleteMany removes pulses by id. Their attribute rows go with them.
func (r *PulseRepository) DeleteMany(ctx context.Context, q repositories.Querier, ids []uuid.UUID) (int64, error) {
	var deleted int64
	for batch := range slices.Chunk(ids, maxBatchRows) {
		query, args, err := r.store.Builder().
			Delete(pulsesTable).
			Where(sq.Eq{"pulse_id": idStrings(batch)}).
			ToSql()
		if err != nil {
			return deleted, fmt.Errorf("failed to build pulse delete query: %w", err)
		}

		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete pulses: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}

// CreationTimeQuery selects pulses created in [min, max].
// Bounds are compared in UTC, the zone every creation time is stored in.
func (r *PulseRepository) CreationTimeQuery(min, max time.Time) sq.SelectBuilder {
	return sq.Select("pulse_id").
		From(pulsesTable).
		Where(sq.GtOrEq{"creation_time": min.UTC()}).
		Where(sq.LtOrEq{"creation_time": max.UTC()})
}

// existingIDs returns which of ids are present in column of table
func existingIDs(ctx context.Context, q repositories.Querier, store *database.Store, table, column string, ids []uuid.UUID) ([]uuid.UUID, error) {
	var found []uuid.UUID
	for batch := range slices.Chunk(ids, maxBatchRows) {
		query, args, err := store.Builder().
			Select(column).
			From(table).
			Where(sq.Eq{column: idStrings(batch)}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build id query: %w", err)
		}

		var batchFound []uuid.UUID
		if err := sqlx.SelectContext(ctx, q, &batchFound, query, args...); err != nil {
			return nil, err
		}
		found = append(found, batchFound...)
	}
	return found, nil
}
