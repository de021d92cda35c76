// Package filter selects pulses by conjunctions of attribute predicates.
//
// Every predicate becomes a sub-query yielding pulse ids. The sub-queries are
// combined with INTERSECT and evaluated by the database in a single statement.
package filter

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/database"
	"github.com/asakaida/terastore/internal/repositories"
	"github.com/asakaida/terastore/internal/services"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Result holds the projected rows of a filter call.
// Row order is unspecified.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Flat returns the first column of every row.
// It is meant for results with a single column.
func (r *Result) Flat() []any {
	values := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	return values
}

// IDs returns the pulse_id column, or nil when it was not selected
func (r *Result) IDs() []uuid.UUID {
	idx := -1
	for i, c := range r.Columns {
		if c == "pulse_id" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(r.Rows))
	for _, row := range r.Rows {
		ids = append(ids, row[idx].(uuid.UUID))
	}
	return ids
}

// Engine evaluates filters against the pulse store
type Engine struct {
	store  *database.Store
	pulses repositories.PulseRepository
	stores repositories.AttributeStores
	keys   *services.KeyResolver
}

// NewEngine creates a new filter engine
func NewEngine(
	store *database.Store,
	pulses repositories.PulseRepository,
	stores repositories.AttributeStores,
	keys *services.KeyResolver,
) *Engine {
	return &Engine{
		store:  store,
		pulses: pulses,
		stores: stores,
		keys:   keys,
	}
}

// Filter returns the requested columns of pulses matching every predicate.
// Without predicates all pulses match.
func (e *Engine) Filter(ctx context.Context, predicates []entities.Predicate, columnNames []string) (*Result, error) {
	cols, err := resolveColumns(columnNames)
	if err != nil {
		return nil, err
	}
	for _, p := range predicates {
		if err := entities.ValidatePredicate(p); err != nil {
			return nil, err
		}
	}

	result := &Result{Columns: cols, Rows: [][]any{}}
	err = e.store.InTx(ctx, func(tx *sqlx.Tx) error {
		parts := make([]sq.SelectBuilder, 0, len(predicates))
		for _, p := range predicates {
			part, err := e.subQuery(ctx, tx, p)
			if err != nil {
				return err
			}
			parts = append(parts, part)
		}

		query, args, err := e.buildQuery(cols, parts)
		if err != nil {
			return err
		}
		result.Rows, err = scanRows(ctx, tx, cols, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// subQuery returns the pulse id query for one predicate
func (e *Engine) subQuery(ctx context.Context, q repositories.Querier, p entities.Predicate) (sq.SelectBuilder, error) {
	if r, ok := p.(entities.CreationTimeRange); ok {
		return e.pulses.CreationTimeQuery(r.Min, r.Max), nil
	}

	dt, err := e.keys.Resolve(ctx, q, p.PredicateKey())
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	store, err := e.stores.For(dt)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	switch pred := p.(type) {
	case entities.StringEquals:
		return store.EqualsQuery(pred.Key, pred.Value)
	case entities.FloatRange:
		return store.RangeQuery(pred.Key, pred.Min, pred.Max)
	}
	return sq.SelectBuilder{}, entities.NewValidationError("kv_pairs", fmt.Sprintf("unsupported predicate %T", p))
}

// buildQuery assembles the final statement in the store's placeholder format
func (e *Engine) buildQuery(cols []string, parts []sq.SelectBuilder) (string, []any, error) {
	if len(parts) == 0 {
		return e.store.Builder().Select(cols...).From("pulses").ToSql()
	}

	sqls := make([]string, 0, len(parts))
	var args []any
	for _, part := range parts {
		s, a, err := part.ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build filter query: %w", err)
		}
		sqls = append(sqls, s)
		args = append(args, a...)
	}
	ids := strings.Join(sqls, " INTERSECT ")

	// The intersection already is the answer when only ids are requested
	query := ids
	if len(cols) != 1 || cols[0] != "pulse_id" {
		query = fmt.Sprintf("SELECT %s FROM pulses WHERE pulse_id IN (%s)", strings.Join(cols, ", "), ids)
	}

	query, err := e.store.Placeholder().ReplacePlaceholders(query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build filter query: %w", err)
	}
	return query, args, nil
}

func scanRows(ctx context.Context, q repositories.Querier, cols []string, query string, args []any) ([][]any, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run filter query: %w", err)
	}
	defer rows.Close()

	result := [][]any{}
	for rows.Next() {
		dests := make([]any, len(cols))
		for i, c := range cols {
			dests[i] = columns[c].dest()
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan filter row: %w", err)
		}

		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = columns[c].value(dests[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read filter rows: %w", err)
	}
	return result, nil
}
