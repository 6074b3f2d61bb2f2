package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/ThermoCancel/internal/application/estimation"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/types/common"
)

const speciesSchema = `
CREATE TABLE IF NOT EXISTS reference_species (
    id         UUID PRIMARY KEY,
    label      TEXT NOT NULL UNIQUE,
    definition JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// SpeciesRepository is the PostgreSQL implementation of the reference species
// library.  Structures and enthalpies are stored as one JSONB document per
// species; the label is the natural key.
type SpeciesRepository struct {
	conn   *Connection
	logger logging.Logger
}

// NewSpeciesRepository creates the repository and ensures its schema exists.
func NewSpeciesRepository(ctx context.Context, conn *Connection, logger logging.Logger) (*SpeciesRepository, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if _, err := conn.Pool().Exec(ctx, speciesSchema); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot create species schema")
	}
	return &SpeciesRepository{conn: conn, logger: logger.Named("species-repo")}, nil
}

// Save upserts a species definition by label.
func (r *SpeciesRepository) Save(ctx context.Context, def estimation.SpeciesDefinition) (*estimation.StoredSpecies, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot encode species definition")
	}

	now := time.Now().UTC()
	id := common.NewID()
	row := r.conn.Pool().QueryRow(ctx, `
		INSERT INTO reference_species (id, label, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (label) DO UPDATE
		SET definition = EXCLUDED.definition, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		id, def.Label, raw, now)

	stored := &estimation.StoredSpecies{Definition: def}
	if err := row.Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot save species")
	}
	r.logger.Debug("species saved", logging.String("label", def.Label))
	return stored, nil
}

// FindByLabel loads one species definition.
func (r *SpeciesRepository) FindByLabel(ctx context.Context, label string) (*estimation.StoredSpecies, error) {
	row := r.conn.Pool().QueryRow(ctx, `
		SELECT id, definition, created_at, updated_at
		FROM reference_species WHERE label = $1`, label)
	stored, err := scanStored(row)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeSpeciesNotFound,
			"species not found in reference library").WithDetail("label=" + label)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot load species")
	}
	return stored, nil
}

// List returns every stored species ordered by label.
func (r *SpeciesRepository) List(ctx context.Context) ([]*estimation.StoredSpecies, error) {
	rows, err := r.conn.Pool().Query(ctx, `
		SELECT id, definition, created_at, updated_at
		FROM reference_species ORDER BY label`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot list species")
	}
	defer rows.Close()

	var out []*estimation.StoredSpecies
	for rows.Next() {
		stored, err := scanStored(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot scan species row")
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "species listing failed")
	}
	return out, nil
}

// DeleteByLabel removes a species; deleting an absent label is a not-found
// error so callers can distinguish typos from successful removals.
func (r *SpeciesRepository) DeleteByLabel(ctx context.Context, label string) error {
	tag, err := r.conn.Pool().Exec(ctx, `DELETE FROM reference_species WHERE label = $1`, label)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot delete species")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeSpeciesNotFound,
			"species not found in reference library").WithDetail("label=" + label)
	}
	r.logger.Debug("species deleted", logging.String("label", label))
	return nil
}

func scanStored(row pgx.Row) (*estimation.StoredSpecies, error) {
	var (
		stored estimation.StoredSpecies
		raw    []byte
	)
	if err := row.Scan(&stored.ID, &raw, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &stored.Definition); err != nil {
		return nil, err
	}
	return &stored, nil
}
