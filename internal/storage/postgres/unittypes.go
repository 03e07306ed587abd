package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// UnitTypeRepository provides unit template persistence operations.
type UnitTypeRepository struct {
	db *pgxpool.Pool
}

// NewUnitTypeRepository creates a UnitTypeRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewUnitTypeRepository(db *pgxpool.Pool) *UnitTypeRepository {
	return &UnitTypeRepository{db: db}
}

// ListAll returns every stored unit template, ordered by id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error. The
// returned templates are not validated; callers building a catalog get
// validation there.
func (r *UnitTypeRepository) ListAll(ctx context.Context) ([]*unit.Template, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, display_name, aliases, hidden, health, attack, defence, attack_range, abilities
		FROM unit_types ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing unit types: %w", err)
	}
	defer rows.Close()

	templates := make([]*unit.Template, 0)
	for rows.Next() {
		var t unit.Template
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Aliases, &t.Hidden,
			&t.Health, &t.Attack, &t.Defence, &t.Range, &t.Abilities,
		); err != nil {
			return nil, fmt.Errorf("scanning unit type row: %w", err)
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// Upsert inserts tmpl or, when a row with the same id already exists,
// replaces it wholesale.
//
// Precondition: tmpl must pass Validate.
// Postcondition: The stored row matches tmpl exactly.
func (r *UnitTypeRepository) Upsert(ctx context.Context, tmpl *unit.Template) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO unit_types
			(id, display_name, aliases, hidden, health, attack, defence, attack_range, abilities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			aliases      = EXCLUDED.aliases,
			hidden       = EXCLUDED.hidden,
			health       = EXCLUDED.health,
			attack       = EXCLUDED.attack,
			defence      = EXCLUDED.defence,
			attack_range = EXCLUDED.attack_range,
			abilities    = EXCLUDED.abilities`,
		tmpl.ID, tmpl.Name, tmpl.Aliases, tmpl.Hidden,
		tmpl.Health, tmpl.Attack, tmpl.Defence, tmpl.Range, tmpl.Abilities,
	)
	if err != nil {
		return fmt.Errorf("upserting unit type %q: %w", tmpl.ID, err)
	}
	return nil
}

// Delete removes the unit type with the given id.
//
// Postcondition: Returns the number of rows removed (0 or 1).
func (r *UnitTypeRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM unit_types WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting unit type %q: %w", id, err)
	}
	return tag.RowsAffected(), nil
}
