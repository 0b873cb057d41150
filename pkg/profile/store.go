package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"simsetgo/pkg/engine"
	"simsetgo/pkg/simvar"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Profile is a named, ordered variable configuration.
type Profile struct {
	ID        string
	Name      string
	Aircraft  string
	Items     []engine.Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store handles profile persistence.
type Store interface {
	SaveProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, name string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	DeleteProfile(ctx context.Context, name string) error
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveProfile upserts a profile by name, replacing its items and mappings.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM profile WHERE name = ?`, p.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profile (id, name, aircraft) VALUES (?, ?, ?)`,
			id, p.Name, p.Aircraft); err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query profile: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE profile SET aircraft = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			p.Aircraft, id); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		// Items are replaced wholesale; mappings cascade.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM profile_item WHERE profile_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}
	}

	for pos, it := range p.Items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO profile_item (profile_id, pos, name, unit, data_type, settable, value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, pos, it.Name, it.Unit, it.Type.String(), it.Settable, it.Value)
		if err != nil {
			return fmt.Errorf("failed to insert item %q: %w", it.Name, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item id: %w", err)
		}
		for mpos, m := range it.Mappings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO event_mapping (item_id, pos, match_value, event_name, param)
				 VALUES (?, ?, ?, ?, ?)`,
				itemID, mpos, m.MatchValue, m.EventName, m.Param); err != nil {
				return fmt.Errorf("failed to insert mapping for %q: %w", it.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	p.ID = id
	return nil
}

// GetProfile loads a profile with its ordered items and mappings.
func (s *SQLiteStore) GetProfile(ctx context.Context, name string) (*Profile, error) {
	var (
		p                    Profile
		createdAt, updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, aircraft, created_at, updated_at FROM profile WHERE name = ?`,
		name).Scan(&p.ID, &p.Name, &p.Aircraft, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, unit, data_type, settable, value
		 FROM profile_item WHERE profile_id = ? ORDER BY pos`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var itemIDs []int64
	for rows.Next() {
		var (
			itemID   int64
			it       engine.Item
			unit     sql.NullString
			dataType sql.NullString
			value    sql.NullString
		)
		if err := rows.Scan(&itemID, &it.Name, &unit, &dataType, &it.Settable, &value); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Unit = unit.String
		it.Type = simvar.ParseDataType(dataType.String)
		it.Value = value.String
		p.Items = append(p.Items, it)
		itemIDs = append(itemIDs, itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	for i, itemID := range itemIDs {
		mappings, err := s.loadMappings(ctx, itemID)
		if err != nil {
			return nil, err
		}
		p.Items[i].Mappings = mappings
	}

	return &p, nil
}

func (s *SQLiteStore) loadMappings(ctx context.Context, itemID int64) ([]engine.EventMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_value, event_name, param
		 FROM event_mapping WHERE item_id = ? ORDER BY pos`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var out []engine.EventMapping
	for rows.Next() {
		var m engine.EventMapping
		if err := rows.Scan(&m.MatchValue, &m.EventName, &m.Param); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListProfiles returns profile metadata (no items) ordered by name.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, aircraft, created_at, updated_at FROM profile ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var (
			p                    Profile
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Aircraft, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.CreatedAt = createdAt.Time
		p.UpdatedAt = updatedAt.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProfile removes a profile and everything attached to it.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profile WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
