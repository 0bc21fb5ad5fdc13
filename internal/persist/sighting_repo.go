package persist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// SightingRow is the last time a bot resolved a player's name.
type SightingRow struct {
	Name      string
	BeingID   uint32
	FirstSeen time.Time
	LastSeen  time.Time
	Count     int
}

type SightingRepo struct {
	db *DB
}

func NewSightingRepo(db *DB) *SightingRepo {
	return &SightingRepo{db: db}
}

// Record upserts a sighting of name. Names are stored lower-cased.
func (r *SightingRepo) Record(ctx context.Context, name string, beingID uint32) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO sightings (name, being_id, first_seen, last_seen, count)
		 VALUES ($1, $2, now(), now(), 1)
		 ON CONFLICT (name) DO UPDATE
		 SET being_id = EXCLUDED.being_id, last_seen = now(), count = sightings.count + 1`,
		strings.ToLower(name), int64(beingID),
	)
	return err
}

// Load returns the sighting of name, or nil if it was never seen.
func (r *SightingRepo) Load(ctx context.Context, name string) (*SightingRow, error) {
	row := &SightingRow{}
	var beingID int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, being_id, first_seen, last_seen, count
		 FROM sightings WHERE name = $1`, strings.ToLower(name),
	).Scan(&row.Name, &beingID, &row.FirstSeen, &row.LastSeen, &row.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.BeingID = uint32(beingID)
	return row, nil
}

// MostSeen returns up to limit sightings ordered by count.
func (r *SightingRepo) MostSeen(ctx context.Context, limit int) ([]SightingRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, being_id, first_seen, last_seen, count
		 FROM sightings ORDER BY count DESC, name LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SightingRow
	for rows.Next() {
		var s SightingRow
		var beingID int64
		if err := rows.Scan(&s.Name, &beingID, &s.FirstSeen, &s.LastSeen, &s.Count); err != nil {
			return nil, err
		}
		s.BeingID = uint32(beingID)
		out = append(out, s)
	}
	return out, rows.Err()
}
