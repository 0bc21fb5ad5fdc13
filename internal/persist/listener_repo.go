package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ListenerRepo stores which players want nearby chat relayed to them.
type ListenerRepo struct {
	db *DB
}

func NewListenerRepo(db *DB) *ListenerRepo {
	return &ListenerRepo{db: db}
}

// Get returns nick's subscription; found is false for unknown players.
func (r *ListenerRepo) Get(ctx context.Context, nick string) (listening, found bool, err error) {
	err = r.db.Pool.QueryRow(ctx,
		`SELECT listening FROM listeners WHERE nick = $1`, nick,
	).Scan(&listening)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return listening, true, nil
}

func (r *ListenerRepo) Set(ctx context.Context, nick string, listening bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO listeners (nick, listening, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (nick) DO UPDATE SET listening = EXCLUDED.listening, updated_at = now()`,
		nick, listening,
	)
	return err
}

// Listening returns every subscribed nick.
func (r *ListenerRepo) Listening(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT nick FROM listeners WHERE listening ORDER BY nick`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
